package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

// Compile-time interface check.
var _ ports.MarketData = (*SQLiteData)(nil)

// defaultBatchSize is how many rows are paged into memory per query. A run
// over years of 1m klines never holds the whole table.
const defaultBatchSize = 4096

// kline tables are named per instrument (btcusdt_1m, ...); only plain
// identifiers are accepted since the name is interpolated into SQL.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteData streams kline rows from a SQLite table as market states.
// Expected schema: open_time (unix ms INTEGER, unique), open, high, low,
// close, volume (REAL). Rows are read ORDER BY open_time, so the
// non-decreasing timestamp invariant holds even if inserts were unsorted.
// Top-of-book quotes are synthesized from the close.
type SQLiteData struct {
	ctx     context.Context
	db      *sql.DB
	table   string
	assetID int
	endTS   int64

	batch   int
	buf     []domain.MarketState
	bufIdx  int
	lastTS  int64
	started bool
	done    bool
	err     error
}

// NewSQLiteData opens the database at dsn and positions a cursor over
// [startTS, endTS] (inclusive, unix ms). The context bounds every page
// query; cancelling it fails the stream at the next fetch.
func NewSQLiteData(ctx context.Context, dsn, table string, assetID int, startTS, endTS int64) (*SQLiteData, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("marketdata.NewSQLiteData: %w: bad table name %q", domain.ErrConfiguration, table)
	}
	if endTS < startTS {
		return nil, fmt.Errorf("marketdata.NewSQLiteData: %w: end %d before start %d", domain.ErrConfiguration, endTS, startTS)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("marketdata.NewSQLiteData: open %q: %w", dsn, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer; one reader conn is plenty
	db.SetMaxIdleConns(1)

	return &SQLiteData{
		ctx:     ctx,
		db:      db,
		table:   table,
		assetID: assetID,
		endTS:   endTS,
		batch:   defaultBatchSize,
		lastTS:  startTS - 1,
	}, nil
}

// Next advances to the following row, paging a new batch from the store
// when the buffer runs dry. Returns false at the end of the window or on
// the first error (see Err).
func (s *SQLiteData) Next() bool {
	if s.err != nil {
		return false
	}
	s.bufIdx++
	if s.bufIdx < len(s.buf) {
		s.started = true
		return true
	}
	if s.done {
		return false
	}
	if err := s.fetchBatch(); err != nil {
		s.err = err
		return false
	}
	if len(s.buf) == 0 {
		s.done = true
		return false
	}
	s.bufIdx = 0
	s.started = true
	return true
}

// Current returns the active row. Only valid after a Next that returned true.
func (s *SQLiteData) Current() domain.MarketState {
	if !s.started {
		panic("marketdata: Current before first Next")
	}
	return s.buf[s.bufIdx]
}

// Err returns the first streaming failure, nil on a clean end of window.
func (s *SQLiteData) Err() error {
	return s.err
}

// Close releases the underlying database handle.
func (s *SQLiteData) Close() error {
	return s.db.Close()
}

// fetchBatch pages the next rows after lastTS into the buffer.
func (s *SQLiteData) fetchBatch() error {
	query := fmt.Sprintf(`
		SELECT open_time, open, high, low, close, volume
		FROM %s
		WHERE open_time > ? AND open_time <= ?
		ORDER BY open_time ASC
		LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(s.ctx, query, s.lastTS, s.endTS, s.batch)
	if err != nil {
		return fmt.Errorf("marketdata.fetchBatch: query %s after ts=%d: %w", s.table, s.lastTS, err)
	}
	defer rows.Close()

	s.buf = s.buf[:0]
	for rows.Next() {
		var st domain.MarketState
		st.AssetID = s.assetID
		if err := rows.Scan(&st.Timestamp, &st.Open, &st.High, &st.Low, &st.Close, &st.Volume); err != nil {
			return fmt.Errorf("marketdata.fetchBatch: scan: %w", err)
		}
		synthesizeQuotes(&st)
		s.buf = append(s.buf, st)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("marketdata.fetchBatch: rows: %w", err)
	}
	if n := len(s.buf); n > 0 {
		s.lastTS = s.buf[n-1].Timestamp
	}
	if len(s.buf) < s.batch {
		s.done = true // short page: nothing further in the window
	}
	return nil
}
