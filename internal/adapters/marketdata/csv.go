package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/yannickvh/ctrade/internal/domain"
)

// Fixture loading for dry runs and tests.
//
// Expected header: open_time,open,high,low,close,volume with optional
// trailing columns bid,ask,mark_price,index_price,funding_rate. Timestamps
// are unix milliseconds. Quotes absent from the file are synthesized from
// the close (bid = ask = mid = close), same as the store-backed adapters.

// LoadCSV reads kline rows in [startTS, endTS] (inclusive, unix ms) from a
// CSV file into a SliceData stream.
func LoadCSV(path string, assetID int, startTS, endTS int64) (*SliceData, error) {
	if endTS < startTS {
		return nil, fmt.Errorf("marketdata.LoadCSV: %w: end %d before start %d", domain.ErrConfiguration, endTS, startTS)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("marketdata.LoadCSV: open %q: %w", path, err)
	}
	defer f.Close()

	states, err := parseCSV(f, assetID)
	if err != nil {
		return nil, fmt.Errorf("marketdata.LoadCSV: %q: %w", path, err)
	}

	kept := states[:0]
	for _, s := range states {
		if s.Timestamp >= startTS && s.Timestamp <= endTS {
			kept = append(kept, s)
		}
	}
	return NewSliceData(kept), nil
}

func parseCSV(r io.Reader, assetID int) ([]domain.MarketState, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // extended quote columns are optional

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"open_time", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var states []domain.MarketState
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) (float64, error) {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return 0, nil // optional column
			}
			return strconv.ParseFloat(record[i], 64)
		}

		ts, err := strconv.ParseInt(record[col["open_time"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: open_time: %w", line, err)
		}

		s := domain.MarketState{AssetID: assetID, Timestamp: ts}
		for name, dst := range map[string]*float64{
			"open": &s.Open, "high": &s.High, "low": &s.Low,
			"close": &s.Close, "volume": &s.Volume,
			"bid": &s.Bid, "ask": &s.Ask,
			"mark_price": &s.MarkPrice, "index_price": &s.IndexPrice,
			"funding_rate": &s.FundingRate,
		} {
			v, err := field(name)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, name, err)
			}
			*dst = v
		}

		synthesizeQuotes(&s)
		states = append(states, s)
	}
	return states, nil
}

// synthesizeQuotes defaults missing top-of-book data from the close, the
// convention for spot kline sources that carry no quote feed.
func synthesizeQuotes(s *domain.MarketState) {
	if s.Bid == 0 && s.Ask == 0 {
		s.Bid = s.Close
		s.Ask = s.Close
	}
	s.Mid = (s.Bid + s.Ask) / 2
}
