package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

// RunState is the driver's lifecycle.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StateCompleted
	StateFailed
)

// String returns the state label.
func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateCompleted:
		return "COMPLETED"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// RunStats are per-run counters for the report. They are bookkeeping, not
// part of the result contract.
type RunStats struct {
	Bars        int
	Orders      int64
	Fills       int
	FeesPaid    float64
	GrossTraded float64 // total notional matched
}

// Runner orchestrates one backtest: it replays a market-data stream,
// invokes the strategy once per bar, matches the pending book, applies the
// fills and accumulates the equity curve. A Runner is single-use and
// single-threaded; parameter sweeps run one Runner per goroutine, each with
// its own stream, portfolio and book.
type Runner struct {
	runID     string
	data      ports.MarketData
	strategy  ports.Strategy
	engine    *ExecutionEngine
	portfolio *Portfolio
	account   AccountState
	book      orderBook
	state     RunState
	seedCash  float64
	stats     RunStats
}

// NewRunner wires a runner in the Idle state. seedCash is the portfolio's
// starting cash; the default account is 1x leverage, cross margin.
func NewRunner(data ports.MarketData, strategy ports.Strategy, eng *ExecutionEngine, seedCash float64) *Runner {
	return &Runner{
		runID:     uuid.New().String(),
		data:      data,
		strategy:  strategy,
		engine:    eng,
		portfolio: NewPortfolio(seedCash),
		account:   AccountState{Leverage: 1, MarginMode: ports.MarginCross},
		seedCash:  seedCash,
	}
}

// RunID identifies this run in logs and reports.
func (r *Runner) RunID() string { return r.runID }

// State returns the driver's current lifecycle state.
func (r *Runner) State() RunState { return r.state }

// Stats returns the run counters accumulated so far.
func (r *Runner) Stats() RunStats { return r.stats }

// Portfolio returns the run's account snapshot. Read it only after Run
// returns.
func (r *Runner) Portfolio() *Portfolio { return r.portfolio }

// Account returns the run's risk parameters as last set by the strategy.
func (r *Runner) Account() AccountState { return r.account }

// Run executes the replay loop to completion. An exhausted stream completes
// the run; an error from the strategy, the engine, the stream, or a
// cancelled context fails it, and a failed run never returns a partial
// result as success. The context is only checked between bars: each bar is
// processed atomically.
func (r *Runner) Run(ctx context.Context) (*domain.BacktestResult, error) {
	if r.state != StateIdle {
		return nil, fmt.Errorf("engine.Run: runner already used (state %s)", r.state)
	}
	r.state = StateRunning

	slog.Info("backtest: starting",
		"run_id", r.runID,
		"strategy", r.strategy.Name(),
		"seed_cash", r.seedCash,
		"fee_rate", r.engine.FeeRate(),
	)

	if err := r.strategy.Init(ctx); err != nil {
		return nil, r.fail(fmt.Errorf("engine.Run: strategy init: %w", err))
	}

	result := &domain.BacktestResult{}
	prevEquity := r.seedCash
	runningMax := math.Inf(-1)

	// The valuation price is latched on the first bar: mark price when the
	// data carries one, close otherwise. Never mixed within a run.
	useMark := false

	for {
		if err := ctx.Err(); err != nil {
			return nil, r.fail(fmt.Errorf("engine.Run: aborted after %d bars: %w", r.stats.Bars, err))
		}
		if !r.data.Next() {
			break
		}
		market := r.data.Current()

		if r.stats.Bars == 0 {
			useMark = market.MarkPrice > 0
		}

		ectx := newExecContext(&r.book, &r.account, r.portfolio.Position, market.Timestamp)
		if err := r.strategy.OnBar(ctx, market, ectx); err != nil {
			return nil, r.fail(fmt.Errorf("engine.Run: strategy %q bar ts=%d: %w", r.strategy.Name(), market.Timestamp, err))
		}

		fills, err := r.engine.Execute(r.book.open(), market)
		if err != nil {
			return nil, r.fail(fmt.Errorf("engine.Run: bar ts=%d: %w", market.Timestamp, err))
		}
		for _, f := range fills {
			r.portfolio.ApplyFill(f)
			r.stats.Fills++
			r.stats.FeesPaid += f.Fee
			r.stats.GrossTraded += f.Notional()
		}
		r.book.prune()

		price := market.Close
		if useMark {
			price = market.MarkPrice
		}
		equity := r.portfolio.MarkToMarket(price)
		if equity > runningMax {
			runningMax = equity
		}
		result.Append(market.Timestamp, equity, equity-prevEquity, runningMax)
		prevEquity = equity
		r.stats.Bars++
	}

	if err := r.data.Err(); err != nil {
		return nil, r.fail(fmt.Errorf("engine.Run: market data after %d bars: %w", r.stats.Bars, err))
	}

	r.stats.Orders = r.book.nextID
	r.state = StateCompleted

	slog.Info("backtest: completed",
		"run_id", r.runID,
		"bars", r.stats.Bars,
		"orders", r.stats.Orders,
		"fills", r.stats.Fills,
		"final_equity", r.portfolio.Equity,
	)
	return result, nil
}

func (r *Runner) fail(err error) error {
	r.state = StateFailed
	r.stats.Orders = r.book.nextID
	slog.Error("backtest: failed", "run_id", r.runID, "err", err)
	return err
}
