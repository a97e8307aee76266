package ports

// MarginMode selects how collateral backs open positions.
type MarginMode int

const (
	MarginCross MarginMode = iota
	MarginIsolated
)

// ExecutionContext is the strategy-facing handle for submitting order
// intents during one bar. Calls validate their parameters and append an
// order to the run's pending book; they never produce a fill directly;
// matching happens once per bar, after OnBar returns.
//
// All order methods return ErrInvalidOrder for size ≤ 0 and, on limit/stop
// variants, for non-positive prices. The position-closing helpers are
// defined against the position as of the start of the bar; calling
// CloseLong while flat or short (and vice versa) is a no-op, not an error.
type ExecutionContext interface {
	// Market orders fill unconditionally at the counter-side quote.
	MarketBuy(size float64) error
	MarketSell(size float64) error

	// Limit orders rest until the bar range crosses the limit price.
	LimitBuy(size, price float64) error
	LimitSell(size, price float64) error

	// Stop orders arm a market order once the trigger price is touched.
	StopBuy(size, stopPrice float64) error
	StopSell(size, stopPrice float64) error

	// Stop-limit orders convert to a resting limit once triggered.
	StopLimitBuy(size, stopPrice, limitPrice float64) error
	StopLimitSell(size, stopPrice, limitPrice float64) error

	// Position management. Each synthesizes a market order sized to
	// flatten (or reduce) the current position.
	ClosePosition() error
	CloseLong() error
	CloseShort() error
	CloseAmount(size float64) error

	// Order management over the run's still-unmatched orders.
	CancelOrder(id int64) error
	CancelAll()

	// Futures-style account controls. These mutate run-wide risk
	// parameters consumed by the margin model; they have no direct
	// accounting effect.
	SetLeverage(leverage int) error
	SetCrossMode()
	SetIsolatedMode()
}
