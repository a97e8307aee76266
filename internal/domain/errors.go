package domain

import "errors"

// Error taxonomy for the simulation core. Stream exhaustion is signalled by
// MarketData.Next returning false and is deliberately not an error.
var (
	// ErrInvalidOrder: malformed order parameters: size ≤ 0, or a
	// non-positive price/stop price on a limit/stop variant. Returned
	// synchronously at the ExecutionContext call site.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrConfiguration: malformed MarketState or engine/config parameters
	// (crossed book, negative fee rate, ...). Fatal to the run.
	ErrConfiguration = errors.New("configuration error")
)
