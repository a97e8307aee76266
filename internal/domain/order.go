package domain

// Side is the direction of a trade intent.
type Side int

const (
	Buy Side = iota
	Sell
)

// String returns "BUY" or "SELL".
func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// OrderType selects the matching rule applied to an order.
type OrderType int

const (
	Market OrderType = iota
	Limit
	Stop
	StopLimit
)

// String returns the order type label.
func (t OrderType) String() string {
	switch t {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Stop:
		return "STOP"
	case StopLimit:
		return "STOP_LIMIT"
	}
	return "UNKNOWN"
}

// OrderStatus represents the lifecycle of an order inside one backtest run.
type OrderStatus int

const (
	// StatusPending: submitted, not yet matched.
	StatusPending OrderStatus = iota
	// StatusTriggered: stop fired, order now rests as a limit
	// (stop-limit only; plain stops fill on the trigger bar).
	StatusTriggered
	// StatusPartiallyFilled: matched for less than the full size,
	// remainder still resting.
	StatusPartiallyFilled
	// StatusFilled: fully matched, terminal.
	StatusFilled
	// StatusCancelled: removed by the strategy before matching, terminal.
	StatusCancelled
)

// String returns the status label.
func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusTriggered:
		return "TRIGGERED"
	case StatusPartiallyFilled:
		return "PARTIAL"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// Order is a trade intent created through an ExecutionContext. IDs are
// assigned monotonically within a run; submission order = id order, and the
// engine matches in exactly that order.
type Order struct {
	ID        int64
	Side      Side
	Type      OrderType
	Price     float64 // limit price; meaningful for Limit and StopLimit
	StopPrice float64 // trigger price; meaningful for Stop and StopLimit
	Size      float64 // original requested size, strictly positive
	Remaining float64 // unfilled size; Size at creation, 0 when filled
	Timestamp int64   // creation time, ≤ the bar it is first evaluated against
	Status    OrderStatus
}

// Open reports whether the order can still produce fills.
func (o *Order) Open() bool {
	return o.Status == StatusPending || o.Status == StatusTriggered || o.Status == StatusPartiallyFilled
}
