package domain

// Fill is the outcome of matching one order against one bar. It is immutable
// and terminal: fills are the sole input to portfolio mutation.
type Fill struct {
	OrderID   int64
	Side      Side
	Price     float64 // execution price (ask/bid for market, limit price for crossed limits)
	Size      float64 // ≤ the order's remaining size at match time
	Fee       float64 // size × price × fee rate, never negative
	Timestamp int64   // the bar timestamp it was matched against
}

// Notional returns the gross cash value of the fill, fee excluded.
func (f Fill) Notional() float64 {
	return f.Size * f.Price
}
