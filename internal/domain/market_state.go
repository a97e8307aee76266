package domain

import "fmt"

// MarketState is one bar of market observation: OHLCV plus top-of-book
// quotes and, for derivative instruments, mark/index/funding data.
// It is immutable once produced by a data stream; strategies and the
// execution engine only borrow it for the duration of one step.
type MarketState struct {
	AssetID   int   // stable per tradable instrument (0 = BTCUSDT)
	Timestamp int64 // unix milliseconds, non-decreasing within a stream

	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	Bid float64
	Ask float64
	Mid float64

	// Zero for spot-only data.
	MarkPrice   float64
	IndexPrice  float64
	FundingRate float64
}

// Validate checks the bar's internal invariants. The execution engine
// refuses to match against a state that fails validation.
func (m MarketState) Validate() error {
	if m.Open < 0 || m.High < 0 || m.Low < 0 || m.Close < 0 || m.Volume < 0 {
		return fmt.Errorf("%w: negative OHLCV at ts=%d", ErrConfiguration, m.Timestamp)
	}
	if m.High < m.Open || m.High < m.Close {
		return fmt.Errorf("%w: high %.8f below open/close at ts=%d", ErrConfiguration, m.High, m.Timestamp)
	}
	if m.Low > m.Open || m.Low > m.Close {
		return fmt.Errorf("%w: low %.8f above open/close at ts=%d", ErrConfiguration, m.Low, m.Timestamp)
	}
	if m.Bid < 0 || m.Ask < m.Bid {
		return fmt.Errorf("%w: crossed book ask=%.8f bid=%.8f at ts=%d", ErrConfiguration, m.Ask, m.Bid, m.Timestamp)
	}
	if m.Mid < m.Bid || m.Mid > m.Ask {
		return fmt.Errorf("%w: mid %.8f outside [bid, ask] at ts=%d", ErrConfiguration, m.Mid, m.Timestamp)
	}
	return nil
}
