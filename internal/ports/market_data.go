package ports

import "github.com/yannickvh/ctrade/internal/domain"

// MarketData produces a forward-only sequence of market states. No rewind,
// no random access.
//
// The cursor starts *before* the first element: Current is only valid after
// the first Next call that returned true, and stays valid until the next
// Next call. Next returning false signals exhaustion, which is normal termination,
// not an error. Implementations must guarantee non-decreasing timestamps
// across successive elements, even if the underlying source is unsorted.
type MarketData interface {
	// Next advances the stream and reports whether a new element is available.
	Next() bool

	// Current returns the presently active market state.
	Current() domain.MarketState

	// Err returns the first failure encountered while streaming, if any.
	// A clean end of stream leaves Err nil.
	Err() error
}
