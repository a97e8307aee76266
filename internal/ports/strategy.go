package ports

import (
	"context"

	"github.com/yannickvh/ctrade/internal/domain"
)

// Strategy is the user-supplied trading policy driven by the backtest loop.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Init is called exactly once before the first bar. Side-effect only.
	Init(ctx context.Context) error

	// OnBar is called once per bar with the current market state and the
	// step's execution context. It may call any ExecutionContext method
	// zero or more times; matching happens after it returns.
	OnBar(ctx context.Context, market domain.MarketState, exec ExecutionContext) error
}
