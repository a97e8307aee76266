package strategy

import (
	"context"
	"fmt"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

// Compile-time interface check.
var _ ports.Strategy = (*BuyHold)(nil)

// BuyHold buys once on the first bar and sits on the position. The simplest
// non-trivial strategy; doubles as the smoke test for the whole loop.
type BuyHold struct {
	orderSize float64
	bought    bool
}

// NewBuyHold creates a buy-and-hold strategy of the given size.
func NewBuyHold(orderSize float64) *BuyHold {
	return &BuyHold{orderSize: orderSize}
}

// Name returns "buy-hold".
func (b *BuyHold) Name() string {
	return "buy-hold"
}

// Init resets the one-shot flag.
func (b *BuyHold) Init(_ context.Context) error {
	if b.orderSize <= 0 {
		return fmt.Errorf("strategy.BuyHold: order size %.8f must be positive", b.orderSize)
	}
	b.bought = false
	return nil
}

// OnBar submits a single market buy on the first bar.
func (b *BuyHold) OnBar(_ context.Context, _ domain.MarketState, exec ports.ExecutionContext) error {
	if b.bought {
		return nil
	}
	b.bought = true
	return exec.MarketBuy(b.orderSize)
}
