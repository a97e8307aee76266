package strategy

import (
	"context"
	"fmt"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

// Compile-time interface check.
var _ ports.Strategy = (*SMACross)(nil)

// SMACross is a simple moving average crossover: go long when the fast SMA
// crosses above the slow one, flatten and go short when it crosses below.
// Deterministic by construction, which makes it the reference strategy for
// replay-idempotence tests.
type SMACross struct {
	fastPeriod int
	slowPeriod int
	orderSize  float64

	closes   []float64
	wasAbove bool
	primed   bool
}

// NewSMACross creates a crossover strategy trading orderSize units per
// signal.
func NewSMACross(fast, slow int, orderSize float64) *SMACross {
	return &SMACross{fastPeriod: fast, slowPeriod: slow, orderSize: orderSize}
}

// Name returns "sma-cross".
func (s *SMACross) Name() string {
	return "sma-cross"
}

// Init validates the periods and resets state.
func (s *SMACross) Init(_ context.Context) error {
	if s.fastPeriod <= 0 || s.slowPeriod <= s.fastPeriod {
		return fmt.Errorf("strategy.SMACross: need 0 < fast < slow, got %d/%d", s.fastPeriod, s.slowPeriod)
	}
	if s.orderSize <= 0 {
		return fmt.Errorf("strategy.SMACross: order size %.8f must be positive", s.orderSize)
	}
	s.closes = s.closes[:0]
	s.wasAbove = false
	s.primed = false
	return nil
}

// OnBar appends the close, computes both SMAs once enough history exists,
// and trades the crossovers with market orders.
func (s *SMACross) OnBar(_ context.Context, market domain.MarketState, exec ports.ExecutionContext) error {
	s.closes = append(s.closes, market.Close)
	if len(s.closes) < s.slowPeriod {
		return nil
	}
	// Bounded history: only the slow window is ever read.
	if len(s.closes) > s.slowPeriod {
		s.closes = s.closes[len(s.closes)-s.slowPeriod:]
	}

	fast := mean(s.closes[len(s.closes)-s.fastPeriod:])
	slow := mean(s.closes)
	above := fast > slow

	if !s.primed {
		s.primed = true
		s.wasAbove = above
		return nil
	}
	if above == s.wasAbove {
		return nil
	}
	s.wasAbove = above

	if above {
		if err := exec.CloseShort(); err != nil {
			return err
		}
		return exec.MarketBuy(s.orderSize)
	}
	if err := exec.CloseLong(); err != nil {
		return err
	}
	return exec.MarketSell(s.orderSize)
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
