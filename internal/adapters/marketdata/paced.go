package marketdata

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/ports"
)

// Compile-time interface check.
var _ ports.MarketData = (*PacedData)(nil)

// PacedData throttles an underlying stream to a fixed bars-per-second rate,
// for simulated-time replays and demos. Pacing is the stream's concern, not
// the loop's: the driver just sees a Next that blocks.
type PacedData struct {
	inner   ports.MarketData
	limiter *rate.Limiter
	ctx     context.Context
	err     error
}

// NewPacedData wraps inner so Next releases at most barsPerSec elements per
// second. The context bounds the waiting: cancelling it ends the stream
// with its error.
func NewPacedData(ctx context.Context, inner ports.MarketData, barsPerSec float64) (*PacedData, error) {
	if barsPerSec <= 0 {
		return nil, fmt.Errorf("marketdata.NewPacedData: %w: bars/sec %.4f must be positive", domain.ErrConfiguration, barsPerSec)
	}
	return &PacedData{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(barsPerSec), 1),
		ctx:     ctx,
	}, nil
}

// Next blocks until the pace allows another bar, then advances the inner
// stream.
func (p *PacedData) Next() bool {
	if p.err != nil {
		return false
	}
	if err := p.limiter.Wait(p.ctx); err != nil {
		p.err = fmt.Errorf("marketdata.PacedData: %w", err)
		return false
	}
	return p.inner.Next()
}

// Current returns the inner stream's active bar.
func (p *PacedData) Current() domain.MarketState {
	return p.inner.Current()
}

// Err surfaces a cancelled wait or the inner stream's failure.
func (p *PacedData) Err() error {
	if p.err != nil {
		return p.err
	}
	return p.inner.Err()
}
