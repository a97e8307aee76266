// Package engine implements the simulation core: the order-matching model,
// portfolio accounting, the per-bar execution context, and the backtest
// driver that ties them to a market-data stream and a strategy.
package engine

import (
	"fmt"

	"github.com/yannickvh/ctrade/internal/domain"
)

// sizeEpsilon absorbs float residue when a fill consumes an order exactly.
const sizeEpsilon = 1e-12

// ExecutionEngine matches pending orders against one bar at a time.
// Matching is slippage-free: market orders execute at the quoted
// counter-side price with no further price impact.
//
// Crossing rules (bar data cannot resolve intrabar sequencing, so one
// deterministic rule is fixed per type):
//   - Market: buy fills at Ask, sell at Bid, unconditionally.
//   - Limit: buy fills when Low ≤ limit, sell when High ≥ limit, always AT
//     the limit price.
//   - Stop: triggers when the bar range touches the stop (buy: High ≥ stop,
//     sell: Low ≤ stop) and fills as a market order on the same bar.
//   - StopLimit: trigger and limit-cross are both evaluated on the trigger
//     bar; if only the trigger fires, the order rests as a limit.
//
// Orders are processed strictly in submission (id) order. Insufficient
// liquidity is not an error: the order simply produces no fill that bar.
type ExecutionEngine struct {
	feeRate        float64
	maxVolumeRatio float64 // per-order fill cap as a fraction of bar volume; 0 = uncapped
}

// NewExecutionEngine creates an engine with a fixed proportional fee rate.
// maxVolumeRatio > 0 enables volume-capped partial fills: a single order
// can consume at most maxVolumeRatio × bar volume per bar, the remainder
// stays pending.
func NewExecutionEngine(feeRate, maxVolumeRatio float64) (*ExecutionEngine, error) {
	if feeRate < 0 {
		return nil, fmt.Errorf("engine.NewExecutionEngine: %w: negative fee rate %.6f", domain.ErrConfiguration, feeRate)
	}
	if maxVolumeRatio < 0 {
		return nil, fmt.Errorf("engine.NewExecutionEngine: %w: negative volume ratio %.6f", domain.ErrConfiguration, maxVolumeRatio)
	}
	return &ExecutionEngine{feeRate: feeRate, maxVolumeRatio: maxVolumeRatio}, nil
}

// FeeRate returns the proportional fee applied to every fill's notional.
func (e *ExecutionEngine) FeeRate() float64 {
	return e.feeRate
}

// Execute matches the given orders against one bar and returns the fills in
// submission order. It mutates only the orders' lifecycle fields (Status,
// Remaining); everything else it touches is per-call.
func (e *ExecutionEngine) Execute(orders []*domain.Order, market domain.MarketState) ([]domain.Fill, error) {
	if err := market.Validate(); err != nil {
		return nil, fmt.Errorf("engine.Execute: %w", err)
	}

	var fills []domain.Fill
	for _, o := range orders {
		if !o.Open() {
			continue
		}
		if o.Size <= 0 {
			return nil, fmt.Errorf("engine.Execute: %w: order %d has size %.8f", domain.ErrConfiguration, o.ID, o.Size)
		}

		price, matched := e.matchPrice(o, market)
		if !matched || price <= 0 {
			continue // resting or no quote this bar
		}

		size := o.Remaining
		if e.maxVolumeRatio > 0 {
			if most := e.maxVolumeRatio * market.Volume; most < size {
				size = most
			}
		}
		if size <= 0 {
			continue
		}

		fills = append(fills, domain.Fill{
			OrderID:   o.ID,
			Side:      o.Side,
			Price:     price,
			Size:      size,
			Fee:       size * price * e.feeRate,
			Timestamp: market.Timestamp,
		})

		o.Remaining -= size
		if o.Remaining <= sizeEpsilon {
			o.Remaining = 0
			o.Status = domain.StatusFilled
		} else {
			o.Status = domain.StatusPartiallyFilled
		}
	}
	return fills, nil
}

// matchPrice applies the per-type crossing rule and returns the execution
// price when the order matches this bar. It advances stop orders to
// StatusTriggered as a side effect.
func (e *ExecutionEngine) matchPrice(o *domain.Order, market domain.MarketState) (float64, bool) {
	switch o.Type {
	case domain.Market:
		return quoteFor(o.Side, market), true

	case domain.Limit:
		return limitCross(o.Side, o.Price, market)

	case domain.Stop:
		if o.Status == domain.StatusPending {
			if !stopTouched(o.Side, o.StopPrice, market) {
				return 0, false
			}
			o.Status = domain.StatusTriggered
		}
		// Triggered (or already partially filled): behaves as a market order.
		return quoteFor(o.Side, market), true

	case domain.StopLimit:
		if o.Status == domain.StatusPending {
			if !stopTouched(o.Side, o.StopPrice, market) {
				return 0, false
			}
			o.Status = domain.StatusTriggered
		}
		// Once triggered the limit test applies, same bar included.
		return limitCross(o.Side, o.Price, market)
	}
	return 0, false
}

// quoteFor returns the counter-side quote: buys lift the ask, sells hit the
// bid. A zero quote means no liquidity.
func quoteFor(side domain.Side, market domain.MarketState) float64 {
	if side == domain.Buy {
		return market.Ask
	}
	return market.Bid
}

// limitCross reports whether the bar range crossed the limit. Crossed limits
// always fill at the limit price itself.
func limitCross(side domain.Side, limit float64, market domain.MarketState) (float64, bool) {
	if side == domain.Buy {
		if market.Low <= limit {
			return limit, true
		}
		return 0, false
	}
	if market.High >= limit {
		return limit, true
	}
	return 0, false
}

// stopTouched reports whether the bar range touched the stop trigger.
func stopTouched(side domain.Side, stop float64, market domain.MarketState) bool {
	if side == domain.Buy {
		return market.High >= stop
	}
	return market.Low <= stop
}
