package engine

import "github.com/yannickvh/ctrade/internal/domain"

// Portfolio is the running account of one backtest: cash, net position and
// mark-to-market equity. It is exclusively owned by the run's goroutine;
// no locking, because there is no concurrent writer. Cash may go negative
// under leverage; position is signed (positive = long).
type Portfolio struct {
	Cash     float64
	Position float64
	Equity   float64
}

// NewPortfolio creates a portfolio seeded with the given cash.
func NewPortfolio(seedCash float64) *Portfolio {
	return &Portfolio{
		Cash:   seedCash,
		Equity: seedCash,
	}
}

// ApplyFill mutates cash and position for one fill. A buy spends
// notional+fee and adds size to the position; a sell collects notional−fee
// and subtracts it. Equity is NOT updated here; it is recomputed once per
// bar by MarkToMarket so a single canonical price values the position.
func (p *Portfolio) ApplyFill(f domain.Fill) {
	if f.Side == domain.Buy {
		p.Cash -= f.Notional() + f.Fee
		p.Position += f.Size
	} else {
		p.Cash += f.Notional() - f.Fee
		p.Position -= f.Size
	}
}

// MarkToMarket revalues the open position at the given price and returns
// the resulting equity. Called once per bar after all fills are applied,
// fills or not, so mark-to-market drift is always tracked.
func (p *Portfolio) MarkToMarket(price float64) float64 {
	p.Equity = p.Cash + p.Position*price
	return p.Equity
}
