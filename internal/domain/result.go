package domain

// BacktestResult is the sole output artifact of a run: four time-aligned
// sequences with exactly one entry per processed bar.
type BacktestResult struct {
	Timestamps []int64
	Equity     []float64
	PnL        []float64 // equity delta vs the previous bar (seed cash before bar 0)
	Drawdown   []float64 // equity − running max equity, always ≤ 0
}

// Len returns the number of bars recorded.
func (r *BacktestResult) Len() int {
	return len(r.Timestamps)
}

// Append records one bar. runningMax must be the running maximum equity
// including the value being appended.
func (r *BacktestResult) Append(timestamp int64, equity, pnl, runningMax float64) {
	r.Timestamps = append(r.Timestamps, timestamp)
	r.Equity = append(r.Equity, equity)
	r.PnL = append(r.PnL, pnl)
	r.Drawdown = append(r.Drawdown, equity-runningMax)
}

// FinalEquity returns the equity after the last bar, or 0 for an empty run.
func (r *BacktestResult) FinalEquity() float64 {
	if len(r.Equity) == 0 {
		return 0
	}
	return r.Equity[len(r.Equity)-1]
}

// TotalReturn returns the cumulative PnL over the run.
func (r *BacktestResult) TotalReturn() float64 {
	var total float64
	for _, p := range r.PnL {
		total += p
	}
	return total
}

// MaxDrawdown returns the deepest drawdown of the run (≤ 0).
func (r *BacktestResult) MaxDrawdown() float64 {
	var worst float64
	for _, d := range r.Drawdown {
		if d < worst {
			worst = d
		}
	}
	return worst
}
