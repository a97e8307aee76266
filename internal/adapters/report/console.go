// Package report renders backtest results for the console.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/yannickvh/ctrade/internal/domain"
	"github.com/yannickvh/ctrade/internal/engine"
)

// Console prints a run summary table and, optionally, the tail of the
// equity curve.
type Console struct {
	out      io.Writer
	tailRows int // equity-curve rows to print; 0 disables the curve table
}

// NewConsole creates a console report writing to out.
func NewConsole(out io.Writer, tailRows int) *Console {
	return &Console{out: out, tailRows: tailRows}
}

// PrintSummary renders the headline numbers of one completed run.
func (c *Console) PrintSummary(r *engine.Runner, result *domain.BacktestResult, seedCash float64) {
	stats := r.Stats()
	pf := r.Portfolio()

	fmt.Fprintf(c.out, "\n=== BACKTEST %s (run %s) ===\n", verdict(result, seedCash), r.RunID())

	table := tablewriter.NewWriter(c.out)
	table.Header("Bars", "Orders", "Fills", "Fees", "Final equity", "Return", "Max DD", "Position")
	table.Append(
		fmt.Sprintf("%d", stats.Bars),
		fmt.Sprintf("%d", stats.Orders),
		fmt.Sprintf("%d", stats.Fills),
		fmt.Sprintf("%.4f", stats.FeesPaid),
		fmt.Sprintf("%.4f", result.FinalEquity()),
		fmt.Sprintf("%+.2f%%", returnPct(result, seedCash)),
		fmt.Sprintf("%.4f", result.MaxDrawdown()),
		fmt.Sprintf("%+.6f", pf.Position),
	)
	table.Render()

	if c.tailRows > 0 {
		c.printEquityTail(result)
	}
}

// printEquityTail renders the last rows of the equity curve.
func (c *Console) printEquityTail(result *domain.BacktestResult) {
	n := result.Len()
	start := n - c.tailRows
	if start < 0 {
		start = 0
	}
	if n == 0 {
		fmt.Fprintln(c.out, "  (no bars processed)")
		return
	}

	fmt.Fprintf(c.out, "\nEquity curve (last %d of %d bars):\n", n-start, n)
	table := tablewriter.NewWriter(c.out)
	table.Header("Time", "Equity", "PnL", "Drawdown")
	for i := start; i < n; i++ {
		table.Append(
			time.UnixMilli(result.Timestamps[i]).UTC().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.4f", result.Equity[i]),
			fmt.Sprintf("%+.4f", result.PnL[i]),
			fmt.Sprintf("%.4f", result.Drawdown[i]),
		)
	}
	table.Render()
}

// verdict is the one-word headline for the run.
func verdict(result *domain.BacktestResult, seedCash float64) string {
	switch {
	case result.Len() == 0:
		return "EMPTY"
	case result.FinalEquity() > seedCash:
		return "PROFIT"
	case result.FinalEquity() < seedCash:
		return "LOSS"
	}
	return "FLAT"
}

func returnPct(result *domain.BacktestResult, seedCash float64) float64 {
	if seedCash == 0 || result.Len() == 0 {
		return 0
	}
	return (result.FinalEquity() - seedCash) / seedCash * 100
}
