package portfolio

import (
	"fmt"
	"strings"
)

// Stats summarizes a finished run.
type Stats struct {
	TotalReturn      float64 // percent
	Sharpe           float64
	MaxDrawdown      float64 // percent of starting equity
	DrawdownDuration int     // bars
	FinalTotal       float64
	ClosedTrades     []*Trade
}

func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Return: %.2f%%\n", s.TotalReturn)
	fmt.Fprintf(&b, "Sharpe Ratio: %.2f\n", s.Sharpe)
	fmt.Fprintf(&b, "Max Drawdown: %.2f%%\n", s.MaxDrawdown)
	fmt.Fprintf(&b, "Drawdown Duration: %d bars\n", s.DrawdownDuration)
	fmt.Fprintf(&b, "Closed Trades: %d\n", len(s.ClosedTrades))
	for _, t := range s.ClosedTrades {
		fmt.Fprintf(&b, "  %s  opened %s  closed %s  profit %.2f  commission %.2f\n",
			t.ID,
			t.Opened.Format("2006-01-02 15:04:05"),
			t.Closed.Format("2006-01-02 15:04:05"),
			t.Profit, t.Commission)
	}
	return b.String()
}
