package portfolio

import "math"

// SharpeRatio annualizes the mean period return over its standard
// deviation. periods is the number of bars per year (252 for daily, 252*6.5
// for hourly and so on). Returns 0 when the series carries no variance.
func SharpeRatio(returns []float64, periods float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}
	return math.Sqrt(periods) * mean / std
}

// Drawdowns walks the equity curve and returns the per-bar drawdown from
// the running high-water mark, the deepest drawdown, and the longest run of
// consecutive bars spent underwater.
func Drawdowns(equity []float64) (drawdown []float64, maxDD float64, maxDuration int) {
	drawdown = make([]float64, len(equity))
	var hwm float64
	var duration int
	for i, e := range equity {
		if e > hwm {
			hwm = e
		}
		drawdown[i] = hwm - e
		if drawdown[i] > maxDD {
			maxDD = drawdown[i]
		}
		if drawdown[i] > 0 {
			duration++
			if duration > maxDuration {
				maxDuration = duration
			}
		} else {
			duration = 0
		}
	}
	return drawdown, maxDD, maxDuration
}
