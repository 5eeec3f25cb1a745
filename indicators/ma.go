// Package indicators provides the moving-average calculations used by the
// built-in strategies.
package indicators

import (
	"fmt"

	"github.com/rustyeddy/fxengine/market"
)

// SMA calculates the Simple Moving Average of field over the last period
// bars.
func SMA(bars []market.Bar, field market.BarField, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	sum := 0.0
	for i := len(bars) - period; i < len(bars); i++ {
		v, err := bars[i].Value(field)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum / float64(period), nil
}

// EMA calculates the Exponential Moving Average of field, seeded with the
// SMA of the first period bars.
func EMA(bars []market.Bar, field market.BarField, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(bars) < period {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", period, len(bars))
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		v, err := bars[i].Value(field)
		if err != nil {
			return 0, err
		}
		sma += v
	}
	ema := sma / float64(period)

	for i := period; i < len(bars); i++ {
		v, err := bars[i].Value(field)
		if err != nil {
			return 0, err
		}
		ema = (v-ema)*multiplier + ema
	}
	return ema, nil
}
