// Package sizing decides how large a new position should be.
package sizing

import "github.com/rustyeddy/fxengine/portfolio"

// LotSize is the unit count of one standard FX lot.
const LotSize = 100000

// Fixed sizes every entry at a constant number of lots regardless of
// holdings or open positions.
type Fixed struct {
	Lots float64
}

func NewFixed(lots float64) *Fixed {
	return &Fixed{Lots: lots}
}

func (s *Fixed) Size(symbol string, holdings portfolio.Holdings, positions map[string]*portfolio.Position) float64 {
	return s.Lots * LotSize
}
