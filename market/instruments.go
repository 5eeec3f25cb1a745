package market

import "math"

// InstrumentMeta describes a tradable FX pair.
type InstrumentMeta struct {
	Name                string
	BaseCurrency        string
	QuoteCurrency       string
	PipLocation         int
	TradeUnitsPrecision int
	MinimumTradeSize    float64
	MarginRate          float64
}

// Instruments is the static metadata table used for config validation.
var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:                "EUR_USD",
		BaseCurrency:        "EUR",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.02,
	},
	"GBP_USD": {
		Name:                "GBP_USD",
		BaseCurrency:        "GBP",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.03,
	},
	"USD_JPY": {
		Name:                "USD_JPY",
		BaseCurrency:        "USD",
		QuoteCurrency:       "JPY",
		PipLocation:         -2,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.02,
	},
	"AUD_USD": {
		Name:                "AUD_USD",
		BaseCurrency:        "AUD",
		QuoteCurrency:       "USD",
		PipLocation:         -4,
		TradeUnitsPrecision: 0,
		MinimumTradeSize:    1,
		MarginRate:          0.03,
	},
}

// PipValue returns the price size of one pip for symbol, for example
// 0.0001 for EUR_USD and 0.01 for USD_JPY. Unknown symbols fall back to
// 0.0001.
func PipValue(symbol string) float64 {
	meta, ok := Instruments[symbol]
	if !ok {
		return 1e-4
	}
	return math.Pow(10, float64(meta.PipLocation))
}

// KnownInstrument reports whether symbol appears in the metadata table.
func KnownInstrument(symbol string) bool {
	_, ok := Instruments[symbol]
	return ok
}
