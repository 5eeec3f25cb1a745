// Package market holds the bar record shared by both data supplies, the
// fixed time-frame table and the tradable instrument metadata.
package market

import (
	"fmt"
	"time"
)

// Bar is one OHLC record over a fixed time-frame, kept separately for bid
// and ask.
type Bar struct {
	Time     time.Time
	OpenBid  float64
	OpenAsk  float64
	HighBid  float64
	HighAsk  float64
	LowBid   float64
	LowAsk   float64
	CloseBid float64
	CloseAsk float64
	Volume   float64
}

// BarField names one numeric field of a Bar for field-based access.
type BarField string

const (
	FieldOpenBid  BarField = "open_bid"
	FieldOpenAsk  BarField = "open_ask"
	FieldHighBid  BarField = "high_bid"
	FieldHighAsk  BarField = "high_ask"
	FieldLowBid   BarField = "low_bid"
	FieldLowAsk   BarField = "low_ask"
	FieldCloseBid BarField = "close_bid"
	FieldCloseAsk BarField = "close_ask"
	FieldVolume   BarField = "volume"
)

// Value returns the named field of the bar.
func (b Bar) Value(field BarField) (float64, error) {
	switch field {
	case FieldOpenBid:
		return b.OpenBid, nil
	case FieldOpenAsk:
		return b.OpenAsk, nil
	case FieldHighBid:
		return b.HighBid, nil
	case FieldHighAsk:
		return b.HighAsk, nil
	case FieldLowBid:
		return b.LowBid, nil
	case FieldLowAsk:
		return b.LowAsk, nil
	case FieldCloseBid:
		return b.CloseBid, nil
	case FieldCloseAsk:
		return b.CloseAsk, nil
	case FieldVolume:
		return b.Volume, nil
	}
	return 0, fmt.Errorf("market: unknown bar field %q", field)
}
