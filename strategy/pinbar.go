package strategy

import (
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/feed"
	"github.com/rustyeddy/fxengine/market"
	"github.com/rustyeddy/fxengine/portfolio"
)

// PositionView is the slice of the portfolio a strategy may look at.
type PositionView interface {
	CurrentPosition(symbol string) (portfolio.Position, bool)
}

// PinBar enters on a pin bar reversal candle: a small body with one long
// tail. A long lower tail signals LONG, a long upper tail SHORT. Entries
// carry stop-loss and take-profit prices derived from the configured pip
// distances, so the execution layer registers the protective bracket.
type PinBar struct {
	bars      feed.DataHandler
	bus       *bus.Bus
	positions PositionView

	stopLossPips   float64
	takeProfitPips float64
}

func NewPinBar(bars feed.DataHandler, b *bus.Bus, positions PositionView, stopLossPips, takeProfitPips float64) *PinBar {
	return &PinBar{
		bars:           bars,
		bus:            b,
		positions:      positions,
		stopLossPips:   stopLossPips,
		takeProfitPips: takeProfitPips,
	}
}

func (s *PinBar) CalculateSignals(m *event.Market) {
	bar, ok := s.bars.LatestBar(m.Symbol)
	if !ok {
		return
	}

	kind, ok := resolvePinBar(bar.OpenBid, bar.CloseBid, bar.HighBid, bar.LowBid)
	if !ok {
		return
	}
	if _, open := s.positions.CurrentPosition(m.Symbol); open {
		return
	}

	pip := market.PipValue(m.Symbol)
	price := bar.CloseBid
	var stopLoss, takeProfit float64
	if kind == event.SignalLong {
		stopLoss = price - s.stopLossPips*pip
		takeProfit = price + s.takeProfitPips*pip
	} else {
		stopLoss = price + s.stopLossPips*pip
		takeProfit = price - s.takeProfitPips*pip
	}

	s.bus.Publish(m.Symbol, &event.Signal{
		StrategyID: "pinbar",
		Symbol:     m.Symbol,
		BarTime:    bar.Time,
		EmitTime:   time.Now().UTC(),
		Kind:       kind,
		Strength:   1,
		StopLoss:   event.Float(stopLoss),
		TakeProfit: event.Float(takeProfit),
	})
}

// resolvePinBar classifies a candle. The body must be at most 20% of the
// bar, the dominant tail at least 70% and the other tail at most 20%.
func resolvePinBar(open, close, high, low float64) (event.SignalKind, bool) {
	size := high - low
	if size <= 0 {
		return "", false
	}

	body := open - close
	if body < 0 {
		body = -body
	}
	if body/size > 0.2 {
		return "", false
	}

	bodyTop := max(open, close)
	bodyBottom := min(open, close)
	upperTail := (high - bodyTop) / size
	lowerTail := (bodyBottom - low) / size

	bigger, smaller := upperTail, lowerTail
	if lowerTail > upperTail {
		bigger, smaller = lowerTail, upperTail
	}
	if bigger < 0.7 || smaller > 0.2 {
		return "", false
	}

	if upperTail > lowerTail {
		return event.SignalShort, true
	}
	return event.SignalLong, true
}
