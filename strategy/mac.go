package strategy

import (
	"sync"
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/feed"
	"github.com/rustyeddy/fxengine/indicators"
	"github.com/rustyeddy/fxengine/market"
)

// MovingAverageCross goes long when the short simple moving average of the
// close bid crosses above the long one, and exits when it crosses back
// below. One state flag per symbol keeps it from pyramiding.
type MovingAverageCross struct {
	bars feed.DataHandler
	bus  *bus.Bus

	shortWindow int
	longWindow  int

	mu     sync.Mutex
	inside map[string]bool
}

func NewMovingAverageCross(bars feed.DataHandler, b *bus.Bus, shortWindow, longWindow int) *MovingAverageCross {
	inside := make(map[string]bool)
	for _, s := range bars.SymbolList() {
		inside[s] = false
	}
	return &MovingAverageCross{
		bars:        bars,
		bus:         b,
		shortWindow: shortWindow,
		longWindow:  longWindow,
		inside:      inside,
	}
}

func (s *MovingAverageCross) CalculateSignals(m *event.Market) {
	bars := s.bars.LatestBars(m.Symbol, s.longWindow)
	if len(bars) < s.longWindow {
		return
	}

	shortSMA, err := indicators.SMA(bars, market.FieldCloseBid, s.shortWindow)
	if err != nil {
		return
	}
	longSMA, err := indicators.SMA(bars, market.FieldCloseBid, s.longWindow)
	if err != nil {
		return
	}

	barTime, _ := s.bars.LatestBarTime(m.Symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case shortSMA > longSMA && !s.inside[m.Symbol]:
		s.inside[m.Symbol] = true
		s.emit(m.Symbol, barTime, event.SignalLong)
	case shortSMA < longSMA && s.inside[m.Symbol]:
		s.inside[m.Symbol] = false
		s.emit(m.Symbol, barTime, event.SignalExit)
	}
}

func (s *MovingAverageCross) emit(symbol string, barTime time.Time, kind event.SignalKind) {
	s.bus.Publish(symbol, &event.Signal{
		StrategyID: "mac",
		Symbol:     symbol,
		BarTime:    barTime,
		EmitTime:   time.Now().UTC(),
		Kind:       kind,
		Strength:   1,
	})
}
