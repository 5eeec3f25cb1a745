package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/market"
)

// stubBars serves a fixed bar series per symbol.
type stubBars struct {
	symbols []string
	bars    map[string]market.Bar
	series  map[string][]market.Bar
}

func (s *stubBars) SymbolList() []string            { return s.symbols }
func (s *stubBars) ShouldContinue(string) bool      { return true }
func (s *stubBars) UpdateBars(string)               {}
func (s *stubBars) PositionProgress(string) float64 { return 0 }
func (s *stubBars) Err() error                      { return nil }
func (s *stubBars) SymbolErr(string) error          { return nil }

func (s *stubBars) HasBars(symbol string) bool {
	_, ok := s.bars[symbol]
	return ok || len(s.series[symbol]) > 0
}

func (s *stubBars) LatestBar(symbol string) (market.Bar, bool) {
	if b, ok := s.bars[symbol]; ok {
		return b, true
	}
	series := s.series[symbol]
	if len(series) == 0 {
		return market.Bar{}, false
	}
	return series[len(series)-1], true
}

func (s *stubBars) LatestBars(symbol string, n int) []market.Bar {
	series := s.series[symbol]
	if n > len(series) {
		n = len(series)
	}
	return series[len(series)-n:]
}

func (s *stubBars) LatestBarValue(symbol string, field market.BarField) (float64, error) {
	b, ok := s.LatestBar(symbol)
	if !ok {
		return 0, assert.AnError
	}
	return b.Value(field)
}

func (s *stubBars) LatestBarTime(symbol string) (time.Time, bool) {
	b, ok := s.LatestBar(symbol)
	return b.Time, ok
}

func flatSeries(n int, closeBid float64) []market.Bar {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]market.Bar, n)
	for i := range out {
		out[i] = market.Bar{Time: base.Add(time.Duration(i) * time.Minute), CloseBid: closeBid}
	}
	return out
}

func TestMACNeedsFullWindow(t *testing.T) {
	t.Parallel()

	bars := &stubBars{
		symbols: []string{"EUR_USD"},
		series:  map[string][]market.Bar{"EUR_USD": flatSeries(3, 1.10)},
	}
	b := bus.New(bars.symbols)

	s := NewMovingAverageCross(bars, b, 2, 4)
	s.CalculateSignals(&event.Market{Symbol: "EUR_USD"})

	assert.Equal(t, 0, b.Queue("EUR_USD").Len())
}

func TestMACGoesLongOnCrossAndExitsOnCrossBack(t *testing.T) {
	t.Parallel()

	// Rising closes: the short average sits above the long one.
	rising := flatSeries(4, 0)
	for i, c := range []float64{1.10, 1.10, 1.11, 1.12} {
		rising[i].CloseBid = c
	}

	bars := &stubBars{
		symbols: []string{"EUR_USD"},
		series:  map[string][]market.Bar{"EUR_USD": rising},
	}
	b := bus.New(bars.symbols)

	s := NewMovingAverageCross(bars, b, 2, 4)
	s.CalculateSignals(&event.Market{Symbol: "EUR_USD"})

	q := b.Queue("EUR_USD")
	require.Equal(t, 1, q.Len())
	e, _ := q.Get()
	sig := e.(*event.Signal)
	assert.Equal(t, event.SignalLong, sig.Kind)
	assert.Equal(t, "mac", sig.StrategyID)

	// Same data again: already in the market, no repeat signal.
	s.CalculateSignals(&event.Market{Symbol: "EUR_USD"})
	assert.Equal(t, 0, q.Len())

	// Falling closes flip the averages: exit.
	falling := flatSeries(4, 0)
	for i, c := range []float64{1.12, 1.12, 1.11, 1.10} {
		falling[i].CloseBid = c
	}
	bars.series["EUR_USD"] = falling

	s.CalculateSignals(&event.Market{Symbol: "EUR_USD"})
	require.Equal(t, 1, q.Len())
	e, _ = q.Get()
	assert.Equal(t, event.SignalExit, e.(*event.Signal).Kind)
}
