package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxengine/market"
)

// scriptedTicks plays a fixed tick sequence.
type scriptedTicks struct {
	results []TickResult
	connErr error
}

func (s *scriptedTicks) Start(ctx context.Context) (<-chan TickResult, error) {
	if s.connErr != nil {
		return nil, s.connErr
	}
	ch := make(chan TickResult, len(s.results))
	for _, r := range s.results {
		ch <- r
	}
	return ch, nil
}

func tickAt(symbol string, ts time.Time, bid, ask float64) TickResult {
	return TickResult{Tick: Tick{Symbol: symbol, Time: ts, Bid: bid, Ask: ask}}
}

func TestAggregatorBuildsBarFromTicks(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	source := &scriptedTicks{results: []TickResult{
		tickAt("EUR_USD", base.Add(2*time.Second), 1.1000, 1.1002),
		tickAt("EUR_USD", base.Add(20*time.Second), 1.1015, 1.1017),
		tickAt("EUR_USD", base.Add(45*time.Second), 1.0990, 1.0992),
		// Last second of the frame, still inside.
		tickAt("EUR_USD", base.Add(59*time.Second), 1.1005, 1.1007),
		// First tick of the next frame completes the bar.
		tickAt("EUR_USD", base.Add(60*time.Second), 1.1008, 1.1010),
	}}

	a := NewAggregator(source, []string{"EUR_USD"}, market.M1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	res := <-a.Bars("EUR_USD")
	require.NoError(t, res.Err)

	bar := res.Bar
	assert.Equal(t, base, bar.Time)
	assert.Equal(t, 1.1000, bar.OpenBid)
	assert.Equal(t, 1.1015, bar.HighBid)
	assert.Equal(t, 1.0990, bar.LowBid)
	assert.Equal(t, 1.1005, bar.CloseBid)
	assert.Equal(t, 1.1002, bar.OpenAsk)
	assert.Equal(t, 1.1017, bar.HighAsk)
	assert.Equal(t, 1.0992, bar.LowAsk)
	assert.Equal(t, 1.1007, bar.CloseAsk)
}

func TestAggregatorStreamFailureFansOut(t *testing.T) {
	t.Parallel()

	source := &scriptedTicks{results: []TickResult{
		{Err: errors.New("socket closed")},
	}}
	symbols := []string{"EUR_USD", "GBP_USD"}

	a := NewAggregator(source, symbols, market.M1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	for _, s := range symbols {
		res := <-a.Bars(s)
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "socket closed")
	}
}

func TestAggregatorConnectFailure(t *testing.T) {
	t.Parallel()

	source := &scriptedTicks{connErr: errors.New("dial refused")}
	a := NewAggregator(source, []string{"EUR_USD"}, market.M1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	res := <-a.Bars("EUR_USD")
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "dial refused")
}

func TestAggregatorIgnoresUnknownSymbols(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	source := &scriptedTicks{results: []TickResult{
		tickAt("USD_CHF", base, 0.88, 0.8802),
		tickAt("EUR_USD", base.Add(time.Second), 1.10, 1.1002),
		tickAt("EUR_USD", base.Add(61*time.Second), 1.11, 1.1102),
	}}

	a := NewAggregator(source, []string{"EUR_USD"}, market.M1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.Start(ctx)

	res := <-a.Bars("EUR_USD")
	require.NoError(t, res.Err)
	assert.Equal(t, 1.10, res.Bar.OpenBid)
}
