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

// fakeCandles returns scripted responses per call, cycling the last one.
type fakeCandles struct {
	calls     int
	responses []func() ([]market.Bar, error)
}

func (f *fakeCandles) GetCandles(ctx context.Context, symbol string, tf market.Timeframe, count int) ([]market.Bar, error) {
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	return f.responses[i]()
}

func failN(n int, err error, then market.Bar) *fakeCandles {
	responses := make([]func() ([]market.Bar, error), 0, n+1)
	for i := 0; i < n; i++ {
		responses = append(responses, func() ([]market.Bar, error) { return nil, err })
	}
	responses = append(responses, func() ([]market.Bar, error) { return []market.Bar{then}, nil })
	return &fakeCandles{responses: responses}
}

func TestPollerGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	source := &fakeCandles{responses: []func() ([]market.Bar, error){
		func() ([]market.Bar, error) { return nil, errors.New("connection reset") },
	}}

	p := NewPoller(source, []string{"EUR_USD"}, PollerConfig{
		Timeframe:   market.M1,
		Interval:    time.Millisecond,
		RetryDelay:  time.Millisecond,
		MaxAttempts: 5,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.Start(ctx)

	res, ok := <-p.Bars("EUR_USD")
	require.True(t, ok)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "giving up after 5 failed fetches")

	// The stream is closed after the terminal result.
	_, ok = <-p.Bars("EUR_USD")
	assert.False(t, ok)

	assert.Equal(t, 5, source.calls)
}

func TestPollerRecoversWithinBudget(t *testing.T) {
	t.Parallel()

	bar := market.Bar{
		Time:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		CloseBid: 1.1005,
	}
	source := failN(3, errors.New("timeout"), bar)

	p := NewPoller(source, []string{"EUR_USD"}, PollerConfig{
		Timeframe:   market.M1,
		Interval:    time.Millisecond,
		RetryDelay:  time.Millisecond,
		MaxAttempts: 5,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p.Start(ctx)

	res, ok := <-p.Bars("EUR_USD")
	require.True(t, ok)
	require.NoError(t, res.Err)
	assert.Equal(t, bar.Time, res.Bar.Time)
}

func TestPollerDedupesByBarTime(t *testing.T) {
	t.Parallel()

	t1 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	source := &fakeCandles{responses: []func() ([]market.Bar, error){
		func() ([]market.Bar, error) { return []market.Bar{{Time: t1, CloseBid: 1.1}}, nil },
		func() ([]market.Bar, error) { return []market.Bar{{Time: t1, CloseBid: 1.1}}, nil },
		func() ([]market.Bar, error) { return []market.Bar{{Time: t2, CloseBid: 1.2}}, nil },
	}}

	p := NewPoller(source, []string{"EUR_USD"}, PollerConfig{
		Timeframe:   market.M1,
		Interval:    time.Millisecond,
		RetryDelay:  time.Millisecond,
		MaxAttempts: 5,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	first := <-p.Bars("EUR_USD")
	second := <-p.Bars("EUR_USD")

	assert.Equal(t, t1, first.Bar.Time)
	assert.Equal(t, t2, second.Bar.Time)
}
