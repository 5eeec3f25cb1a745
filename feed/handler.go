// Package feed supplies Market events to the engine, either from a finite
// historic replay or from a live bar provider. Both supplies satisfy the
// same DataHandler contract so the rest of the pipeline cannot tell them
// apart.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/fxengine/market"
)

// DataHandler is the data-supply contract consumed by the engine, strategy,
// portfolio and execution engine.
type DataHandler interface {
	SymbolList() []string

	// HasBars reports whether at least one bar has been observed for symbol.
	HasBars(symbol string) bool

	// ShouldContinue reports whether the symbol's lane should keep asking
	// for bars. Once false it never becomes true again.
	ShouldContinue(symbol string) bool

	LatestBar(symbol string) (market.Bar, bool)

	// LatestBars returns up to n most recent bars, oldest first.
	LatestBars(symbol string, n int) []market.Bar

	LatestBarValue(symbol string, field market.BarField) (float64, error)
	LatestBarTime(symbol string) (time.Time, bool)

	// UpdateBars pulls the next bar for symbol, appends it to the observed
	// series and publishes a Market event. In live mode it blocks until a
	// bar or an end-of-stream result arrives. It never panics past the
	// worker loop; stream failure is reported via ShouldContinue and Err.
	UpdateBars(symbol string)

	// PositionProgress reports replay progress for symbol in percent.
	// Live supplies report 0.
	PositionProgress(symbol string) float64

	// Err returns the accumulated end-of-stream reasons, or nil.
	Err() error

	// SymbolErr returns the end-of-stream reason for one symbol, or nil.
	SymbolErr(symbol string) error
}

// CandleSource fetches historical candles; satisfied by the oanda client.
type CandleSource interface {
	GetCandles(ctx context.Context, symbol string, tf market.Timeframe, count int) ([]market.Bar, error)
}

// store holds the observed bar series per symbol. Lanes append concurrently
// while the portfolio reads across symbols, so access is guarded.
type store struct {
	mu     sync.RWMutex
	latest map[string][]market.Bar
}

func newStore(symbols []string) store {
	latest := make(map[string][]market.Bar, len(symbols))
	for _, s := range symbols {
		latest[s] = nil
	}
	return store{latest: latest}
}

func (s *store) append(symbol string, b market.Bar) {
	s.mu.Lock()
	s.latest[symbol] = append(s.latest[symbol], b)
	s.mu.Unlock()
}

func (s *store) HasBars(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.latest[symbol]) > 0
}

func (s *store) LatestBar(symbol string) (market.Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars := s.latest[symbol]
	if len(bars) == 0 {
		return market.Bar{}, false
	}
	return bars[len(bars)-1], true
}

func (s *store) LatestBars(symbol string, n int) []market.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bars := s.latest[symbol]
	if n <= 0 || len(bars) == 0 {
		return nil
	}
	if n > len(bars) {
		n = len(bars)
	}

	out := make([]market.Bar, n)
	copy(out, bars[len(bars)-n:])
	return out
}

func (s *store) LatestBarValue(symbol string, field market.BarField) (float64, error) {
	b, ok := s.LatestBar(symbol)
	if !ok {
		return 0, &NoBarsError{Symbol: symbol}
	}
	return b.Value(field)
}

func (s *store) LatestBarTime(symbol string) (time.Time, bool) {
	b, ok := s.LatestBar(symbol)
	if !ok {
		return time.Time{}, false
	}
	return b.Time, true
}

// NoBarsError reports a read against a symbol with no observed bars yet.
type NoBarsError struct {
	Symbol string
}

func (e *NoBarsError) Error() string {
	return "feed: no bars observed for " + e.Symbol
}
