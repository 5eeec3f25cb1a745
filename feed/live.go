package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/market"
)

// StreamResult is the tagged value a BarsProvider delivers: either a
// completed bar, or a terminal error ending that symbol's stream.
type StreamResult struct {
	Bar market.Bar
	Err error
}

// BarsProvider feeds completed bars into per-symbol channels. Start must be
// called once; each symbol's channel is closed after its terminal result.
type BarsProvider interface {
	Start(ctx context.Context)
	Bars(symbol string) <-chan StreamResult
}

// Live adapts a BarsProvider to the DataHandler contract. UpdateBars blocks
// on the provider's channel; a terminal result flips ShouldContinue to
// false and records the reason, isolating the failure to one symbol.
type Live struct {
	store

	bus      *bus.Bus
	symbols  []string
	provider BarsProvider

	ctx       context.Context
	startOnce sync.Once

	smu  sync.Mutex
	done map[string]bool
	errs map[string]error
}

// NewLive builds the live handler. When backfill > 0 it synchronously
// preloads that many historical bars per symbol from source before any
// streaming begins; backfilled bars produce no Market events.
func NewLive(ctx context.Context, b *bus.Bus, symbols []string, provider BarsProvider,
	source CandleSource, tf market.Timeframe, backfill int) (*Live, error) {

	l := &Live{
		store:    newStore(symbols),
		bus:      b,
		symbols:  symbols,
		provider: provider,
		ctx:      ctx,
		done:     make(map[string]bool, len(symbols)),
		errs:     make(map[string]error, len(symbols)),
	}

	if backfill > 0 {
		if source == nil {
			return nil, errors.New("feed: backfill requested without a candle source")
		}
		for _, s := range symbols {
			bars, err := source.GetCandles(ctx, s, tf, backfill)
			if err != nil {
				return nil, fmt.Errorf("backfill %s: %w", s, err)
			}
			for _, bar := range bars {
				l.append(s, bar)
			}
		}
	}

	return l, nil
}

func (l *Live) SymbolList() []string { return l.symbols }

func (l *Live) ShouldContinue(symbol string) bool {
	l.smu.Lock()
	defer l.smu.Unlock()
	return !l.done[symbol]
}

func (l *Live) UpdateBars(symbol string) {
	l.startOnce.Do(func() { l.provider.Start(l.ctx) })

	res, ok := <-l.provider.Bars(symbol)

	switch {
	case !ok:
		l.stop(symbol, fmt.Errorf("feed: bar stream for %s closed", symbol))
	case res.Err != nil:
		l.stop(symbol, res.Err)
	default:
		l.append(symbol, res.Bar)
		l.bus.Publish(symbol, &event.Market{Symbol: symbol})
	}
}

func (l *Live) stop(symbol string, err error) {
	l.smu.Lock()
	l.done[symbol] = true
	if l.errs[symbol] == nil {
		l.errs[symbol] = err
	}
	l.smu.Unlock()
}

func (l *Live) PositionProgress(symbol string) float64 { return 0 }

// Err returns every recorded end-of-stream reason joined, or nil while all
// lanes are healthy.
func (l *Live) Err() error {
	l.smu.Lock()
	defer l.smu.Unlock()

	errs := make([]error, 0, len(l.errs))
	for _, s := range l.symbols {
		if err := l.errs[s]; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SymbolErr returns the end-of-stream reason recorded for symbol, or nil.
func (l *Live) SymbolErr(symbol string) error {
	l.smu.Lock()
	defer l.smu.Unlock()
	return l.errs[symbol]
}
