package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/fxengine/logger"
	"github.com/rustyeddy/fxengine/market"
)

// Tick is one raw bid/ask quote from a streaming source.
type Tick struct {
	Symbol string
	Time   time.Time
	Bid    float64
	Ask    float64
}

// TickResult is the tagged value a TickSource delivers: a tick, or the
// terminal error that ended the stream.
type TickResult struct {
	Tick Tick
	Err  error
}

// TickSource opens a quote stream and yields ticks until the stream ends.
// The returned channel is closed after the terminal result.
type TickSource interface {
	Start(ctx context.Context) (<-chan TickResult, error)
}

// Aggregator is a BarsProvider that builds fixed-timeframe bars out of raw
// ticks: per symbol it tracks the current frame's inclusive borders and
// accumulates bid and ask OHLC (open=first, close=last, high=max, low=min);
// the first tick past the border emits the completed bar and starts a new
// one. A stream failure ends every symbol fed by the source.
type Aggregator struct {
	source  TickSource
	symbols []string
	tf      market.Timeframe
	log     logger.Logger
	out     map[string]chan StreamResult
}

func NewAggregator(source TickSource, symbols []string, tf market.Timeframe, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop{}
	}

	out := make(map[string]chan StreamResult, len(symbols))
	for _, s := range symbols {
		out[s] = make(chan StreamResult, 16)
	}
	return &Aggregator{source: source, symbols: symbols, tf: tf, log: log, out: out}
}

func (a *Aggregator) Bars(symbol string) <-chan StreamResult {
	return a.out[symbol]
}

func (a *Aggregator) Start(ctx context.Context) {
	go a.run(ctx)
}

func (a *Aggregator) run(ctx context.Context) {
	defer func() {
		for _, ch := range a.out {
			close(ch)
		}
	}()

	ticks, err := a.source.Start(ctx)
	if err != nil {
		a.fail(ctx, fmt.Errorf("tick stream connect: %w", err))
		return
	}

	open := make(map[string]*openBar, len(a.symbols))

	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-ticks:
			if !ok {
				a.fail(ctx, errors.New("tick stream closed"))
				return
			}
			if res.Err != nil {
				a.fail(ctx, res.Err)
				return
			}
			a.apply(ctx, open, res.Tick)
		}
	}
}

func (a *Aggregator) apply(ctx context.Context, open map[string]*openBar, t Tick) {
	out, known := a.out[t.Symbol]
	if !known {
		return
	}

	ob := open[t.Symbol]
	if ob == nil {
		open[t.Symbol] = newOpenBar(a.tf, t)
		return
	}

	// Inclusive end: a tick at the border still belongs to this bar.
	if !t.Time.After(ob.end) {
		ob.update(t)
		return
	}

	select {
	case out <- StreamResult{Bar: ob.bar()}:
	case <-ctx.Done():
		return
	}
	open[t.Symbol] = newOpenBar(a.tf, t)
}

// fail sends the terminal error to every symbol of this source.
func (a *Aggregator) fail(ctx context.Context, err error) {
	a.log.Write("tick stream: " + err.Error())
	for _, s := range a.symbols {
		select {
		case a.out[s] <- StreamResult{Err: err}:
		case <-ctx.Done():
			return
		}
	}
}

// openBar accumulates the in-progress bar for one symbol.
type openBar struct {
	start, end time.Time

	bidO, bidH, bidL, bidC float64
	askO, askH, askL, askC float64
}

func newOpenBar(tf market.Timeframe, t Tick) *openBar {
	start, end := tf.Borders(t.Time)
	return &openBar{
		start: start, end: end,
		bidO: t.Bid, bidH: t.Bid, bidL: t.Bid, bidC: t.Bid,
		askO: t.Ask, askH: t.Ask, askL: t.Ask, askC: t.Ask,
	}
}

func (ob *openBar) update(t Tick) {
	ob.bidC = t.Bid
	ob.askC = t.Ask

	if t.Bid > ob.bidH {
		ob.bidH = t.Bid
	}
	if t.Bid < ob.bidL {
		ob.bidL = t.Bid
	}
	if t.Ask > ob.askH {
		ob.askH = t.Ask
	}
	if t.Ask < ob.askL {
		ob.askL = t.Ask
	}
}

func (ob *openBar) bar() market.Bar {
	return market.Bar{
		Time:     ob.start,
		OpenBid:  ob.bidO,
		OpenAsk:  ob.askO,
		HighBid:  ob.bidH,
		HighAsk:  ob.askH,
		LowBid:   ob.bidL,
		LowAsk:   ob.askL,
		CloseBid: ob.bidC,
		CloseAsk: ob.askC,
	}
}
