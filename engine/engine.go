// Package engine runs the event loop: one worker goroutine per symbol pulls
// bars, drains that symbol's queue and dispatches each event to the
// strategy, execution handler and portfolio.
package engine

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/execution"
	"github.com/rustyeddy/fxengine/feed"
	"github.com/rustyeddy/fxengine/logger"
	"github.com/rustyeddy/fxengine/portfolio"
	"github.com/rustyeddy/fxengine/strategy"
)

// Engine drives one run, historic or live. The components are shared across
// the per-symbol lanes; the portfolio and execution handler carry their own
// locks, the engine adds none beyond the progress writer's.
type Engine struct {
	bars      feed.DataHandler
	bus       *bus.Bus
	strategy  strategy.Strategy
	portfolio *portfolio.Portfolio
	execution execution.Handler
	log       logger.Logger

	heartbeat time.Duration
	progress  io.Writer

	signals atomic.Int64
	orders  atomic.Int64
	fills   atomic.Int64

	pmu sync.Mutex
}

type Option func(*Engine)

// WithHeartbeat makes each lane sleep between iterations. Historic replays
// run with zero heartbeat; live runs typically use a short pause.
func WithHeartbeat(d time.Duration) Option {
	return func(e *Engine) { e.heartbeat = d }
}

// WithProgress sets where the progress line is written. Defaults to
// io.Discard.
func WithProgress(w io.Writer) Option {
	return func(e *Engine) { e.progress = w }
}

func New(bars feed.DataHandler, b *bus.Bus, st strategy.Strategy, p *portfolio.Portfolio, exec execution.Handler, log logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		bars:      bars,
		bus:       b,
		strategy:  st,
		portfolio: p,
		execution: exec,
		log:       log,
		progress:  io.Discard,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run starts one lane per symbol, waits for all of them to finish, then
// finalizes the portfolio. A lane stops on its own data supply ending or
// failing; a failed lane never stops its siblings.
func (e *Engine) Run() (portfolio.Stats, error) {
	if err := e.log.Open(); err != nil {
		return portfolio.Stats{}, fmt.Errorf("open run log: %w", err)
	}
	defer e.log.Close()

	var wg sync.WaitGroup
	for _, symbol := range e.bars.SymbolList() {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			e.runSymbol(symbol)
		}(symbol)
	}
	wg.Wait()

	fmt.Fprintln(e.progress)

	return e.portfolio.Finalize()
}

func (e *Engine) runSymbol(symbol string) {
	q := e.bus.Queue(symbol)

	i := 0
	for {
		i++
		e.writeProgress()

		if !e.bars.ShouldContinue(symbol) {
			if err := e.bars.SymbolErr(symbol); err != nil {
				e.logMessage(i, err.Error())
			}
			break
		}
		e.bars.UpdateBars(symbol)

		for {
			ev, ok := q.Get()
			if !ok {
				break
			}
			e.dispatch(ev)
			e.logMessage(i, ev.String())
		}

		if e.heartbeat > 0 {
			time.Sleep(e.heartbeat)
		}
	}

	e.logMessage(i, "stopping processing "+symbol)
}

func (e *Engine) dispatch(ev event.Event) {
	switch ev := ev.(type) {
	case *event.ClosePendingOrders:
		e.execution.ClearPendingOrders(ev.Symbol)
	case *event.Market:
		e.strategy.CalculateSignals(ev)
		e.execution.UpdateStopAndLimitOrders(ev)
		e.portfolio.SnapshotTimeIndex()
	case *event.Signal:
		e.signals.Add(1)
		e.portfolio.OnSignal(ev)
	case *event.Order:
		e.orders.Add(1)
		if err := e.execution.Execute(ev); err != nil {
			e.logMessage(0, fmt.Sprintf("execute order %s: %v", ev.Symbol, err))
		}
	case *event.Fill:
		e.fills.Add(1)
		e.portfolio.OnFill(ev)
	}
}

func (e *Engine) writeProgress() {
	symbols := e.bars.SymbolList()
	if len(symbols) == 0 {
		return
	}
	var sum float64
	for _, s := range symbols {
		sum += e.bars.PositionProgress(s)
	}
	pct := int(math.Round(sum / float64(len(symbols))))

	e.pmu.Lock()
	fmt.Fprintf(e.progress, "Running backtest (%d%%)\r", pct)
	e.pmu.Unlock()
}

func (e *Engine) logMessage(iteration int, msg string) {
	if msg == "" {
		return
	}
	e.log.Write(fmt.Sprintf("#%d - %s", iteration, msg))
}

// Signals reports how many signal events were dispatched.
func (e *Engine) Signals() int64 { return e.signals.Load() }

// Orders reports how many order events were dispatched.
func (e *Engine) Orders() int64 { return e.orders.Load() }

// Fills reports how many fill events were dispatched.
func (e *Engine) Fills() int64 { return e.fills.Load() }

// PrintPerformance writes the run summary and the event counters to w.
func (e *Engine) PrintPerformance(w io.Writer, stats portfolio.Stats) {
	fmt.Fprint(w, stats.String())
	fmt.Fprintf(w, "Signals: %d\n", e.Signals())
	fmt.Fprintf(w, "Orders: %d\n", e.Orders())
	fmt.Fprintf(w, "Fills: %d\n", e.Fills())
}
