package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/fxengine/logger"
	"github.com/rustyeddy/fxengine/market"
)

// PollerConfig tunes the polling cadence and the transient-failure policy.
type PollerConfig struct {
	Timeframe   market.Timeframe
	Interval    time.Duration // wait between successful polls
	RetryDelay  time.Duration // fixed wait after a failed fetch
	MaxAttempts int           // consecutive failures before giving up on a symbol
}

// Poller is a BarsProvider that repeatedly fetches the latest completed
// candle per symbol. Transient fetch errors are retried with a bounded
// counter; exhausting it ends only that symbol's stream.
type Poller struct {
	source CandleSource
	cfg    PollerConfig
	log    logger.Logger
	out    map[string]chan StreamResult
}

func NewPoller(source CandleSource, symbols []string, cfg PollerConfig, log logger.Logger) *Poller {
	if log == nil {
		log = logger.Nop{}
	}

	out := make(map[string]chan StreamResult, len(symbols))
	for _, s := range symbols {
		out[s] = make(chan StreamResult, 16)
	}
	return &Poller{source: source, cfg: cfg, log: log, out: out}
}

func (p *Poller) Bars(symbol string) <-chan StreamResult {
	return p.out[symbol]
}

// Start launches one polling goroutine per symbol.
func (p *Poller) Start(ctx context.Context) {
	for symbol := range p.out {
		go p.pollSymbol(ctx, symbol)
	}
}

func (p *Poller) pollSymbol(ctx context.Context, symbol string) {
	out := p.out[symbol]
	defer close(out)

	failures := 0
	var lastBarTime time.Time

	for {
		if ctx.Err() != nil {
			return
		}

		bars, err := p.source.GetCandles(ctx, symbol, p.cfg.Timeframe, 1)
		if err != nil {
			failures++
			p.log.Write(fmt.Sprintf("poll %s: fetch failed (%d/%d): %v",
				symbol, failures, p.cfg.MaxAttempts, err))

			if failures >= p.cfg.MaxAttempts {
				p.send(ctx, out, StreamResult{
					Err: fmt.Errorf("poll %s: giving up after %d failed fetches: %w",
						symbol, failures, err),
				})
				return
			}

			if !sleepCtx(ctx, p.cfg.RetryDelay) {
				return
			}
			continue
		}
		failures = 0

		for _, b := range bars {
			if !b.Time.After(lastBarTime) {
				continue
			}
			lastBarTime = b.Time
			if !p.send(ctx, out, StreamResult{Bar: b}) {
				return
			}
		}

		if !sleepCtx(ctx, p.cfg.Interval) {
			return
		}
	}
}

func (p *Poller) send(ctx context.Context, out chan StreamResult, res StreamResult) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
