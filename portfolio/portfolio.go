package portfolio

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/feed"
	"github.com/rustyeddy/fxengine/journal"
	"github.com/rustyeddy/fxengine/market"
)

// PositionSizer decides the quantity of a new entry order. Implementations
// must treat both arguments as read-only; they are handed over under the
// portfolio lock.
type PositionSizer interface {
	Size(symbol string, holdings Holdings, positions map[string]*Position) float64
}

// Portfolio is the single book shared by every symbol lane. All state
// mutations happen under one mutex, so concurrent OnFill/OnSignal/snapshot
// calls from different lanes serialize cleanly.
type Portfolio struct {
	bars    feed.DataHandler
	bus     *bus.Bus
	journal journal.Journal
	sizer   PositionSizer

	symbols        []string
	initialCapital float64
	sharpePeriods  float64

	mu           sync.Mutex
	positions    map[string]*Position
	current      Holdings
	allPositions []PositionsSnapshot
	allHoldings  []Holdings
	trades       map[string]*Trade
}

// Option tweaks portfolio construction.
type Option func(*Portfolio)

// WithSharpePeriods overrides the annualization factor used for the Sharpe
// ratio. The default of 252 suits daily bars.
func WithSharpePeriods(n float64) Option {
	return func(p *Portfolio) { p.sharpePeriods = n }
}

// WithJournal directs Finalize to persist the equity curve and closed
// trades. Without it the results stay in memory only.
func WithJournal(j journal.Journal) Option {
	return func(p *Portfolio) { p.journal = j }
}

func New(bars feed.DataHandler, b *bus.Bus, sizer PositionSizer, startDate time.Time, initialCapital float64, opts ...Option) *Portfolio {
	symbols := bars.SymbolList()

	p := &Portfolio{
		bars:           bars,
		bus:            b,
		sizer:          sizer,
		symbols:        symbols,
		initialCapital: initialCapital,
		sharpePeriods:  252,
		positions:      make(map[string]*Position),
		current:        newHoldings(symbols, initialCapital),
		trades:         make(map[string]*Trade),
	}
	for _, opt := range opts {
		opt(p)
	}

	// Seed the histories so the first bar snapshot has a predecessor to
	// diff against.
	p.allPositions = append(p.allPositions, PositionsSnapshot{
		Time:      startDate,
		Positions: make(map[string]*Position),
	})
	seed := p.current.clone()
	seed.Time = startDate
	p.allHoldings = append(p.allHoldings, seed)

	return p
}

// OnSignal converts an actionable signal into an order. LONG and SHORT are
// acted on only when the symbol is flat; EXIT only when a position is open,
// and it also clears that symbol's pending stop and limit orders.
func (p *Portfolio) OnSignal(s *event.Signal) {
	p.mu.Lock()
	pos := p.positions[s.Symbol]

	var order *event.Order
	switch s.Kind {
	case event.SignalLong:
		if pos == nil {
			if qty := p.sizer.Size(s.Symbol, p.current, p.positions); qty > 0 {
				order = &event.Order{
					Symbol:     s.Symbol,
					Kind:       event.MarketOrder,
					Quantity:   qty,
					Direction:  event.Buy,
					StopLoss:   s.StopLoss,
					TakeProfit: s.TakeProfit,
				}
			}
		}
	case event.SignalShort:
		if pos == nil {
			if qty := p.sizer.Size(s.Symbol, p.current, p.positions); qty > 0 {
				order = &event.Order{
					Symbol:     s.Symbol,
					Kind:       event.MarketOrder,
					Quantity:   qty,
					Direction:  event.Sell,
					StopLoss:   s.StopLoss,
					TakeProfit: s.TakeProfit,
				}
			}
		}
	case event.SignalExit:
		if pos != nil {
			tradeID := s.TradeIDToClose
			if tradeID == "" {
				tradeID = pos.TradeID
			}
			order = &event.Order{
				Symbol:         s.Symbol,
				Kind:           event.MarketOrder,
				Quantity:       math.Abs(pos.Quantity),
				Direction:      event.Exit,
				RelatedTradeID: tradeID,
			}
		}
	}
	p.mu.Unlock()

	if order == nil {
		return
	}
	p.bus.Publish(order.Symbol, order)
	if s.Kind == event.SignalExit {
		p.bus.Publish(s.Symbol, &event.ClosePendingOrders{Symbol: s.Symbol})
	}
}

// OnFill applies an executed fill: holdings move by the fill cost and
// commission, the trade ledger is stamped, and the position is created,
// grown or removed.
func (p *Portfolio) OnFill(f *event.Fill) {
	p.mu.Lock()
	defer p.mu.Unlock()

	coeff := p.fillCoefficient(f)
	cost := p.fillCost(f, coeff)

	p.current.Values[f.Symbol] += cost
	p.current.Commission += f.Commission
	p.current.Cash -= cost + f.Commission
	p.current.Total -= cost + f.Commission

	p.recordFill(f, cost)
	p.applyToPosition(f, coeff)
}

// fillCoefficient maps the fill direction onto a signed quantity factor.
// EXIT takes the side that flattens the current position.
func (p *Portfolio) fillCoefficient(f *event.Fill) float64 {
	switch f.Direction {
	case event.Buy:
		return 1
	case event.Sell:
		return -1
	case event.Exit:
		if pos := p.positions[f.Symbol]; pos != nil {
			if pos.IsLong() {
				return -1
			}
			return 1
		}
	}
	return 0
}

// fillCost values the fill at the latest close bid, the same price the
// holdings are marked at. An explicit FillCost on the event wins.
func (p *Portfolio) fillCost(f *event.Fill, coeff float64) float64 {
	if f.FillCost != nil {
		return *f.FillCost
	}
	bid, err := p.bars.LatestBarValue(f.Symbol, market.FieldCloseBid)
	if err != nil {
		return 0
	}
	return coeff * bid * f.Quantity
}

func (p *Portfolio) recordFill(f *event.Fill, cost float64) {
	t := p.trades[f.TradeID]
	if t == nil {
		t = &Trade{ID: f.TradeID}
		p.trades[f.TradeID] = t
	}
	t.Fills = append(t.Fills, f)

	barTime := f.Time
	if bt, ok := p.bars.LatestBarTime(f.Symbol); ok {
		barTime = bt
	}

	switch {
	case f.Direction == event.Exit:
		if !t.IsClosed() {
			t.Closed = barTime
			t.CloseCost = cost
			t.Profit = t.OpenCost + cost
		}
		t.Commission += f.Commission
	case t.Opened.IsZero():
		t.Opened = barTime
		t.OpenCost = cost
		t.Commission += f.Commission
	default:
		t.Commission += f.Commission
	}
}

func (p *Portfolio) applyToPosition(f *event.Fill, coeff float64) {
	delta := coeff * f.Quantity
	pos := p.positions[f.Symbol]
	if pos == nil {
		if delta == 0 {
			return
		}
		p.positions[f.Symbol] = &Position{
			Symbol:   f.Symbol,
			TradeID:  f.TradeID,
			Quantity: delta,
		}
		return
	}
	pos.Quantity += delta
	if pos.Quantity == 0 {
		delete(p.positions, f.Symbol)
	}
}

// SnapshotTimeIndex appends one row to the positions and holdings
// histories, marking every open position at its symbol's latest close bid.
// The row is stamped with the latest bar time across all symbols.
func (p *Portfolio) SnapshotTimeIndex() {
	p.mu.Lock()
	defer p.mu.Unlock()

	var latest time.Time
	for _, s := range p.symbols {
		if !p.bars.HasBars(s) {
			continue
		}
		if t, ok := p.bars.LatestBarTime(s); ok && t.After(latest) {
			latest = t
		}
	}

	ps := PositionsSnapshot{Time: latest, Positions: make(map[string]*Position, len(p.positions))}
	for s, pos := range p.positions {
		c := *pos
		ps.Positions[s] = &c
	}
	p.allPositions = append(p.allPositions, ps)

	h := Holdings{
		Time:       latest,
		Cash:       p.current.Cash,
		Commission: p.current.Commission,
		Total:      p.current.Cash,
		Values:     make(map[string]float64, len(p.symbols)),
	}
	for _, s := range p.symbols {
		var mark float64
		if pos := p.positions[s]; pos != nil {
			if bid, err := p.bars.LatestBarValue(s, market.FieldCloseBid); err == nil {
				mark = pos.Quantity * bid
			}
		}
		h.Values[s] = mark
		h.Total += mark
	}
	p.allHoldings = append(p.allHoldings, h)
}

// CurrentPosition returns a copy of the open position for symbol, if any.
func (p *Portfolio) CurrentPosition(symbol string) (Position, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.positions[symbol]
	if pos == nil {
		return Position{}, false
	}
	return *pos, true
}

// CurrentHoldings returns a copy of the live holdings.
func (p *Portfolio) CurrentHoldings() Holdings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current.clone()
}

// HoldingsHistory returns the snapshot rows accumulated so far.
func (p *Portfolio) HoldingsHistory() []Holdings {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Holdings, len(p.allHoldings))
	for i, h := range p.allHoldings {
		out[i] = h.clone()
	}
	return out
}

// Trades returns the ledger entries sorted by open time.
func (p *Portfolio) Trades() []*Trade {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sortedTradesLocked()
}

func (p *Portfolio) sortedTradesLocked() []*Trade {
	out := make([]*Trade, 0, len(p.trades))
	for _, t := range p.trades {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Opened.Equal(out[j].Opened) {
			return out[i].ID < out[j].ID
		}
		return out[i].Opened.Before(out[j].Opened)
	})
	return out
}

// Finalize computes the equity curve and summary statistics from the
// holdings history and, when a journal is configured, persists every curve
// row and every closed trade.
func (p *Portfolio) Finalize() (Stats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.allHoldings)
	returns := make([]float64, n)
	equity := make([]float64, n)
	if n > 0 {
		equity[0] = 1
	}
	for i := 1; i < n; i++ {
		if prev := p.allHoldings[i-1].Total; prev != 0 {
			returns[i] = p.allHoldings[i].Total/prev - 1
		}
		equity[i] = equity[i-1] * (1 + returns[i])
	}

	drawdown, maxDD, maxDur := Drawdowns(equity)

	stats := Stats{
		Sharpe:           SharpeRatio(returns[min(1, n):], p.sharpePeriods),
		MaxDrawdown:      maxDD * 100,
		DrawdownDuration: maxDur,
	}
	if n > 0 {
		stats.TotalReturn = (equity[n-1] - 1) * 100
		stats.FinalTotal = p.allHoldings[n-1].Total
	}

	trades := p.sortedTradesLocked()
	for _, t := range trades {
		if t.IsClosed() {
			stats.ClosedTrades = append(stats.ClosedTrades, t)
		}
	}

	if p.journal == nil {
		return stats, nil
	}

	for i, h := range p.allHoldings {
		row := journal.EquityRow{
			Time:       h.Time,
			Values:     h.Values,
			Cash:       h.Cash,
			Commission: h.Commission,
			Total:      h.Total,
			Returns:    returns[i],
			Equity:     equity[i],
			Drawdown:   drawdown[i],
		}
		if err := p.journal.RecordEquity(row); err != nil {
			return stats, fmt.Errorf("record equity row: %w", err)
		}
	}
	for _, t := range stats.ClosedTrades {
		row := journal.TradeRow{
			TradeID:    t.ID,
			Opened:     t.Opened,
			Closed:     t.Closed,
			Commission: t.Commission,
			Profit:     t.Profit,
		}
		if err := p.journal.RecordTrade(row); err != nil {
			return stats, fmt.Errorf("record trade %s: %w", t.ID, err)
		}
	}
	return stats, nil
}
