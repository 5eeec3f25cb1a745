package execution

import (
	"fmt"
	"sync"
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/feed"
	"github.com/rustyeddy/fxengine/internal/id"
	"github.com/rustyeddy/fxengine/logger"
	"github.com/rustyeddy/fxengine/market"
)

// Venue stamped on simulated fills.
const Venue = "FOREX"

// Simulated converts market orders into immediate fills with no slippage,
// latency or fill-ratio model; cost and commission are resolved later by
// the portfolio from the latest bid. It keeps the pending stop/limit
// bracket orders in a flat list guarded by one mutex, since every symbol
// lane touches it.
type Simulated struct {
	bars feed.DataHandler
	bus  *bus.Bus
	log  logger.Logger

	mu      sync.Mutex
	pending []*event.Order
}

func NewSimulated(bars feed.DataHandler, b *bus.Bus, log logger.Logger) *Simulated {
	if log == nil {
		log = logger.Nop{}
	}
	return &Simulated{bars: bars, bus: b, log: log}
}

func (s *Simulated) Execute(o *event.Order) error {
	if !o.Direction.Valid() {
		return fmt.Errorf("%w: %q", event.ErrInvalidDirection, o.Direction)
	}

	switch o.Kind {
	case event.MarketOrder:
		return s.executeMarket(o)
	case event.StopOrder, event.LimitOrder:
		return s.registerPending(o)
	default:
		return fmt.Errorf("%w: %q", event.ErrInvalidOrderKind, o.Kind)
	}
}

func (s *Simulated) executeMarket(o *event.Order) error {
	tradeID := o.RelatedTradeID
	if tradeID == "" {
		tradeID = id.New()
	}

	fill := &event.Fill{
		Time:      time.Now().UTC(),
		Symbol:    o.Symbol,
		Venue:     Venue,
		Quantity:  o.Quantity,
		Direction: o.Direction,
		TradeID:   tradeID,
	}
	s.bus.Publish(o.Symbol, fill)

	// An opening order with a stop-loss or take-profit grows a bracket:
	// a reversed-direction STOP and/or LIMIT tagged with the trade id.
	if o.Direction != event.Exit {
		if o.StopLoss != nil {
			s.addPending(&event.Order{
				Symbol:         o.Symbol,
				Kind:           event.StopOrder,
				Quantity:       o.Quantity,
				Direction:      reverse(o.Direction),
				TriggerPrice:   o.StopLoss,
				RelatedTradeID: tradeID,
			})
		}
		if o.TakeProfit != nil {
			s.addPending(&event.Order{
				Symbol:         o.Symbol,
				Kind:           event.LimitOrder,
				Quantity:       o.Quantity,
				Direction:      reverse(o.Direction),
				TriggerPrice:   o.TakeProfit,
				RelatedTradeID: tradeID,
			})
		}
	}
	return nil
}

func (s *Simulated) registerPending(o *event.Order) error {
	if o.TriggerPrice == nil {
		return fmt.Errorf("execution: %s order for %s has no trigger price", o.Kind, o.Symbol)
	}
	if o.Direction == event.Exit {
		return fmt.Errorf("%w: pending orders carry BUY or SELL", event.ErrInvalidDirection)
	}
	s.addPending(o)
	return nil
}

func (s *Simulated) addPending(o *event.Order) {
	s.mu.Lock()
	s.pending = append(s.pending, o)
	s.mu.Unlock()
}

// UpdateStopAndLimitOrders checks every pending order for the event's
// symbol against the latest close bid/ask. On the first trigger it converts
// that order into a market order (forced to EXIT when trade-tagged), emits
// it, and emits ClosePendingOrders so the sibling bracket leg dies before
// the next Market event; the legs are one-cancels-other.
func (s *Simulated) UpdateStopAndLimitOrders(m *event.Market) {
	bid, err := s.bars.LatestBarValue(m.Symbol, market.FieldCloseBid)
	if err != nil {
		return
	}
	ask, err := s.bars.LatestBarValue(m.Symbol, market.FieldCloseAsk)
	if err != nil {
		return
	}

	triggered := s.takeTriggered(m.Symbol, bid, ask)
	if triggered == nil {
		return
	}

	direction := triggered.Direction
	if triggered.RelatedTradeID != "" {
		direction = event.Exit
	}

	converted := &event.Order{
		Symbol:         triggered.Symbol,
		Kind:           event.MarketOrder,
		Quantity:       triggered.Quantity,
		Direction:      direction,
		RelatedTradeID: triggered.RelatedTradeID,
	}

	s.log.Write(fmt.Sprintf("Triggered %s order for %s at %.5f (bid=%.5f, ask=%.5f)",
		triggered.Kind, triggered.Symbol, *triggered.TriggerPrice, bid, ask))

	s.bus.Publish(m.Symbol, converted)
	s.bus.Publish(m.Symbol, &event.ClosePendingOrders{Symbol: m.Symbol})
}

// takeTriggered removes and returns the first pending order for symbol
// whose trigger condition holds, or nil.
func (s *Simulated) takeTriggered(symbol string, bid, ask float64) *event.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.pending {
		if o.Symbol != symbol {
			continue
		}
		if !triggers(o, bid, ask) {
			continue
		}

		s.pending = append(s.pending[:i], s.pending[i+1:]...)
		return o
	}
	return nil
}

// triggers applies the stop/limit trigger rules: a STOP fires when the
// market moves through the trigger against the position, a LIMIT when it
// moves through in its favor.
func triggers(o *event.Order, bid, ask float64) bool {
	trigger := *o.TriggerPrice

	switch o.Kind {
	case event.StopOrder:
		return (o.Direction == event.Buy && ask >= trigger) ||
			(o.Direction == event.Sell && bid <= trigger)
	case event.LimitOrder:
		return (o.Direction == event.Buy && ask <= trigger) ||
			(o.Direction == event.Sell && bid >= trigger)
	}
	return false
}

func (s *Simulated) ClearPendingOrders(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pending[:0]
	for _, o := range s.pending {
		if o.Symbol != symbol {
			kept = append(kept, o)
		}
	}
	s.pending = kept
}

// PendingOrders returns a snapshot of the pending orders for symbol,
// oldest first.
func (s *Simulated) PendingOrders(symbol string) []*event.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*event.Order
	for _, o := range s.pending {
		if o.Symbol == symbol {
			out = append(out, o)
		}
	}
	return out
}

func reverse(d event.Direction) event.Direction {
	if d == event.Buy {
		return event.Sell
	}
	return event.Buy
}
