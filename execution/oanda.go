package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/logger"
	"github.com/rustyeddy/fxengine/oanda"
)

// Broker is the live order surface the Oanda handler needs; satisfied by
// *oanda.Client.
type Broker interface {
	CreateMarketOrder(ctx context.Context, req oanda.MarketOrderRequest) (oanda.OrderFill, error)
	CloseTrade(ctx context.Context, tradeID string) error
}

// Oanda submits orders to the live broker. Brackets ride on the order
// itself and are held server-side, so the pending-order operations are
// no-ops here.
type Oanda struct {
	broker  Broker
	bus     *bus.Bus
	log     logger.Logger
	timeout time.Duration
}

func NewOanda(broker Broker, b *bus.Bus, log logger.Logger) *Oanda {
	if log == nil {
		log = logger.Nop{}
	}
	return &Oanda{broker: broker, bus: b, log: log, timeout: 30 * time.Second}
}

func (h *Oanda) Execute(o *event.Order) error {
	if !o.Direction.Valid() {
		return fmt.Errorf("%w: %q", event.ErrInvalidDirection, o.Direction)
	}
	if o.Kind != event.MarketOrder {
		return fmt.Errorf("%w: live execution only submits MARKET orders, got %q",
			event.ErrInvalidOrderKind, o.Kind)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if o.Direction == event.Exit {
		if err := h.broker.CloseTrade(ctx, o.RelatedTradeID); err != nil {
			h.log.Write(fmt.Sprintf("Error closing trade %s: %v", o.RelatedTradeID, err))
			return nil
		}

		h.bus.Publish(o.Symbol, &event.Fill{
			Time:      time.Now().UTC(),
			Symbol:    o.Symbol,
			Venue:     Venue,
			Quantity:  o.Quantity,
			Direction: o.Direction,
			TradeID:   o.RelatedTradeID,
		})
		return nil
	}

	units := o.Quantity
	if o.Direction == event.Sell {
		units = -units
	}

	fill, err := h.broker.CreateMarketOrder(ctx, oanda.MarketOrderRequest{
		Instrument: o.Symbol,
		Units:      units,
		StopLoss:   o.StopLoss,
		TakeProfit: o.TakeProfit,
	})
	if err != nil {
		// Broker rejections are runtime conditions: log and carry on
		// without a fill.
		h.log.Write(fmt.Sprintf("Error executing order for %s: %v", o.Symbol, err))
		return nil
	}

	h.log.Write(fmt.Sprintf("Executed %s %s order, tradeID=%s, stopLoss=%.5f, takeProfit=%.5f",
		o.Direction, o.Symbol, fill.TradeID, optional(o.StopLoss), optional(o.TakeProfit)))

	h.bus.Publish(o.Symbol, &event.Fill{
		Time:      time.Now().UTC(),
		Symbol:    o.Symbol,
		Venue:     Venue,
		Quantity:  o.Quantity,
		Direction: o.Direction,
		TradeID:   fill.TradeID,
	})
	return nil
}

// UpdateStopAndLimitOrders is a no-op: the broker evaluates brackets
// server-side.
func (h *Oanda) UpdateStopAndLimitOrders(m *event.Market) {}

// ClearPendingOrders is a no-op: closing the trade cancels its bracket at
// the broker.
func (h *Oanda) ClearPendingOrders(symbol string) {}

func optional(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
