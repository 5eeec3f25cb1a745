// Package event defines the closed set of messages that flow through the
// per-symbol queues: Market, Signal, Order, Fill and ClosePendingOrders.
package event

import (
	"errors"
	"fmt"
	"time"
)

// Type tags an event for queue dispatch.
type Type uint8

const (
	TypeMarket Type = iota + 1
	TypeSignal
	TypeOrder
	TypeFill
	TypeClosePendingOrders
)

// Direction of an order or fill. EXIT flattens the open position regardless
// of its side.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
	Exit Direction = "EXIT"
)

func (d Direction) Valid() bool {
	return d == Buy || d == Sell || d == Exit
}

// OrderKind selects how an order executes. STOP and LIMIT orders are held as
// pending brackets by the execution engine until their trigger price trades.
type OrderKind string

const (
	MarketOrder OrderKind = "MARKET"
	StopOrder   OrderKind = "STOP"
	LimitOrder  OrderKind = "LIMIT"
)

func (k OrderKind) Valid() bool {
	return k == MarketOrder || k == StopOrder || k == LimitOrder
}

// SignalKind is the strategy's requested action.
type SignalKind string

const (
	SignalLong  SignalKind = "LONG"
	SignalShort SignalKind = "SHORT"
	SignalExit  SignalKind = "EXIT"
)

func (k SignalKind) Valid() bool {
	return k == SignalLong || k == SignalShort || k == SignalExit
}

// Malformed orders are programming errors, not runtime conditions; the
// execution engine rejects them synchronously with these.
var (
	ErrInvalidDirection = errors.New("event: invalid direction")
	ErrInvalidOrderKind = errors.New("event: invalid order kind")
)

// Event is implemented by exactly the five message structs below.
type Event interface {
	Type() Type
	String() string
}

// Market announces that a new bar for Symbol is available from the data
// supply.
type Market struct {
	Symbol string
}

func (m *Market) Type() Type { return TypeMarket }

func (m *Market) String() string {
	return fmt.Sprintf("Market: Symbol=%s", m.Symbol)
}

// Signal is emitted by a strategy and consumed by the portfolio.
type Signal struct {
	StrategyID string
	Symbol     string
	BarTime    time.Time // bar the signal was computed from
	EmitTime   time.Time
	Kind       SignalKind
	Strength   float64
	StopLoss   *float64
	TakeProfit *float64

	// TradeIDToClose names the trade an EXIT signal closes; empty otherwise.
	TradeIDToClose string
}

func (s *Signal) Type() Type { return TypeSignal }

func (s *Signal) String() string {
	return fmt.Sprintf("Signal: StrategyID=%s, Symbol=%s, BarTime=%s, Kind=%s, Strength=%.2f",
		s.StrategyID, s.Symbol, s.BarTime.Format(time.RFC3339), s.Kind, s.Strength)
}

// Order is emitted by the portfolio (or by a triggered bracket) and consumed
// by the execution engine. Quantity is always positive; Direction carries the
// side.
type Order struct {
	Symbol     string
	Kind       OrderKind
	Quantity   float64
	Direction  Direction
	StopLoss   *float64
	TakeProfit *float64

	// TriggerPrice is set on STOP and LIMIT orders only.
	TriggerPrice *float64

	// RelatedTradeID ties the order to an existing trade: EXIT orders and
	// bracket legs reuse the trade id they protect.
	RelatedTradeID string
}

func (o *Order) Type() Type { return TypeOrder }

func (o *Order) String() string {
	return fmt.Sprintf("Order: Symbol=%s, Kind=%s, Quantity=%.0f, Direction=%s, StopLoss=%.5f, TakeProfit=%.5f",
		o.Symbol, o.Kind, o.Quantity, o.Direction, deref(o.StopLoss), deref(o.TakeProfit))
}

// Fill reports an executed order. FillCost is nil when the portfolio is
// expected to resolve the cost from the latest bid.
type Fill struct {
	Time       time.Time
	Symbol     string
	Venue      string
	Quantity   float64
	Direction  Direction
	FillCost   *float64
	Commission float64
	TradeID    string
}

func (f *Fill) Type() Type { return TypeFill }

func (f *Fill) String() string {
	return fmt.Sprintf("Fill: Time=%s, Symbol=%s, Venue=%s, Quantity=%.0f, Direction=%s, TradeID=%s",
		f.Time.Format(time.RFC3339), f.Symbol, f.Venue, f.Quantity, f.Direction, f.TradeID)
}

// ClosePendingOrders removes every pending bracket order for Symbol. Emitted
// on EXIT signals and when one bracket leg triggers (one-cancels-other).
type ClosePendingOrders struct {
	Symbol string
}

func (c *ClosePendingOrders) Type() Type { return TypeClosePendingOrders }

func (c *ClosePendingOrders) String() string {
	return fmt.Sprintf("ClosePendingOrders: Symbol=%s", c.Symbol)
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Float is a convenience for building optional price fields.
func Float(v float64) *float64 { return &v }
