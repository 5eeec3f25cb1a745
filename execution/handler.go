// Package execution turns Order events into Fill events. The simulated
// handler also owns the pending stop/limit bracket orders and evaluates
// them on every Market event.
package execution

import (
	"github.com/rustyeddy/fxengine/event"
)

// Handler is the execution-engine contract.
type Handler interface {
	// Execute processes one order. A malformed order (unknown kind or
	// direction) is rejected synchronously with a typed error.
	Execute(o *event.Order) error

	// UpdateStopAndLimitOrders evaluates pending brackets for the event's
	// symbol against the latest bid/ask.
	UpdateStopAndLimitOrders(m *event.Market)

	// ClearPendingOrders removes every pending order for symbol.
	ClearPendingOrders(symbol string)
}
