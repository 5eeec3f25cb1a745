// Package strategy holds the signal-generation contract and the strategies
// that ship with the engine.
package strategy

import "github.com/rustyeddy/fxengine/event"

// Strategy inspects the bar history on each Market event and may emit
// Signal events for the symbol. Implementations are called from the
// symbol's own lane, one Market event at a time.
type Strategy interface {
	CalculateSignals(m *event.Market)
}

// Noop never signals. Useful for dry runs and wiring tests.
type Noop struct{}

func (Noop) CalculateSignals(*event.Market) {}
