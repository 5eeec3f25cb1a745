// Package portfolio tracks positions, cash/holdings and the trade ledger,
// turns actionable signals into orders, and builds the equity curve at the
// end of a run.
package portfolio

// Position is the open exposure in one symbol. Quantity is signed: positive
// long, negative short. A symbol has at most one Position; the record is
// removed the instant the quantity returns to zero.
type Position struct {
	Symbol   string
	TradeID  string
	Quantity float64
}

func (p *Position) IsLong() bool  { return p.Quantity > 0 }
func (p *Position) IsShort() bool { return p.Quantity < 0 }
