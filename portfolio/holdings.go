package portfolio

import "time"

// Holdings is a cash/value snapshot: cash, commission paid to date, the
// per-symbol mark-to-market values and their total. History rows are
// append-only and never mutated after creation.
type Holdings struct {
	Time       time.Time
	Cash       float64
	Commission float64
	Total      float64
	Values     map[string]float64
}

func newHoldings(symbols []string, cash float64) Holdings {
	values := make(map[string]float64, len(symbols))
	for _, s := range symbols {
		values[s] = 0
	}
	return Holdings{Cash: cash, Total: cash, Values: values}
}

func (h Holdings) clone() Holdings {
	values := make(map[string]float64, len(h.Values))
	for k, v := range h.Values {
		values[k] = v
	}
	h.Values = values
	return h
}

// PositionsSnapshot is one row of the positions history: the open positions
// (copies) at a bar timestamp.
type PositionsSnapshot struct {
	Time      time.Time
	Positions map[string]*Position
}
