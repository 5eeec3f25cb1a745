// Package journal persists the run's outputs: the equity curve (one row per
// processed Market event) and the closed-trade list, written once at
// finalize.
package journal

import "time"

// EquityRow is one point on the equity curve.
type EquityRow struct {
	Time       time.Time
	Values     map[string]float64 // per-symbol mark-to-market value
	Cash       float64
	Commission float64
	Total      float64
	Returns    float64
	Equity     float64
	Drawdown   float64
}

// TradeRow is one closed trade.
type TradeRow struct {
	TradeID    string
	Opened     time.Time
	Closed     time.Time
	Commission float64
	Profit     float64
}

// Journal records equity and trade rows to durable storage.
type Journal interface {
	RecordEquity(EquityRow) error
	RecordTrade(TradeRow) error
	Close() error
}
