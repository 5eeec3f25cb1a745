package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores the run outputs in a SQLite database. Per-symbol marks go
// into equity_values keyed by (time, symbol).
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordEquity(r EquityRow) error {
	_, err := j.db.Exec(`
		INSERT INTO equity (time, cash, commission, total, returns, equity, drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Time, r.Cash, r.Commission, r.Total, r.Returns, r.Equity, r.Drawdown,
	)
	if err != nil {
		return err
	}

	for symbol, value := range r.Values {
		if _, err := j.db.Exec(`
			INSERT INTO equity_values (time, symbol, value) VALUES (?, ?, ?)`,
			r.Time, symbol, value,
		); err != nil {
			return err
		}
	}
	return nil
}

func (j *SQLite) RecordTrade(r TradeRow) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (trade_id, opened, closed, commission, profit)
		VALUES (?, ?, ?, ?, ?)`,
		r.TradeID, r.Opened, r.Closed, r.Commission, r.Profit,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
