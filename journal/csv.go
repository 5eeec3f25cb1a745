package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes the equity curve and trades files. The symbol column order is
// fixed at construction so every equity row lines up with the header.
type CSV struct {
	symbols []string

	equity *csv.Writer
	trades *csv.Writer
	ef, tf *os.File
}

func NewCSV(equityPath, tradesPath string, symbols []string) (*CSV, error) {
	ef, err := os.Create(equityPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		ef.Close()
		return nil, err
	}

	ew := csv.NewWriter(ef)
	tw := csv.NewWriter(tf)

	header := []string{"datetime"}
	header = append(header, symbols...)
	header = append(header, "cash", "commission", "total", "returns", "equity_curve", "drawdown")
	if err := ew.Write(header); err != nil {
		ef.Close()
		tf.Close()
		return nil, err
	}
	if err := tw.Write([]string{"trade_id", "opened", "closed", "commission", "profit"}); err != nil {
		ef.Close()
		tf.Close()
		return nil, err
	}

	ew.Flush()
	tw.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSV{symbols: symbols, equity: ew, trades: tw, ef: ef, tf: tf}, nil
}

func (j *CSV) RecordEquity(r EquityRow) error {
	row := []string{r.Time.Format(time.RFC3339)}
	for _, s := range j.symbols {
		row = append(row, f(r.Values[s]))
	}
	row = append(row, f(r.Cash), f(r.Commission), f(r.Total), f(r.Returns), f(r.Equity), f(r.Drawdown))

	if err := j.equity.Write(row); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) RecordTrade(r TradeRow) error {
	err := j.trades.Write([]string{
		r.TradeID,
		r.Opened.Format(time.RFC3339),
		r.Closed.Format(time.RFC3339),
		f(r.Commission),
		f(r.Profit),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) Close() error {
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	if err := j.ef.Close(); err != nil {
		return err
	}
	return j.tf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
