package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/market"
)

func writeCSV(t *testing.T, dir, symbol, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(content), 0o644))
}

const eurRows = `datetime;open_bid;open_ask;high_bid;high_ask;low_bid;low_ask;close_bid;close_ask;volume
;;;;;;;;;
2024-03-01 10:00:00;1.10;1.1002;1.101;1.1012;1.099;1.0992;1.1005;1.1007;100
2024-03-01 10:01:00;1.1005;1.1007;1.102;1.1022;1.100;1.1002;1.1010;1.1012;120
2024-03-01 10:02:00;1.1010;1.1012;1.103;1.1032;1.100;1.1002;1.1020;1.1022;90
`

// GBP is missing the 10:01 bar; alignment must forward-fill it.
const gbpRows = `datetime;open_bid;open_ask;high_bid;high_ask;low_bid;low_ask;close_bid;close_ask;volume
;;;;;;;;;
2024-03-01 10:00:00;1.26;1.2602;1.261;1.2612;1.259;1.2592;1.2605;1.2607;80
2024-03-01 10:02:00;1.2605;1.2607;1.262;1.2622;1.260;1.2602;1.2610;1.2612;60
`

func TestHistoricLoadsAndAligns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "EUR_USD", eurRows)
	writeCSV(t, dir, "GBP_USD", gbpRows)

	symbols := []string{"EUR_USD", "GBP_USD"}
	b := bus.New(symbols)

	h, err := NewHistoric(b, dir, symbols)
	require.NoError(t, err)

	// Union calendar has three entries; both series are aligned onto it.
	assert.Equal(t, 3, h.BarCount("EUR_USD"))
	assert.Equal(t, 3, h.BarCount("GBP_USD"))

	h.UpdateBars("GBP_USD")
	h.UpdateBars("GBP_USD")

	// The 10:01 GBP bar is the 10:00 bar carried forward with a refreshed
	// timestamp.
	bar, ok := h.LatestBar("GBP_USD")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 1, 0, 0, time.UTC), bar.Time)
	assert.Equal(t, 1.2605, bar.CloseBid)
}

func TestHistoricExhaustion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "EUR_USD", eurRows)

	b := bus.New([]string{"EUR_USD"})
	h, err := NewHistoric(b, dir, []string{"EUR_USD"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, h.PositionProgress("EUR_USD"))

	for i := 0; i < 3; i++ {
		assert.True(t, h.ShouldContinue("EUR_USD"))
		h.UpdateBars("EUR_USD")
	}
	assert.Equal(t, 100.0, h.PositionProgress("EUR_USD"))

	// One Market event per bar.
	q := b.Queue("EUR_USD")
	assert.Equal(t, 3, q.Len())
	e, _ := q.Get()
	assert.Equal(t, event.TypeMarket, e.Type())

	// The next pull marks the symbol done; no error is reported.
	assert.True(t, h.ShouldContinue("EUR_USD"))
	h.UpdateBars("EUR_USD")
	assert.False(t, h.ShouldContinue("EUR_USD"))
	assert.NoError(t, h.Err())
}

func TestHistoricMissingFile(t *testing.T) {
	t.Parallel()

	b := bus.New([]string{"EUR_USD"})
	_, err := NewHistoric(b, t.TempDir(), []string{"EUR_USD"})
	assert.Error(t, err)
}

func TestHistoricLatestBars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeCSV(t, dir, "EUR_USD", eurRows)

	b := bus.New([]string{"EUR_USD"})
	h, err := NewHistoric(b, dir, []string{"EUR_USD"})
	require.NoError(t, err)

	assert.False(t, h.HasBars("EUR_USD"))
	_, lbErr := h.LatestBarValue("EUR_USD", market.FieldCloseBid)
	assert.Error(t, lbErr)

	h.UpdateBars("EUR_USD")
	h.UpdateBars("EUR_USD")
	h.UpdateBars("EUR_USD")

	bars := h.LatestBars("EUR_USD", 2)
	require.Len(t, bars, 2)
	assert.Equal(t, 1.1010, bars[0].CloseBid)
	assert.Equal(t, 1.1020, bars[1].CloseBid)

	v, err := h.LatestBarValue("EUR_USD", market.FieldCloseBid)
	require.NoError(t, err)
	assert.Equal(t, 1.1020, v)
}
