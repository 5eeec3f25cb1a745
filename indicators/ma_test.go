package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxengine/market"
)

func barsWithCloses(closes ...float64) []market.Bar {
	out := make([]market.Bar, len(closes))
	for i, c := range closes {
		out[i] = market.Bar{CloseBid: c}
	}
	return out
}

func TestSMA(t *testing.T) {
	t.Parallel()

	bars := barsWithCloses(1.10, 1.11, 1.12, 1.13)

	v, err := SMA(bars, market.FieldCloseBid, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.125, v, 1e-12)

	v, err = SMA(bars, market.FieldCloseBid, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1.115, v, 1e-12)
}

func TestSMAErrors(t *testing.T) {
	t.Parallel()

	bars := barsWithCloses(1.10, 1.11)

	_, err := SMA(bars, market.FieldCloseBid, 0)
	assert.Error(t, err)

	_, err = SMA(bars, market.FieldCloseBid, 3)
	assert.Error(t, err)
}

func TestEMAConvergesTowardRecentPrices(t *testing.T) {
	t.Parallel()

	bars := barsWithCloses(1.10, 1.10, 1.10, 1.20, 1.20, 1.20)

	ema, err := EMA(bars, market.FieldCloseBid, 3)
	require.NoError(t, err)
	sma, err := SMA(bars, market.FieldCloseBid, 6)
	require.NoError(t, err)

	assert.Greater(t, ema, sma)
	assert.Less(t, ema, 1.20)
}
