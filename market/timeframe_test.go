package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeframeSeconds(t *testing.T) {
	t.Parallel()

	for tf, want := range map[Timeframe]int64{
		S5:  5,
		M1:  60,
		M15: 900,
		H1:  3600,
		H4:  14400,
	} {
		got, err := tf.Seconds()
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Timeframe("M7").Seconds()
	assert.Error(t, err)
	assert.False(t, Timeframe("M7").Valid())
}

func TestBordersInclusive(t *testing.T) {
	t.Parallel()

	tick := time.Date(2024, 3, 1, 12, 7, 33, 0, time.UTC)

	start, end := M15.Borders(tick)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 14, 59, 0, time.UTC), end)
}

func TestBordersAtExactBoundary(t *testing.T) {
	t.Parallel()

	// A tick on the last second still belongs to the frame; one second
	// later a new frame starts.
	last := time.Date(2024, 3, 1, 12, 0, 59, 0, time.UTC)
	start, end := M1.Borders(last)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), start)
	assert.Equal(t, last, end)

	next := last.Add(time.Second)
	start2, _ := M1.Borders(next)
	assert.Equal(t, next, start2)
}

func TestBarValue(t *testing.T) {
	t.Parallel()

	b := Bar{
		OpenBid: 1.1, OpenAsk: 1.2,
		HighBid: 1.3, HighAsk: 1.4,
		LowBid: 1.5, LowAsk: 1.6,
		CloseBid: 1.7, CloseAsk: 1.8,
		Volume: 42,
	}

	for field, want := range map[BarField]float64{
		FieldOpenBid:  1.1,
		FieldOpenAsk:  1.2,
		FieldHighBid:  1.3,
		FieldHighAsk:  1.4,
		FieldLowBid:   1.5,
		FieldLowAsk:   1.6,
		FieldCloseBid: 1.7,
		FieldCloseAsk: 1.8,
		FieldVolume:   42,
	} {
		got, err := b.Value(field)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := b.Value(BarField("median"))
	assert.Error(t, err)
}

func TestPipValue(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0001, PipValue("EUR_USD"), 1e-12)
	assert.InDelta(t, 0.01, PipValue("USD_JPY"), 1e-12)
	assert.InDelta(t, 0.0001, PipValue("XXX_YYY"), 1e-12)
}
