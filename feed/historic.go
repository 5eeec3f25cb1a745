package feed

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rustyeddy/fxengine/bus"
	"github.com/rustyeddy/fxengine/event"
	"github.com/rustyeddy/fxengine/market"
)

// Historic replays per-symbol CSV series, forward-filled onto the union
// calendar of all symbols. Iteration is deterministic and side-effect-free
// beyond the cursors.
type Historic struct {
	store

	bus     *bus.Bus
	symbols []string

	cmu    sync.Mutex
	series map[string][]market.Bar
	cursor map[string]int
	done   map[string]bool
}

// NewHistoric loads <dir>/<SYMBOL>.csv for every symbol. Rows are
// semicolon-separated: datetime;open_bid;open_ask;high_bid;high_ask;
// low_bid;low_ask;close_bid;close_ask;volume. Header rows are skipped.
func NewHistoric(b *bus.Bus, dir string, symbols []string) (*Historic, error) {
	raw := make(map[string][]market.Bar, len(symbols))
	for _, s := range symbols {
		bars, err := readBarsCSV(filepath.Join(dir, s+".csv"))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", s, err)
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("load %s: no bars", s)
		}
		raw[s] = bars
	}

	h := &Historic{
		store:   newStore(symbols),
		bus:     b,
		symbols: symbols,
		series:  alignToCalendar(raw),
		cursor:  make(map[string]int, len(symbols)),
		done:    make(map[string]bool, len(symbols)),
	}
	return h, nil
}

func (h *Historic) SymbolList() []string { return h.symbols }

func (h *Historic) ShouldContinue(symbol string) bool {
	h.cmu.Lock()
	defer h.cmu.Unlock()
	return !h.done[symbol]
}

// UpdateBars advances the symbol's cursor by one bar and publishes a Market
// event; when the series is exhausted it marks the symbol done instead.
func (h *Historic) UpdateBars(symbol string) {
	h.cmu.Lock()

	series, ok := h.series[symbol]
	if !ok || h.cursor[symbol] >= len(series) {
		h.done[symbol] = true
		h.cmu.Unlock()
		return
	}

	bar := series[h.cursor[symbol]]
	h.cursor[symbol]++
	h.cmu.Unlock()

	h.append(symbol, bar)
	h.bus.Publish(symbol, &event.Market{Symbol: symbol})
}

func (h *Historic) PositionProgress(symbol string) float64 {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	total := len(h.series[symbol])
	if total == 0 {
		return 0
	}
	return 100 * float64(h.cursor[symbol]) / float64(total)
}

// Err is always nil: running out of historic data is completion, not
// failure.
func (h *Historic) Err() error { return nil }

func (h *Historic) SymbolErr(symbol string) error { return nil }

// BarCount returns the aligned series length for symbol.
func (h *Historic) BarCount(symbol string) int {
	return len(h.series[symbol])
}

var csvTimeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006.01.02 15:04:05",
	"02.01.2006 15:04:05",
}

func parseBarTime(s string) (time.Time, error) {
	for _, layout := range csvTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", s)
}

func readBarsCSV(path string) ([]market.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(records))
	for _, rec := range records {
		if len(rec) < 10 {
			continue
		}

		t, err := parseBarTime(rec[0])
		if err != nil {
			// header row
			continue
		}

		vals := make([]float64, 9)
		bad := false
		for i := 0; i < 9; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				bad = true
				break
			}
			vals[i] = v
		}
		if bad {
			continue
		}

		bars = append(bars, market.Bar{
			Time:     t,
			OpenBid:  vals[0],
			OpenAsk:  vals[1],
			HighBid:  vals[2],
			HighAsk:  vals[3],
			LowBid:   vals[4],
			LowAsk:   vals[5],
			CloseBid: vals[6],
			CloseAsk: vals[7],
			Volume:   vals[8],
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// alignToCalendar reindexes every symbol's series onto the union calendar,
// carrying the last observed bar forward into gaps. Calendar entries before
// a symbol's first observation are dropped for that symbol.
func alignToCalendar(raw map[string][]market.Bar) map[string][]market.Bar {
	seen := make(map[int64]time.Time)
	for _, bars := range raw {
		for _, b := range bars {
			seen[b.Time.Unix()] = b.Time
		}
	}

	calendar := make([]time.Time, 0, len(seen))
	for _, t := range seen {
		calendar = append(calendar, t)
	}
	sort.Slice(calendar, func(i, j int) bool { return calendar[i].Before(calendar[j]) })

	aligned := make(map[string][]market.Bar, len(raw))
	for symbol, bars := range raw {
		out := make([]market.Bar, 0, len(calendar))

		var last market.Bar
		started := false
		i := 0

		for _, t := range calendar {
			for i < len(bars) && !bars[i].Time.After(t) {
				last = bars[i]
				started = true
				i++
			}
			if !started {
				continue
			}

			b := last
			b.Time = t
			out = append(out, b)
		}
		aligned[symbol] = out
	}
	return aligned
}
