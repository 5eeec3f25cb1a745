package market

import (
	"fmt"
	"time"
)

// Timeframe is a fixed bar duration, named after the broker granularity
// codes.
type Timeframe string

const (
	S5  Timeframe = "S5"
	M1  Timeframe = "M1"
	M15 Timeframe = "M15"
	H1  Timeframe = "H1"
	H4  Timeframe = "H4"
)

var timeframeSeconds = map[Timeframe]int64{
	S5:  5,
	M1:  60,
	M15: 15 * 60,
	H1:  60 * 60,
	H4:  4 * 60 * 60,
}

// Timeframes lists the supported frames in ascending duration.
func Timeframes() []Timeframe {
	return []Timeframe{S5, M1, M15, H1, H4}
}

func (tf Timeframe) Valid() bool {
	_, ok := timeframeSeconds[tf]
	return ok
}

// Seconds returns the frame length in seconds.
func (tf Timeframe) Seconds() (int64, error) {
	s, ok := timeframeSeconds[tf]
	if !ok {
		return 0, fmt.Errorf("market: unknown timeframe %q", tf)
	}
	return s, nil
}

// Duration returns the frame length. Panics on an unknown frame; validate
// timeframes at configuration time.
func (tf Timeframe) Duration() time.Duration {
	s, err := tf.Seconds()
	if err != nil {
		panic(err)
	}
	return time.Duration(s) * time.Second
}

// Borders returns the inclusive [start, end] boundaries of the frame that
// contains t, at one-second resolution. A tick stamped exactly at end still
// belongs to the frame; the next second starts a new one.
func (tf Timeframe) Borders(t time.Time) (start, end time.Time) {
	secs, err := tf.Seconds()
	if err != nil {
		panic(err)
	}

	unix := t.Unix()
	lower := unix - unix%secs

	start = time.Unix(lower, 0).In(t.Location())
	end = time.Unix(lower+secs-1, 0).In(t.Location())
	return start, end
}
