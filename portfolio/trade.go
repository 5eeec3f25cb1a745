package portfolio

import (
	"time"

	"github.com/rustyeddy/fxengine/event"
)

// Trade is one ledger entry: the open→close lifecycle of a position,
// keyed by trade id. Created lazily on the first fill referencing the id;
// once Closed is stamped only the commission still accumulates.
type Trade struct {
	ID         string
	Fills      []*event.Fill
	Opened     time.Time
	Closed     time.Time
	OpenCost   float64
	CloseCost  float64
	Commission float64

	// Profit is openCost + closeCost, set only when the closing fill
	// arrives.
	Profit float64
}

// IsClosed reports whether the closing EXIT fill has been applied.
func (t *Trade) IsClosed() bool { return !t.Closed.IsZero() }
