package oanda

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/fxengine/feed"
)

type pricingStreamMsg struct {
	Type       string `json:"type"`
	Time       string `json:"time"`
	Instrument string `json:"instrument"`

	Bids []struct {
		Price string `json:"price"`
	} `json:"bids"`

	Asks []struct {
		Price string `json:"price"`
	} `json:"asks"`
}

// PricingStream is a feed.TickSource over OANDA's chunked HTTP pricing
// stream. One stream can carry several instruments.
type PricingStream struct {
	client      *Client
	instruments []string
}

func (c *Client) NewPricingStream(instruments []string) *PricingStream {
	return &PricingStream{client: c, instruments: instruments}
}

// Start connects to the pricing stream and yields one tick per PRICE
// message. Heartbeats are skipped; a read or parse failure is delivered as
// the terminal result.
func (s *PricingStream) Start(ctx context.Context) (<-chan feed.TickResult, error) {
	if len(s.instruments) == 0 {
		return nil, fmt.Errorf("oanda: pricing stream needs at least one instrument")
	}

	apiURL := fmt.Sprintf("%s/v3/accounts/%s/pricing/stream?instruments=%s",
		s.client.streamURL, s.client.accountID, strings.Join(s.instruments, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("oanda: create stream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.client.token)

	// The stream runs for the life of the context; no client timeout.
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("oanda: connect pricing stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("oanda: pricing stream status %d", resp.StatusCode)
	}

	ch := make(chan feed.TickResult, 256)

	go func() {
		defer close(ch)
		defer resp.Body.Close()

		sc := bufio.NewScanner(resp.Body)
		// Stream messages can be long; bump the max token size.
		sc.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

		for sc.Scan() {
			if ctx.Err() != nil {
				return
			}

			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}

			var msg pricingStreamMsg
			if err := json.Unmarshal([]byte(line), &msg); err != nil {
				ch <- feed.TickResult{Err: fmt.Errorf("oanda: bad stream json: %w", err)}
				return
			}

			if !strings.EqualFold(msg.Type, "PRICE") {
				continue
			}
			if msg.Instrument == "" || len(msg.Bids) == 0 || len(msg.Asks) == 0 {
				continue
			}

			bid, err1 := strconv.ParseFloat(msg.Bids[0].Price, 64)
			ask, err2 := strconv.ParseFloat(msg.Asks[0].Price, 64)
			if err1 != nil || err2 != nil {
				continue
			}

			t, err := time.Parse(time.RFC3339Nano, msg.Time)
			if err != nil {
				t = time.Now().UTC()
			}

			select {
			case ch <- feed.TickResult{Tick: feed.Tick{
				Symbol: msg.Instrument,
				Time:   t.Truncate(time.Second),
				Bid:    bid,
				Ask:    ask,
			}}:
			case <-ctx.Done():
				return
			}
		}

		if err := sc.Err(); err != nil && ctx.Err() == nil {
			ch <- feed.TickResult{Err: fmt.Errorf("oanda: pricing stream: %w", err)}
		}
	}()

	return ch, nil
}
