package feed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WSTickSource reads bid/ask quotes from a websocket endpoint emitting JSON
// messages of the form
//
//	{"type":"PRICE","instrument":"EUR_USD","time":"2024-01-02T10:04:05Z","bid":1.1000,"ask":1.1002}
//
// HEARTBEAT messages are ignored. Useful for bridging an in-house quote
// distributor into the tick aggregator.
type WSTickSource struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
}

func NewWSTickSource(url string, header http.Header) *WSTickSource {
	return &WSTickSource{
		url:    url,
		header: header,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

type wsTickMsg struct {
	Type       string  `json:"type"`
	Instrument string  `json:"instrument"`
	Time       string  `json:"time"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
}

// Start dials the endpoint and streams ticks until the connection drops or
// ctx is cancelled. A read failure is delivered as the terminal result.
func (s *WSTickSource) Start(ctx context.Context) (<-chan TickResult, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", s.url, err)
	}

	ch := make(chan TickResult, 256)

	// Unblock the reader when the context is cancelled.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	go func() {
		defer close(ch)
		defer conn.Close()

		for {
			var msg wsTickMsg
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() != nil {
					return
				}
				ch <- TickResult{Err: fmt.Errorf("tick stream read: %w", err)}
				return
			}

			if msg.Type == "HEARTBEAT" {
				continue
			}
			if msg.Instrument == "" {
				continue
			}

			t, err := time.Parse(time.RFC3339, msg.Time)
			if err != nil {
				t = time.Now().UTC()
			}

			select {
			case ch <- TickResult{Tick: Tick{
				Symbol: msg.Instrument,
				Time:   t,
				Bid:    msg.Bid,
				Ask:    msg.Ask,
			}}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}
