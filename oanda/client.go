// Package oanda is a minimal OANDA v20 REST client covering what the
// engine needs: historical candles, market orders with attached brackets,
// trade close, and the pricing stream.
package oanda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rustyeddy/fxengine/market"
)

const (
	// PracticeURL is OANDA's practice/demo environment.
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is OANDA's live trading environment.
	LiveURL = "https://api-fxtrade.oanda.com"

	// StreamPracticeURL and StreamLiveURL host the pricing stream.
	StreamPracticeURL = "https://stream-fxpractice.oanda.com"
	StreamLiveURL     = "https://stream-fxtrade.oanda.com"
)

// Client talks to the OANDA REST API.
type Client struct {
	baseURL    string
	streamURL  string
	token      string
	accountID  string
	httpClient *http.Client
}

func NewClient(token, accountID string, practice bool) *Client {
	baseURL, streamURL := LiveURL, StreamLiveURL
	if practice {
		baseURL, streamURL = PracticeURL, StreamPracticeURL
	}

	return &Client{
		baseURL:   baseURL,
		streamURL: streamURL,
		token:     token,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type candleData struct {
	O string `json:"o"`
	H string `json:"h"`
	L string `json:"l"`
	C string `json:"c"`
}

type apiCandle struct {
	Complete bool       `json:"complete"`
	Volume   int        `json:"volume"`
	Time     string     `json:"time"`
	Bid      candleData `json:"bid"`
	Ask      candleData `json:"ask"`
}

type candlesResponse struct {
	Instrument string      `json:"instrument"`
	Candles    []apiCandle `json:"candles"`
}

// GetCandles fetches the most recent count completed bid/ask candles for
// symbol at the given timeframe. It satisfies feed.CandleSource.
func (c *Client) GetCandles(ctx context.Context, symbol string, tf market.Timeframe, count int) ([]market.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("oanda: symbol is required")
	}
	if count <= 0 || count > 5000 {
		return nil, fmt.Errorf("oanda: count must be in 1..5000, got %d", count)
	}

	params := url.Values{}
	params.Set("price", "BA")
	params.Set("granularity", string(tf))
	params.Set("count", strconv.Itoa(count))

	apiURL := fmt.Sprintf("%s/v3/instruments/%s/candles?%s", c.baseURL, symbol, params.Encode())

	var resp candlesResponse
	if err := c.getJSON(ctx, apiURL, &resp); err != nil {
		return nil, err
	}

	bars := make([]market.Bar, 0, len(resp.Candles))
	for _, ac := range resp.Candles {
		if !ac.Complete {
			continue
		}

		bar, err := ac.toBar()
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func (ac apiCandle) toBar() (market.Bar, error) {
	t, err := time.Parse(time.RFC3339, ac.Time)
	if err != nil {
		return market.Bar{}, fmt.Errorf("oanda: parse candle time %q: %w", ac.Time, err)
	}

	var p floatParser
	bar := market.Bar{
		Time:     t.Truncate(time.Second),
		OpenBid:  p.parse(ac.Bid.O),
		OpenAsk:  p.parse(ac.Ask.O),
		HighBid:  p.parse(ac.Bid.H),
		HighAsk:  p.parse(ac.Ask.H),
		LowBid:   p.parse(ac.Bid.L),
		LowAsk:   p.parse(ac.Ask.L),
		CloseBid: p.parse(ac.Bid.C),
		CloseAsk: p.parse(ac.Ask.C),
		Volume:   float64(ac.Volume),
	}
	if p.err != nil {
		return market.Bar{}, fmt.Errorf("oanda: parse candle price: %w", p.err)
	}
	return bar, nil
}

// floatParser parses a batch of decimal strings, remembering the first
// failure.
type floatParser struct {
	err error
}

func (p *floatParser) parse(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (c *Client) getJSON(ctx context.Context, apiURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("oanda: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oanda: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("oanda: API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("oanda: decode response: %w", err)
	}
	return nil
}
