package oanda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// MarketOrderRequest opens a position. Units are signed: positive for long,
// negative for short. StopLoss/TakeProfit attach a server-side bracket.
type MarketOrderRequest struct {
	Instrument string
	Units      float64
	StopLoss   *float64
	TakeProfit *float64
}

// OrderFill is the broker's confirmation of a filled market order.
type OrderFill struct {
	TradeID    string
	Instrument string
	Units      float64
	Price      float64
}

type priceDetails struct {
	Price string `json:"price"`
}

type apiOrderBody struct {
	Order struct {
		Type             string        `json:"type"`
		Instrument       string        `json:"instrument"`
		Units            string        `json:"units"`
		TimeInForce      string        `json:"timeInForce"`
		PositionFill     string        `json:"positionFill"`
		StopLossOnFill   *priceDetails `json:"stopLossOnFill,omitempty"`
		TakeProfitOnFill *priceDetails `json:"takeProfitOnFill,omitempty"`
	} `json:"order"`
}

type apiOrderResponse struct {
	OrderFillTransaction *struct {
		OrderID string `json:"orderID"`
		Price   string `json:"price"`
		Units   string `json:"units"`
	} `json:"orderFillTransaction"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// CreateMarketOrder submits a market order and returns the resulting fill.
func (c *Client) CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error) {
	if req.Instrument == "" {
		return OrderFill{}, fmt.Errorf("oanda: instrument is required")
	}
	if req.Units == 0 {
		return OrderFill{}, fmt.Errorf("oanda: units must be non-zero")
	}

	var body apiOrderBody
	body.Order.Type = "MARKET"
	body.Order.Instrument = req.Instrument
	body.Order.Units = strconv.FormatFloat(req.Units, 'f', -1, 64)
	body.Order.TimeInForce = "FOK"
	body.Order.PositionFill = "DEFAULT"
	if req.StopLoss != nil {
		body.Order.StopLossOnFill = &priceDetails{Price: formatPrice(*req.StopLoss)}
	}
	if req.TakeProfit != nil {
		body.Order.TakeProfitOnFill = &priceDetails{Price: formatPrice(*req.TakeProfit)}
	}

	apiURL := fmt.Sprintf("%s/v3/accounts/%s/orders", c.baseURL, c.accountID)

	var resp apiOrderResponse
	if err := c.postJSON(ctx, http.MethodPost, apiURL, body, &resp); err != nil {
		return OrderFill{}, err
	}
	if resp.ErrorCode != "" {
		return OrderFill{}, fmt.Errorf("oanda: order rejected: errorCode=%s, errorMessage=%q",
			resp.ErrorCode, resp.ErrorMessage)
	}
	if resp.OrderFillTransaction == nil {
		return OrderFill{}, fmt.Errorf("oanda: order not filled")
	}

	price, _ := strconv.ParseFloat(resp.OrderFillTransaction.Price, 64)
	units, _ := strconv.ParseFloat(resp.OrderFillTransaction.Units, 64)

	return OrderFill{
		TradeID:    resp.OrderFillTransaction.OrderID,
		Instrument: req.Instrument,
		Units:      units,
		Price:      price,
	}, nil
}

type apiCloseResponse struct {
	OrderFillTransaction *struct {
		Price string `json:"price"`
	} `json:"orderFillTransaction"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// CloseTrade fully closes an open trade by broker trade id.
func (c *Client) CloseTrade(ctx context.Context, tradeID string) error {
	if tradeID == "" {
		return fmt.Errorf("oanda: trade id is required")
	}

	apiURL := fmt.Sprintf("%s/v3/accounts/%s/trades/%s/close", c.baseURL, c.accountID, tradeID)

	var resp apiCloseResponse
	if err := c.postJSON(ctx, http.MethodPut, apiURL, map[string]string{"units": "ALL"}, &resp); err != nil {
		return err
	}
	if resp.ErrorCode != "" {
		return fmt.Errorf("oanda: close trade %s: errorCode=%s, errorMessage=%q",
			tradeID, resp.ErrorCode, resp.ErrorMessage)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, method, apiURL string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("oanda: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("oanda: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("oanda: execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("oanda: read response: %w", err)
	}

	// OANDA reports rejections with non-2xx codes and an errorCode body;
	// decode either way so the caller sees the broker's reason.
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("oanda: decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}
