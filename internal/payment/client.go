// Package payment wraps the hosted-checkout payment processor: session
// creation over its REST API and webhook signature verification.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CheckoutSession is the processor's hosted checkout page handle.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CheckoutParams describes one purchase to collect payment for. Metadata
// round-trips through the processor and comes back on the completion webhook.
type CheckoutParams struct {
	BookID     string
	UserID     string
	BookTitle  string
	Amount     float64
	Currency   string
	SuccessURL string
	CancelURL  string
}

// Client calls the payment processor's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client for the given API base URL and secret key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// CreateCheckoutSession creates a hosted checkout session and returns its
// redirect URL. Amounts are submitted in the currency's minor unit.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	currency := p.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(minorUnits(p.Amount), 10))
	form.Set("line_items[0][price_data][product_data][name]", p.BookTitle)
	form.Set("metadata[bookId]", p.BookID)
	form.Set("metadata[userId]", p.UserID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment processor returned %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// minorUnits converts a decimal price to the currency's minor unit. Rounding
// matters: 19.99*100 is 1998.999... as float64 and truncation would undercharge.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
