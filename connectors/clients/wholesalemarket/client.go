// Package wholesalemarket reads day-ahead power exchange prices from the RTE
// wholesale market API.
package wholesalemarket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kilianp07/v2g-planner/auth"
	"github.com/kilianp07/v2g-planner/connectors"
)

const defaultBaseURL = "https://digital.iservices.rte-france.com/open_api/wholesale_market/v2/france_power_exchanges"

type Client struct {
	baseURL string
	auth    *auth.ClientCred
	http    *http.Client
}

// New creates a client authenticating with authClient.
func New(authClient *auth.ClientCred, opts ...Option) *Client {
	c := &Client{baseURL: defaultBaseURL, auth: authClient, http: &http.Client{Timeout: 30 * time.Second}}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch retrieves the wholesale market data for [start, end).
func (c *Client) Fetch(ctx context.Context, start, end time.Time) (*Response, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := c.auth.SetAuthHeader(req); err != nil {
		return nil, fmt.Errorf("failed to set auth header: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.auth.Invalidate()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	var marketResponse Response
	if err := json.NewDecoder(resp.Body).Decode(&marketResponse); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &marketResponse, nil
}

// Prices implements connectors.PriceSource.
func (c *Client) Prices(ctx context.Context, start, end time.Time) ([]connectors.HourlyPrice, error) {
	resp, err := c.Fetch(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return resp.HourlyPrices()
}
