package wholesalemarket

import "net/http"

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another endpoint, e.g. the sandbox.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}
