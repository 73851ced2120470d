package discovery

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Some regulator sites reject default Go user agents, so we send a
// browser-like one.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 regwatch/0.2 (+collector)"

// Client is the shared HTTP client for resolution and fetching. A global
// rate limiter keeps a run polite to remote hosts regardless of how many
// workers are in flight.
type Client struct {
	HTTP    *http.Client
	Limiter *rate.Limiter
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(rate.Limit(8), 8),
	}
}

func (c *Client) get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	return c.HTTP.Do(req)
}
