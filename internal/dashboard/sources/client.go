package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// Client is the shared outbound HTTP client for all upstream sources. Every
// request carries the contact user agent some providers (NWS in particular)
// require. There is no retry loop: a failed call yields the source's default
// until the next cache-expiry cycle.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient wraps an http.Client whose Timeout caps every upstream call.
func NewClient(client *http.Client, userAgent string) *Client {
	return &Client{
		client:    client,
		userAgent: userAgent,
	}
}

// newBreaker builds the per-source circuit breaker with shared settings.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// do executes one GET through the circuit breaker, mapping rate limiting and
// non-2xx statuses to errors so the breaker sees them as failures.
func (c *Client) do(ctx context.Context, cb *gobreaker.CircuitBreaker, url, accept string) (*http.Response, error) {
	if c.client == nil {
		return nil, errNoHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := c.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, errServerError
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

// getJSON fetches url and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, cb *gobreaker.CircuitBreaker, url string, out interface{}) error {
	resp, err := c.do(ctx, cb, url, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// getBody fetches url and returns the raw response body.
func (c *Client) getBody(ctx context.Context, cb *gobreaker.CircuitBreaker, url string) ([]byte, error) {
	resp, err := c.do(ctx, cb, url, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}
