// Package safezone is the HTTP client for the vendor safezone monitoring API:
// a zones listing endpoint and a per-zone audit records endpoint, both XML.
package safezone

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/crimson-sun/szaudit/internal/model"
	"github.com/crimson-sun/szaudit/internal/xmltree"
)

// Client talks to one customer's safezone API deployment.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// APIError represents a failed API call: a non-2xx HTTP response, or a
// transport failure (StatusCode 0). Either way the current run is abandoned
// and the window is retried on the next cycle.
type APIError struct {
	StatusCode int
	Body       string // first 512 bytes of the response body
	Err        error  // transport error, if any
	retryAfter string // internal: Retry-After header value for 429s
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("safezone api: %v", e.Err)
	}
	return fmt.Sprintf("safezone api: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Unwrap() error { return e.Err }

// ParseError represents a response body that could not be parsed as XML, or
// XML whose structure did not match the endpoint's contract.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("safezone parse %s: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Option configures Client behavior.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout. Default: 30s.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithBaseURL overrides the derived https://{customer}.criticalarc.net base
// URL. Used by tests and on-prem deployments.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// New creates a Client for the given account. Basic auth is sent only when
// the account carries a username.
func New(account model.Account, opts ...Option) *Client {
	c := &Client{
		baseURL:  fmt.Sprintf("https://%s.criticalarc.net", account.CustomerName),
		username: account.Username,
		password: account.Password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const maxRetries = 3

// getXML sends a GET request and parses the XML response body. Returns
// *APIError for non-2xx responses and transport failures, *ParseError for
// malformed bodies. Retries on 429 (honoring Retry-After) and 5xx with
// exponential backoff: 1s, 2s, 4s. Max 3 retries.
func (c *Client) getXML(ctx context.Context, path string, query url.Values) (*xmltree.Element, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var lastErr *APIError
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := backoffDelay(attempt, lastErr)
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, err
		}
		if c.username != "" {
			req.SetBasicAuth(c.username, c.password)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &APIError{Err: err}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &APIError{Err: err}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			root, err := xmltree.Parse(bytes.NewReader(body))
			if err != nil {
				return nil, &ParseError{Endpoint: path, Err: err}
			}
			return root, nil
		}

		bodyStr := string(body)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}

		apiErr := &APIError{StatusCode: resp.StatusCode, Body: bodyStr}

		if resp.StatusCode == 429 {
			apiErr.retryAfter = resp.Header.Get("Retry-After")
			lastErr = apiErr
			continue
		}
		if resp.StatusCode >= 500 {
			lastErr = apiErr
			continue
		}

		return nil, apiErr
	}

	return nil, lastErr
}

// backoffDelay returns the wait duration before a retry attempt.
func backoffDelay(attempt int, lastErr *APIError) time.Duration {
	if lastErr != nil && lastErr.StatusCode == 429 && lastErr.retryAfter != "" {
		if secs, err := strconv.Atoi(lastErr.retryAfter); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	// Exponential backoff: 1s, 2s, 4s
	return time.Duration(1<<(attempt-1)) * time.Second
}
