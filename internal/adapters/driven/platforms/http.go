package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-bridge/internal/core/domain"
)

const (
	// maxTokenBody caps how much of a token response is read.
	maxTokenBody = 1 << 20

	// maxPageBody caps how much of a listing page is read.
	maxPageBody = 16 << 20

	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultBackoff    = time.Second

	// maxRetryAfter bounds how long a Retry-After header may stall a listing.
	maxRetryAfter = time.Minute
)

// BasicAuth holds HTTP Basic client credentials for token endpoints that
// authenticate the client that way.
type BasicAuth struct {
	Username string
	Password string
}

// Client performs the HTTP calls shared by all adapters.
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
}

// NewClient wraps httpClient. A nil client gets a 30 second timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
}

// WithRetry sets how often listing requests are retried on 429 and 5xx
// responses and the base backoff between attempts.
func (c *Client) WithRetry(maxRetries int, backoff time.Duration) *Client {
	c.maxRetries = maxRetries
	c.backoff = backoff
	return c
}

// ExchangeForm posts an urlencoded token request and returns the raw body.
func (c *Client) ExchangeForm(ctx context.Context, tokenURL string, form url.Values, auth *BasicAuth) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.exchange(req, auth)
}

// ExchangeJSON posts a JSON token request and returns the raw body.
func (c *Client) ExchangeJSON(ctx context.Context, tokenURL string, payload any, auth *BasicAuth) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.exchange(req, auth)
}

func (c *Client) exchange(req *http.Request, auth *BasicAuth) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if auth != nil {
		req.SetBasicAuth(auth.Username, auth.Password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.NewUpstreamError(domain.KindTokenExchangeFailed,
			"token endpoint returned "+resp.Status, resp.StatusCode, body)
	}

	return body, nil
}

// Request describes an authenticated API call.
type Request struct {
	Method  string
	URL     string
	Token   string
	Headers map[string]string
	// Body is JSON-encoded when non-nil.
	Body any
}

// FetchJSON performs an authenticated API call and decodes the 2xx JSON
// response into out. Rate limits and server errors are retried; any other
// non-2xx status becomes an error of kind KindUpstreamFetchFailed.
func (c *Client) FetchJSON(ctx context.Context, r Request, out any) error {
	var payload []byte
	if r.Body != nil {
		var err error
		if payload, err = json.Marshal(r.Body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	for attempt := 0; ; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+r.Token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range r.Headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBody))
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if err := json.Unmarshal(data, out); err != nil {
				return domain.NewUpstreamError(domain.KindUpstreamFetchFailed, "decode response", resp.StatusCode, data)
			}
			return nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable || attempt >= c.maxRetries {
			return domain.NewUpstreamError(domain.KindUpstreamFetchFailed,
				method+" "+req.URL.Path+" returned "+resp.Status, resp.StatusCode, data)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retryDelay(resp, attempt)):
		}
	}
}

// retryDelay honours Retry-After when present, else backs off linearly.
func (c *Client) retryDelay(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
			if d := time.Duration(secs) * time.Second; d <= maxRetryAfter {
				return d
			}
		}
	}
	return time.Duration(attempt+1) * c.backoff
}
