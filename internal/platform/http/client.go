package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// Client wraps an HTTP client with rate limiting and retried requests. The
// embedded HTTPClient can be handed directly to SDKs that accept a standard
// *http.Client; every request then passes through the limiting transport.
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// ClientOptions holds options for creating a new Client.
type ClientOptions struct {
	Timeout         time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new HTTP client with rate limiting.
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.MaxRetryTimeout == 0 {
		opts.MaxRetryTimeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Every(time.Second), opts.RequestsPerSec)
	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &transport{
				base:            http.DefaultTransport,
				limiter:         limiter,
				maxRetryTimeout: opts.MaxRetryTimeout,
			},
		},
		Limiter: limiter,
	}
}

// transport applies rate limiting and exponential backoff retries to every
// request. Requests must have a replayable (or nil) body.
type transport struct {
	base            http.RoundTripper
	limiter         *rate.Limiter
	maxRetryTimeout time.Duration
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = t.base.RoundTrip(req.Clone(ctx))
		if err != nil {
			return err
		}
		if retryableStatus(resp.StatusCode) {
			resp.Body.Close()
			return &HTTPStatusError{StatusCode: resp.StatusCode}
		}
		return nil
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.MaxElapsedTime = t.maxRetryTimeout

	if err := backoff.Retry(operation, backoff.WithContext(backoffStrategy, ctx)); err != nil {
		return nil, err
	}

	return resp, nil
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// HTTPStatusError represents an error due to a retryable HTTP status code.
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("retryable status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
