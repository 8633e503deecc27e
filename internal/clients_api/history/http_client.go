package history

// HTTP transport for the balance history endpoint
// GET only: rate limiter -> circuit breaker -> retry with backoff -> size-limited read
// Knows nothing about the payload; history.go decodes it

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"account-chart/internal/infra/log"
	"account-chart/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Client. Zero values use the defaults.
type Options struct {
	Timeout         time.Duration
	MaxRetries      int
	MaxResponseSize int64
	RateLimit       float64 // requests per second, 0 disables limiting
	HTTPClient      *http.Client
}

const (
	defaultTimeout         = 10 * time.Second
	defaultMaxResponseSize = 10 * 1024 * 1024
)

// Client fetches balance history payloads.
type Client struct {
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	retry           retry.Options
	maxResponseSize int64
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxResponseSize <= 0 {
		opts.MaxResponseSize = defaultMaxResponseSize
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "BalanceHistoryAPI",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.LogWarn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		httpClient:      httpClient,
		rateLimiter:     limiter,
		circuitBreaker:  breaker,
		maxResponseSize: opts.MaxResponseSize,
		retry: retry.Options{
			MaxRetries: opts.MaxRetries,
			BaseDelay:  300 * time.Millisecond,
			MaxDelay:   5 * time.Second,
		},
	}
}

// Get performs a GET against url and returns the body of a 2xx response.
// Non-2xx responses come back as *retry.HTTPError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	requestID := log.GenerateRequestID()
	start := time.Now()

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	var body []byte
	err := retry.Do(ctx, c.retry, func() error {
		out, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGET(ctx, requestID, url, start)
		})
		if err != nil {
			return err
		}
		body = out.([]byte)
		return nil
	})
	if err != nil {
		log.LogError("Balance history request failed",
			zap.String("request_id", requestID),
			zap.String("url", url),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err))
		return nil, err
	}
	return body, nil
}

func (c *Client) doGET(ctx context.Context, requestID, url string, start time.Time) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "account-chart/1.0")

	log.LogRequest(requestID, req.Method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(start).Milliseconds(), zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	// one extra byte tells a body of exactly maxResponseSize apart from a longer one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, time.Since(start).Milliseconds(), zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", c.maxResponseSize)
	}

	log.LogResponse(requestID, resp.StatusCode, time.Since(start).Milliseconds(), zap.String("url", url))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       truncate(body, 512),
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	return body, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
