// Package datasource fetches market data for cogiquant: price history,
// quotes, company profiles and ticker search from Yahoo Finance, headlines
// from the Yahoo RSS feed, and the S&P 500 constituent table from Wikipedia.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/cogiquant/cogiquant/pkg/models"
)

// Provider is the market-data interface the rest of cogiquant depends on.
type Provider interface {
	// Name returns the human-readable name of this provider.
	Name() string

	// History returns price bars for a ticker over the given range.
	History(ctx context.Context, ticker string, r Range) (*models.Frame, error)

	// Quote returns a near-real-time quote for a ticker.
	Quote(ctx context.Context, ticker string) (*models.Quote, error)

	// Profile returns descriptive company metadata.
	Profile(ctx context.Context, ticker string) (*models.CompanyProfile, error)

	// Search returns instruments matching a free-text query.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// --- Sentinel errors ---

var (
	// ErrNotSupported is returned when a provider does not support a method.
	ErrNotSupported = errors.New("operation not supported by this data source")

	// ErrTickerNotFound is returned when a ticker or name cannot be resolved.
	ErrTickerNotFound = errors.New("ticker not found")

	// ErrInvalidRange is returned for a malformed history range.
	ErrInvalidRange = errors.New("invalid history range")

	// ErrInvalidInterval is returned for an unknown bar interval.
	ErrInvalidInterval = errors.New("invalid interval")
)

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// --- Shared HTTP client ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5.0 // requests per second
	DefaultCacheTTL  = 5 * time.Minute
)

// client is the rate-limited HTTP plumbing shared by every source.
type client struct {
	http      *http.Client
	userAgent string
	cookie    string
	limiter   *rate.Limiter
	log       zerolog.Logger
}

func newClient() client {
	return client{
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), int(DefaultRateLimit)),
		log:       zerolog.Nop(),
	}
}

func (c *client) setRateLimit(perSecond float64) {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// doGet performs a rate-limited GET request, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func (c *client) doGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	c.log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("http get")

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return resp.Body, nil
}

// getJSON performs doGet and decodes the body into out.
func (c *client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.doGet(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
