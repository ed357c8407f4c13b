// Package dstest provides an in-memory datasource.Provider for tests.
package dstest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cogiquant/cogiquant/internal/datasource"
	"github.com/cogiquant/cogiquant/pkg/models"
)

// Provider serves canned data. Unknown tickers give ErrTickerNotFound.
type Provider struct {
	mu       sync.Mutex
	Frames   map[string]*models.Frame
	Quotes   map[string]*models.Quote
	Profiles map[string]*models.CompanyProfile
	Results  map[string][]models.SearchResult // keyed by lower-case query
	Err      error                            // returned by every call when set

	calls  map[string]int
	ranges []datasource.Range
}

// New returns an empty Provider.
func New() *Provider {
	return &Provider{
		Frames:   map[string]*models.Frame{},
		Quotes:   map[string]*models.Quote{},
		Profiles: map[string]*models.CompanyProfile{},
		Results:  map[string][]models.SearchResult{},
		calls:    map[string]int{},
	}
}

// Name implements datasource.Provider.
func (p *Provider) Name() string { return "fake" }

// History implements datasource.Provider.
func (p *Provider) History(_ context.Context, ticker string, r datasource.Range) (*models.Frame, error) {
	p.record("History")
	p.mu.Lock()
	p.ranges = append(p.ranges, r)
	p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	if _, err := r.Normalize(); err != nil {
		return nil, err
	}
	f, ok := p.Frames[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	c := *f
	c.Bars = append([]models.OHLCV(nil), f.Bars...)
	return &c, nil
}

// Quote implements datasource.Provider.
func (p *Provider) Quote(_ context.Context, ticker string) (*models.Quote, error) {
	p.record("Quote")
	if p.Err != nil {
		return nil, p.Err
	}
	q, ok := p.Quotes[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	return q, nil
}

// Profile implements datasource.Provider.
func (p *Provider) Profile(_ context.Context, ticker string) (*models.CompanyProfile, error) {
	p.record("Profile")
	if p.Err != nil {
		return nil, p.Err
	}
	prof, ok := p.Profiles[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", datasource.ErrTickerNotFound, ticker)
	}
	return prof, nil
}

// Search implements datasource.Provider.
func (p *Provider) Search(_ context.Context, query string) ([]models.SearchResult, error) {
	p.record("Search")
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Results[strings.ToLower(strings.TrimSpace(query))], nil
}

// Calls returns how many times a method was invoked.
func (p *Provider) Calls(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[method]
}

// Ranges returns every Range passed to History.
func (p *Provider) Ranges() []datasource.Range {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]datasource.Range(nil), p.ranges...)
}

func (p *Provider) record(method string) {
	p.mu.Lock()
	p.calls[method]++
	p.mu.Unlock()
}

// DailyFrame builds a frame of daily bars from closing prices, with
// open = close - 1, high = close + 2 and low = close - 2.
func DailyFrame(ticker string, start time.Time, closes ...float64) *models.Frame {
	f := &models.Frame{Ticker: ticker, Interval: "1d"}
	for i, c := range closes {
		f.Bars = append(f.Bars, models.OHLCV{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c - 1,
			High:      c + 2,
			Low:       c - 2,
			Close:     c,
			AdjClose:  c,
			Volume:    1000 * float64(i+1),
		})
	}
	return f
}
