package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cogiquant/cogiquant/internal/config"
	"github.com/cogiquant/cogiquant/pkg/models"
	"github.com/cogiquant/cogiquant/pkg/utils"
)

// DefaultConcurrency bounds parallel fetches when none is configured.
const DefaultConcurrency = 5

// Aggregator fans requests out over the sources concurrently.
type Aggregator struct {
	provider    Provider
	news        *News
	snp500      *SNP500
	concurrency int
	log         zerolog.Logger
}

// NewAggregator wires the given sources together. news and snp500 may be nil.
func NewAggregator(p Provider, news *News, snp500 *SNP500, concurrency int) *Aggregator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Aggregator{
		provider:    p,
		news:        news,
		snp500:      snp500,
		concurrency: concurrency,
		log:         zerolog.Nop(),
	}
}

// NewAggregatorFromConfig builds every source from cfg.
func NewAggregatorFromConfig(cfg *config.Config, log zerolog.Logger) *Aggregator {
	opts := append(FromConfig(cfg.Provider), WithLogger(log))
	a := NewAggregator(NewYFinance(opts...), NewNews(opts...), NewSNP500(opts...), cfg.Analysis.ConcurrentFetches)
	a.log = log
	return a
}

// Provider returns the market-data provider.
func (a *Aggregator) Provider() Provider { return a.provider }

// News returns the headline source, or nil.
func (a *Aggregator) News() *News { return a.news }

// SNP500 returns the constituent source, or nil.
func (a *Aggregator) SNP500() *SNP500 { return a.snp500 }

// FetchHistories downloads history for each ticker in parallel. The map
// holds every ticker that succeeded; the error joins the failures.
func (a *Aggregator) FetchHistories(ctx context.Context, tickers []string, r Range) (map[string]*models.Frame, error) {
	var (
		mu     sync.Mutex
		errs   []error
		frames = make(map[string]*models.Frame, len(tickers))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, t := range tickers {
		ticker := utils.NormalizeTicker(t)
		g.Go(func() error {
			f, err := a.provider.History(gctx, ticker, r)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
				return nil // non-fatal
			}
			frames[ticker] = f
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		a.log.Warn().Int("failed", len(errs)).Int("ok", len(frames)).Msg("history fetch had failures")
	}
	return frames, errors.Join(errs...)
}

// FetchQuotes returns quotes for each ticker in parallel, like FetchHistories.
func (a *Aggregator) FetchQuotes(ctx context.Context, tickers []string) (map[string]*models.Quote, error) {
	var (
		mu     sync.Mutex
		errs   []error
		quotes = make(map[string]*models.Quote, len(tickers))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, t := range tickers {
		ticker := utils.NormalizeTicker(t)
		g.Go(func() error {
			q, err := a.provider.Quote(gctx, ticker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ticker, err))
				return nil
			}
			quotes[ticker] = q
			return nil
		})
	}
	_ = g.Wait()
	return quotes, errors.Join(errs...)
}

// Overview bundles everything known about one ticker.
type Overview struct {
	Ticker    string                 `json:"ticker"`
	Quote     *models.Quote          `json:"quote,omitempty"`
	Profile   *models.CompanyProfile `json:"profile,omitempty"`
	News      []models.NewsArticle   `json:"news,omitempty"`
	Errors    []string               `json:"errors,omitempty"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// FetchOverview gets the quote, profile and headlines concurrently. Only a
// missing quote is fatal; other failures are listed in Overview.Errors.
func (a *Aggregator) FetchOverview(ctx context.Context, ticker string, newsLimit int) (*Overview, error) {
	symbol := utils.NormalizeTicker(ticker)
	ov := &Overview{Ticker: symbol, FetchedAt: time.Now()}

	var (
		mu   sync.Mutex
		errs []error
	)
	fail := func(what string, err error) {
		mu.Lock()
		errs = append(errs, fmt.Errorf("%s: %w", what, err))
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		q, err := a.provider.Quote(gctx, symbol)
		if err != nil {
			fail("quote", err)
			return nil
		}
		mu.Lock()
		ov.Quote = q
		mu.Unlock()
		return nil
	})

	g.Go(func() error {
		p, err := a.provider.Profile(gctx, symbol)
		if err != nil {
			fail("profile", err)
			return nil
		}
		mu.Lock()
		ov.Profile = p
		mu.Unlock()
		return nil
	})

	if a.news != nil {
		g.Go(func() error {
			articles, err := a.news.Headlines(gctx, symbol, newsLimit)
			if err != nil {
				fail("news", err)
				return nil
			}
			mu.Lock()
			ov.News = articles
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ov, err
	}

	for _, err := range errs {
		ov.Errors = append(ov.Errors, err.Error())
	}
	if ov.Quote == nil {
		return nil, fmt.Errorf("overview for %s: %w", symbol, errors.Join(errs...))
	}
	return ov, nil
}
