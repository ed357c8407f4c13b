// Package instrument wraps one listed equity: it resolves a ticker or a
// company name, loads the quote and company profile together, and exposes
// them through plain accessors.
package instrument

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cogiquant/cogiquant/internal/datasource"
	"github.com/cogiquant/cogiquant/internal/pricing"
	"github.com/cogiquant/cogiquant/pkg/models"
	"github.com/cogiquant/cogiquant/pkg/series"
	"github.com/cogiquant/cogiquant/pkg/utils"
)

var (
	// ErrAmbiguousRef is returned when both a ticker and a company name are given.
	ErrAmbiguousRef = errors.New("instrument: give a ticker or a company name, not both")

	// ErrMissingRef is returned when neither is given.
	ErrMissingRef = errors.New("instrument: a ticker or a company name is required")
)

// ChairSize is how many officers Chair returns.
const ChairSize = 4

// Ref identifies an instrument by exactly one of its fields.
type Ref struct {
	Ticker      string
	CompanyName string
}

// Stock is a loaded equity.
type Stock struct {
	ticker   string
	provider datasource.Provider
	quote    *models.Quote
	profile  *models.CompanyProfile
}

// New resolves ref and loads the quote and profile concurrently. A missing
// quote is an error; a missing profile (funds, indexes) is not, and leaves
// the profile accessors empty.
func New(ctx context.Context, p datasource.Provider, ref Ref) (*Stock, error) {
	ticker, name := strings.TrimSpace(ref.Ticker), strings.TrimSpace(ref.CompanyName)
	switch {
	case ticker != "" && name != "":
		return nil, ErrAmbiguousRef
	case ticker == "" && name == "":
		return nil, ErrMissingRef
	case name != "":
		sym, err := datasource.ResolveTicker(ctx, p, name)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", name, err)
		}
		ticker = sym
	}

	s := &Stock{ticker: utils.NormalizeTicker(ticker), provider: p}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh reloads the quote and profile.
func (s *Stock) Refresh(ctx context.Context) error {
	var (
		quote   *models.Quote
		profile *models.CompanyProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := s.provider.Quote(gctx, s.ticker)
		if err != nil {
			return fmt.Errorf("quote %s: %w", s.ticker, err)
		}
		quote = q
		return nil
	})
	g.Go(func() error {
		prof, err := s.provider.Profile(gctx, s.ticker)
		if err == nil {
			profile = prof
		}
		return nil // non-fatal
	})
	if err := g.Wait(); err != nil {
		return err
	}
	s.quote, s.profile = quote, profile
	return nil
}

// Ticker returns the resolved symbol.
func (s *Stock) Ticker() string { return s.ticker }

// Quote returns the loaded quote.
func (s *Stock) Quote() *models.Quote { return s.quote }

// Profile returns the loaded company profile, or nil.
func (s *Stock) Profile() *models.CompanyProfile { return s.profile }

func (s *Stock) String() string {
	return fmt.Sprintf("%s %s", s.ticker, utils.FormatUSD(s.CurrentPrice()))
}

// --- Quote accessors ---

// CurrentPrice is the last traded price.
func (s *Stock) CurrentPrice() float64 { return s.quote.LastPrice }

// PrevClose is the previous session's closing price.
func (s *Stock) PrevClose() float64 { return s.quote.PrevClose }

// Open is the current session's opening price.
func (s *Stock) Open() float64 { return s.quote.Open }

// DayLow is the lowest price traded in the current session.
func (s *Stock) DayLow() float64 { return s.quote.Low }

// DayHigh is the highest price traded in the current session.
func (s *Stock) DayHigh() float64 { return s.quote.High }

// Beta is the stock's volatility relative to the market; NaN if unknown.
func (s *Stock) Beta() float64 { return s.quote.Beta }

// TrailingPE is price over the last twelve months' earnings per share.
func (s *Stock) TrailingPE() float64 { return s.quote.TrailingPE }

// ForwardPE is price over the estimated next-year earnings per share.
func (s *Stock) ForwardPE() float64 { return s.quote.ForwardPE }

// Volume is the number of shares traded in the current session.
func (s *Stock) Volume() int64 { return s.quote.Volume }

// AvgVolume10Day is the mean daily share volume over the last ten sessions.
func (s *Stock) AvgVolume10Day() int64 { return s.quote.AvgVolume10Day }

// YearLow is the lowest price of the trailing 52 weeks.
func (s *Stock) YearLow() float64 { return s.quote.WeekLow52 }

// YearHigh is the highest price of the trailing 52 weeks.
func (s *Stock) YearHigh() float64 { return s.quote.WeekHigh52 }

// QuotedAt is the time of the last trade in the quote.
func (s *Stock) QuotedAt() time.Time { return s.quote.Timestamp }

// --- Profile accessors ---

// Name returns the company's long name, falling back to the quote's.
func (s *Stock) Name() string {
	if s.profile != nil && s.profile.Name != "" {
		return s.profile.Name
	}
	return s.quote.Name
}

// Industry returns the industry name, or its key when useKey is set.
func (s *Stock) Industry(useKey bool) string {
	if s.profile == nil {
		return ""
	}
	if useKey {
		return s.profile.IndustryKey
	}
	return s.profile.Industry
}

// Sector returns the sector name, or its key when useKey is set.
func (s *Stock) Sector(useKey bool) string {
	if s.profile == nil {
		return ""
	}
	if useKey {
		return s.profile.SectorKey
	}
	return s.profile.Sector
}

// Employees returns the full-time head count, or 0 when unknown.
func (s *Stock) Employees() int64 {
	if s.profile == nil {
		return 0
	}
	return s.profile.Employees
}

// Summary returns the business description.
func (s *Stock) Summary() string {
	if s.profile == nil {
		return ""
	}
	return s.profile.Summary
}

// Chair returns the first ChairSize officers as listed by the provider.
func (s *Stock) Chair() []models.Officer {
	if s.profile == nil {
		return nil
	}
	officers := s.profile.Officers
	if len(officers) > ChairSize {
		officers = officers[:ChairSize]
	}
	return append([]models.Officer(nil), officers...)
}

// SameIndustry reports whether both stocks list the same, known industry.
func (s *Stock) SameIndustry(other *Stock) bool {
	a, b := s.Industry(false), other.Industry(false)
	return a != "" && strings.EqualFold(a, b)
}

// SameSector reports whether both stocks list the same, known sector.
func (s *Stock) SameSector(other *Stock) bool {
	a, b := s.Sector(false), other.Sector(false)
	return a != "" && strings.EqualFold(a, b)
}

// --- History ---

// History returns price bars over r.
func (s *Stock) History(ctx context.Context, r datasource.Range) (*models.Frame, error) {
	return s.provider.History(ctx, s.ticker, r)
}

// Closes returns the closing-price series over r.
func (s *Stock) Closes(ctx context.Context, r datasource.Range) (*series.Series[time.Time], error) {
	return pricing.Close(ctx, s.provider, s.ticker, r)
}
