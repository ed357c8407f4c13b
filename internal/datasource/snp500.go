package datasource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/cogiquant/cogiquant/pkg/models"
)

// ErrNoConstituents is returned when the constituent table cannot be found.
var ErrNoConstituents = errors.New("S&P 500 constituent table not found")

// SNP500 scrapes the S&P 500 constituent list from Wikipedia.
type SNP500 struct {
	client
	pageURL string
	cache   *Cache[[]models.Constituent]
}

// NewSNP500 creates a constituent source.
func NewSNP500(opts ...Option) *SNP500 {
	s := buildSettings(opts)
	return &SNP500{
		client:  s.client("snp500"),
		pageURL: s.snp500URL,
		cache:   NewCache[[]models.Constituent](s.cacheTTL),
	}
}

// Name returns the data source name.
func (s *SNP500) Name() string { return "Wikipedia S&P 500" }

// Constituents returns the current index members in page order.
func (s *SNP500) Constituents(ctx context.Context) ([]models.Constituent, error) {
	if cached, ok := s.cache.Get("constituents"); ok {
		return cached, nil
	}

	doc, err := s.fetchPage(ctx)
	if err != nil {
		return nil, err
	}
	list, err := parseConstituents(doc)
	if err != nil {
		return nil, err
	}

	s.cache.Set("constituents", list)
	s.log.Debug().Int("count", len(list)).Msg("fetched S&P 500 constituents")
	return list, nil
}

// Symbols returns just the tickers of the index members.
func (s *SNP500) Symbols(ctx context.Context) ([]string, error) {
	list, err := s.Constituents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Symbol
	}
	return out, nil
}

// Sector returns the members whose GICS sector matches, ignoring case.
func (s *SNP500) Sector(ctx context.Context, sector string) ([]models.Constituent, error) {
	list, err := s.Constituents(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Constituent
	for _, c := range list {
		if strings.EqualFold(c.Sector, strings.TrimSpace(sector)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *SNP500) fetchPage(ctx context.Context) (*goquery.Document, error) {
	body, err := s.doGet(ctx, s.pageURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, fmt.Errorf("snp500 page: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse snp500 HTML: %w", err)
	}
	return doc, nil
}

// parseConstituents reads table#constituents, locating columns by header
// text so reordered columns still parse.
func parseConstituents(doc *goquery.Document) ([]models.Constituent, error) {
	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		return nil, ErrNoConstituents
	}

	cols := map[string]int{}
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		cols[strings.ToLower(strings.TrimSpace(th.Text()))] = i
	})
	symCol, ok := cols["symbol"]
	if !ok {
		return nil, fmt.Errorf("%w: no Symbol column", ErrNoConstituents)
	}

	var list []models.Constituent
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= cells.Length() {
				return ""
			}
			return strings.Join(strings.Fields(cells.Eq(i).Text()), " ")
		}
		if symCol >= cells.Length() {
			return
		}
		list = append(list, models.Constituent{
			Symbol:      cell("symbol"),
			Security:    cell("security"),
			Sector:      cell("gics sector"),
			SubIndustry: cell("gics sub-industry"),
			HQ:          cell("headquarters location"),
			DateAdded:   cell("date added"),
			CIK:         cell("cik"),
			Founded:     cell("founded"),
		})
	})

	if len(list) == 0 {
		return nil, fmt.Errorf("%w: table has no rows", ErrNoConstituents)
	}
	return list, nil
}
