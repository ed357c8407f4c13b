package datasource

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/cogiquant/cogiquant/pkg/models"
	"github.com/cogiquant/cogiquant/pkg/utils"
)

// MarketNewsTicker is the symbol whose feed carries broad market headlines.
const MarketNewsTicker = "^GSPC"

// News reads ticker headlines from the Yahoo Finance RSS feed.
type News struct {
	client
	feedURL string
	parser  *gofeed.Parser
	cache   *Cache[[]models.NewsArticle]
}

// NewNews creates a headline source.
func NewNews(opts ...Option) *News {
	s := buildSettings(opts)
	return &News{
		client:  s.client("news"),
		feedURL: s.newsURL,
		parser:  gofeed.NewParser(),
		cache:   NewCache[[]models.NewsArticle](s.cacheTTL),
	}
}

// Name returns the data source name.
func (n *News) Name() string { return "Yahoo Finance RSS" }

// Headlines returns up to limit recent articles about a ticker, newest
// first. A limit of zero or less returns everything in the feed.
func (n *News) Headlines(ctx context.Context, ticker string, limit int) ([]models.NewsArticle, error) {
	symbol := utils.ToYahooTicker(ticker)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty ticker", ErrTickerNotFound)
	}

	articles, ok := n.cache.Get(symbol)
	if !ok {
		var err error
		articles, err = n.fetchRSS(ctx, symbol)
		if err != nil {
			return nil, err
		}
		n.cache.Set(symbol, articles)
	}

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return append([]models.NewsArticle(nil), articles...), nil
}

// MarketNews returns headlines from the S&P 500 index feed.
func (n *News) MarketNews(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	return n.Headlines(ctx, MarketNewsTicker, limit)
}

func (n *News) fetchRSS(ctx context.Context, symbol string) ([]models.NewsArticle, error) {
	q := url.Values{}
	q.Set("s", symbol)
	q.Set("region", "US")
	q.Set("lang", "en-US")
	u := n.feedURL + "?" + q.Encode()

	body, err := n.doGet(ctx, u, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err != nil {
		return nil, fmt.Errorf("news feed %s: %w", symbol, err)
	}
	defer body.Close()

	feed, err := n.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", symbol, err)
	}

	source := "Yahoo Finance"
	if feed.Title != "" {
		source = feed.Title
	}
	articles := make([]models.NewsArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		a := models.NewsArticle{
			Title:   strings.TrimSpace(item.Title),
			URL:     item.Link,
			Source:  source,
			Summary: cleanHTML(item.Description),
			Tickers: []string{symbol},
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}

	sortArticlesByDate(articles)
	n.log.Debug().Str("ticker", symbol).Int("articles", len(articles)).Msg("fetched headlines")
	return articles, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// sortArticlesByDate sorts articles newest first.
func sortArticlesByDate(articles []models.NewsArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
}
