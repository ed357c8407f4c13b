package datasource

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cogiquant/cogiquant/pkg/models"
	"github.com/cogiquant/cogiquant/pkg/utils"
)

// YFinance implements Provider using the Yahoo Finance JSON API.
type YFinance struct {
	client
	baseURL string
	crumb   string

	history  *Cache[*models.Frame]
	quotes   *Cache[*models.Quote]
	profiles *Cache[*models.CompanyProfile]
	searches *Cache[[]models.SearchResult]
}

// NewYFinance creates a new Yahoo Finance provider.
func NewYFinance(opts ...Option) *YFinance {
	s := buildSettings(opts)
	return &YFinance{
		client:   s.client("yfinance"),
		baseURL:  strings.TrimRight(s.baseURL, "/"),
		crumb:    s.crumb,
		history:  NewCache[*models.Frame](s.cacheTTL),
		quotes:   NewCache[*models.Quote](s.cacheTTL),
		profiles: NewCache[*models.CompanyProfile](s.cacheTTL),
		searches: NewCache[[]models.SearchResult](s.cacheTTL),
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance API types ---

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Events     *yfEvents    `json:"events"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	ExchangeTimezone   string  `json:"exchangeTimezoneName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	DataGranularity    string  `json:"dataGranularity"`
}

type yfEvents struct {
	Dividends map[string]yfDividend `json:"dividends"`
	Splits    map[string]yfSplit    `json:"splits"`
}

type yfDividend struct {
	Amount float64 `json:"amount"`
	Date   int64   `json:"date"`
}

type yfSplit struct {
	Date        int64   `json:"date"`
	Numerator   float64 `json:"numerator"`
	Denominator float64 `json:"denominator"`
}

type yfIndicators struct {
	Quote    []yfOHLCV    `json:"quote"`
	AdjClose []yfAdjClose `json:"adjclose"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type yfAdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	Price                *yfPrice         `json:"price"`
	SummaryDetail        *yfSummaryDetail `json:"summaryDetail"`
	DefaultKeyStatistics *yfKeyStats      `json:"defaultKeyStatistics"`
	AssetProfile         *yfAssetProfile  `json:"assetProfile"`
}

// yfVal is Yahoo's {raw, fmt} number wrapper. An empty object means the
// value is not reported.
type yfVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

func (v yfVal) float() float64 {
	if v.Raw == nil {
		return math.NaN()
	}
	return *v.Raw
}

func (v yfVal) int() int64 {
	if v.Raw == nil {
		return 0
	}
	return int64(*v.Raw)
}

type yfPrice struct {
	Symbol                     string `json:"symbol"`
	ShortName                  string `json:"shortName"`
	LongName                   string `json:"longName"`
	Currency                   string `json:"currency"`
	ExchangeName               string `json:"exchangeName"`
	QuoteType                  string `json:"quoteType"`
	RegularMarketPrice         yfVal  `json:"regularMarketPrice"`
	RegularMarketChange        yfVal  `json:"regularMarketChange"`
	RegularMarketChangePercent yfVal  `json:"regularMarketChangePercent"`
	RegularMarketOpen          yfVal  `json:"regularMarketOpen"`
	RegularMarketDayHigh       yfVal  `json:"regularMarketDayHigh"`
	RegularMarketDayLow        yfVal  `json:"regularMarketDayLow"`
	RegularMarketPreviousClose yfVal  `json:"regularMarketPreviousClose"`
	RegularMarketVolume        yfVal  `json:"regularMarketVolume"`
	MarketCap                  yfVal  `json:"marketCap"`
	RegularMarketTime          int64  `json:"regularMarketTime"`
}

type yfSummaryDetail struct {
	Beta                yfVal `json:"beta"`
	TrailingPE          yfVal `json:"trailingPE"`
	ForwardPE           yfVal `json:"forwardPE"`
	AverageVolume       yfVal `json:"averageVolume"`
	AverageVolume10days yfVal `json:"averageVolume10days"`
	FiftyTwoWeekLow     yfVal `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh    yfVal `json:"fiftyTwoWeekHigh"`
	DividendYield       yfVal `json:"dividendYield"`
}

type yfKeyStats struct {
	Beta      yfVal `json:"beta"`
	ForwardPE yfVal `json:"forwardPE"`
}

type yfAssetProfile struct {
	Industry            string      `json:"industry"`
	IndustryKey         string      `json:"industryKey"`
	Sector              string      `json:"sector"`
	SectorKey           string      `json:"sectorKey"`
	FullTimeEmployees   int64       `json:"fullTimeEmployees"`
	LongBusinessSummary string      `json:"longBusinessSummary"`
	Website             string      `json:"website"`
	City                string      `json:"city"`
	Country             string      `json:"country"`
	CompanyOfficers     []yfOfficer `json:"companyOfficers"`
}

type yfOfficer struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Age      int    `json:"age"`
	TotalPay yfVal  `json:"totalPay"`
}

type yfSearchResponse struct {
	Quotes []yfSearchQuote `json:"quotes"`
}

type yfSearchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	Exchange  string `json:"exchDisp"`
	QuoteType string `json:"quoteType"`
	Sector    string `json:"sector"`
	Industry  string `json:"industry"`
}

// --- Public methods ---

// History returns price bars from the Yahoo Finance chart API.
func (y *YFinance) History(ctx context.Context, ticker string, r Range) (*models.Frame, error) {
	r, err := r.Normalize()
	if err != nil {
		return nil, err
	}
	yfTicker := utils.ToYahooTicker(ticker)

	cacheKey := yfTicker + ":" + r.key()
	if cached, ok := y.history.Get(cacheKey); ok {
		y.log.Debug().Str("ticker", yfTicker).Msg("history cache hit")
		return cloneFrame(cached), nil
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(yfTicker), y.withCrumb(r.query()).Encode())

	var resp yfChartResponse
	if err := y.getJSON(ctx, u, &resp); err != nil {
		return nil, wrapNotFound(err, "yfinance chart", ticker)
	}
	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	frame := &models.Frame{
		Ticker:   yfTicker,
		Interval: r.Interval,
		Bars:     parseYFCandles(resp.Chart.Result[0]),
	}
	y.history.Set(cacheKey, frame)
	return cloneFrame(frame), nil
}

// Quote returns a near-real-time quote assembled from the price and
// summaryDetail modules. Values Yahoo does not report are NaN.
func (y *YFinance) Quote(ctx context.Context, ticker string) (*models.Quote, error) {
	yfTicker := utils.ToYahooTicker(ticker)
	if cached, ok := y.quotes.Get(yfTicker); ok {
		return cached, nil
	}

	res, err := y.quoteSummary(ctx, yfTicker, "price,summaryDetail,defaultKeyStatistics")
	if err != nil {
		return nil, err
	}
	if res.Price == nil {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}

	p := res.Price
	sd := res.SummaryDetail
	if sd == nil {
		sd = &yfSummaryDetail{}
	}
	quote := &models.Quote{
		Ticker:         coalesce(p.Symbol, yfTicker),
		Name:           coalesce(p.LongName, p.ShortName),
		Currency:       p.Currency,
		Exchange:       p.ExchangeName,
		LastPrice:      p.RegularMarketPrice.float(),
		Change:         p.RegularMarketChange.float(),
		ChangePct:      p.RegularMarketChangePercent.float() * 100, // ratio to percent
		Open:           p.RegularMarketOpen.float(),
		High:           p.RegularMarketDayHigh.float(),
		Low:            p.RegularMarketDayLow.float(),
		PrevClose:      p.RegularMarketPreviousClose.float(),
		Volume:         p.RegularMarketVolume.int(),
		AvgVolume:      sd.AverageVolume.int(),
		AvgVolume10Day: sd.AverageVolume10days.int(),
		WeekHigh52:     sd.FiftyTwoWeekHigh.float(),
		WeekLow52:      sd.FiftyTwoWeekLow.float(),
		MarketCap:      p.MarketCap.float(),
		Beta:           sd.Beta.float(),
		TrailingPE:     sd.TrailingPE.float(),
		ForwardPE:      sd.ForwardPE.float(),
		DividendYield:  sd.DividendYield.float() * 100,
		Timestamp:      time.Unix(p.RegularMarketTime, 0),
	}
	if ks := res.DefaultKeyStatistics; ks != nil {
		if math.IsNaN(quote.Beta) {
			quote.Beta = ks.Beta.float()
		}
		if math.IsNaN(quote.ForwardPE) {
			quote.ForwardPE = ks.ForwardPE.float()
		}
	}

	y.quotes.Set(yfTicker, quote)
	return quote, nil
}

// Profile returns company metadata from the assetProfile module.
func (y *YFinance) Profile(ctx context.Context, ticker string) (*models.CompanyProfile, error) {
	yfTicker := utils.ToYahooTicker(ticker)
	if cached, ok := y.profiles.Get(yfTicker); ok {
		return cached, nil
	}

	res, err := y.quoteSummary(ctx, yfTicker, "assetProfile,price")
	if err != nil {
		return nil, err
	}
	ap := res.AssetProfile
	if ap == nil {
		return nil, fmt.Errorf("%w: no profile for %s", ErrTickerNotFound, ticker)
	}

	profile := &models.CompanyProfile{
		Ticker:      yfTicker,
		Sector:      ap.Sector,
		SectorKey:   ap.SectorKey,
		Industry:    ap.Industry,
		IndustryKey: ap.IndustryKey,
		Employees:   ap.FullTimeEmployees,
		Summary:     ap.LongBusinessSummary,
		Website:     ap.Website,
		City:        ap.City,
		Country:     ap.Country,
		FetchedAt:   time.Now(),
	}
	if res.Price != nil {
		profile.Name = coalesce(res.Price.LongName, res.Price.ShortName)
	}
	for _, o := range ap.CompanyOfficers {
		officer := models.Officer{Name: o.Name, Title: o.Title, Age: o.Age}
		if pay := o.TotalPay.float(); !math.IsNaN(pay) {
			officer.TotalPay = pay
		}
		profile.Officers = append(profile.Officers, officer)
	}

	y.profiles.Set(yfTicker, profile)
	return profile, nil
}

// Search returns instruments matching a free-text query, best match first.
func (y *YFinance) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrTickerNotFound)
	}
	cacheKey := strings.ToLower(query)
	if cached, ok := y.searches.Get(cacheKey); ok {
		return cached, nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("quotesCount", "10")
	q.Set("newsCount", "0")
	u := fmt.Sprintf("%s/v1/finance/search?%s", y.baseURL, q.Encode())

	var resp yfSearchResponse
	if err := y.getJSON(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("yfinance search %q: %w", query, err)
	}

	results := make([]models.SearchResult, 0, len(resp.Quotes))
	for _, r := range resp.Quotes {
		if r.Symbol == "" {
			continue
		}
		results = append(results, models.SearchResult{
			Symbol:    r.Symbol,
			Name:      coalesce(r.LongName, r.ShortName),
			Exchange:  r.Exchange,
			QuoteType: r.QuoteType,
			Sector:    r.Sector,
			Industry:  r.Industry,
		})
	}

	y.searches.Set(cacheKey, results)
	return results, nil
}

// ResolveTicker returns the symbol of the first equity matching a company name.
func ResolveTicker(ctx context.Context, p Provider, name string) (string, error) {
	results, err := p.Search(ctx, name)
	if err != nil {
		return "", err
	}
	for _, r := range results {
		if r.QuoteType == "EQUITY" {
			return r.Symbol, nil
		}
	}
	return "", fmt.Errorf("%w: no equity matches %q", ErrTickerNotFound, name)
}

// --- Helpers ---

func (y *YFinance) quoteSummary(ctx context.Context, yfTicker, modules string) (*yfSummaryResult, error) {
	q := url.Values{}
	q.Set("modules", modules)
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", y.baseURL, url.PathEscape(yfTicker), y.withCrumb(q).Encode())

	var resp yfSummaryResponse
	if err := y.getJSON(ctx, u, &resp); err != nil {
		return nil, wrapNotFound(err, "yfinance quoteSummary", yfTicker)
	}
	if resp.QuoteSummary.Error != nil {
		if resp.QuoteSummary.Error.Code == "Not Found" {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, yfTicker)
		}
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, yfTicker)
	}
	return &resp.QuoteSummary.Result[0], nil
}

func (y *YFinance) withCrumb(q url.Values) url.Values {
	if y.crumb != "" {
		q.Set("crumb", y.crumb)
	}
	return q
}

func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		candles = append(candles, models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      at(q.Open, i),
			High:      at(q.High, i),
			Low:       at(q.Low, i),
			Close:     at(q.Close, i),
			AdjClose:  at(adjCloses, i),
			Volume:    at(q.Volume, i),
		})
	}

	if ev := result.Events; ev != nil {
		for _, d := range ev.Dividends {
			if i := barFor(result.Timestamp, d.Date); i >= 0 {
				candles[i].Dividends += d.Amount
			}
		}
		for _, s := range ev.Splits {
			if s.Denominator == 0 {
				continue
			}
			if i := barFor(result.Timestamp, s.Date); i >= 0 {
				candles[i].StockSplits = s.Numerator / s.Denominator
			}
		}
	}
	return candles
}

// at returns *vals[i], or NaN when the cell is null or missing.
func at(vals []*float64, i int) float64 {
	if i < len(vals) && vals[i] != nil {
		return *vals[i]
	}
	return math.NaN()
}

// barFor returns the index of the last bar starting at or before ts.
func barFor(timestamps []int64, ts int64) int {
	return sort.Search(len(timestamps), func(i int) bool { return timestamps[i] > ts }) - 1
}

func cloneFrame(f *models.Frame) *models.Frame {
	c := *f
	c.Bars = append([]models.OHLCV(nil), f.Bars...)
	return &c
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// wrapNotFound maps an HTTP 404 onto ErrTickerNotFound.
func wrapNotFound(err error, op, ticker string) error {
	var httpErr *ErrHTTP
	if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
		return fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	return fmt.Errorf("%s %s: %w", op, ticker, err)
}
