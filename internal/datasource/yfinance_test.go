package datasource

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const chartJSON = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","currency":"USD","regularMarketPrice":103.0},
  "timestamp":[1700000000,1700086400,1700172800],
  "events":{
    "dividends":{"1700086400":{"amount":0.24,"date":1700086400}},
    "splits":{"1700172800":{"date":1700172800,"numerator":4,"denominator":1,"splitRatio":"4:1"}}
  },
  "indicators":{
    "quote":[{"open":[100,101,null],"high":[105,106,null],"low":[98,99,null],"close":[103,104,null],"volume":[1000,2000,null]}],
    "adjclose":[{"adjclose":[102.5,103.5,null]}]
  }
}],"error":null}}`

const quoteSummaryJSON = `{"quoteSummary":{"result":[{
  "price":{"symbol":"AAPL","shortName":"Apple","longName":"Apple Inc.","currency":"USD","exchangeName":"NasdaqGS",
    "regularMarketPrice":{"raw":190.5,"fmt":"190.50"},"regularMarketChange":{"raw":1.5},"regularMarketChangePercent":{"raw":0.0079},
    "regularMarketOpen":{"raw":189.0},"regularMarketDayHigh":{"raw":191.0},"regularMarketDayLow":{"raw":188.5},
    "regularMarketPreviousClose":{"raw":189.0},"regularMarketVolume":{"raw":50000000},"marketCap":{"raw":2.9e12},
    "regularMarketTime":1700000000},
  "summaryDetail":{"beta":{"raw":1.28},"trailingPE":{"raw":29.5},"forwardPE":{},"averageVolume":{"raw":55000000},
    "averageVolume10days":{"raw":48000000},"fiftyTwoWeekLow":{"raw":124.17},"fiftyTwoWeekHigh":{"raw":199.62},"dividendYield":{"raw":0.005}},
  "defaultKeyStatistics":{"beta":{"raw":1.3},"forwardPE":{"raw":28.1}},
  "assetProfile":{"industry":"Consumer Electronics","industryKey":"consumer-electronics","sector":"Technology","sectorKey":"technology",
    "fullTimeEmployees":161000,"longBusinessSummary":"Apple designs phones.","website":"https://www.apple.com","city":"Cupertino","country":"United States",
    "companyOfficers":[{"name":"Tim Cook","title":"CEO","age":62,"totalPay":{"raw":16425933}},{"name":"Jeff Williams","title":"COO"}]}
}],"error":null}}`

const searchJSON = `{"quotes":[
  {"symbol":"APLE","shortname":"Apple Hospitality","quoteType":"MUTUALFUND","exchDisp":"NYSE"},
  {"symbol":"AAPL","shortname":"Apple Inc.","longname":"Apple Inc.","quoteType":"EQUITY","exchDisp":"NASDAQ","sector":"Technology","industry":"Consumer Electronics"}
]}`

// yahooServer serves canned Yahoo responses and counts requests.
func yahooServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/MISSING"):
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
			w.Write([]byte(chartJSON))
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			w.Write([]byte(quoteSummaryJSON))
		case r.URL.Path == "/v1/finance/search":
			w.Write([]byte(searchJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestYFinance(t *testing.T, opts ...Option) (*YFinance, *atomic.Int32) {
	srv, hits := yahooServer(t)
	opts = append([]Option{WithBaseURL(srv.URL), WithRateLimit(1000)}, opts...)
	return NewYFinance(opts...), hits
}

func TestParseYFCandlesEmpty(t *testing.T) {
	if candles := parseYFCandles(yfChartResult{}); candles != nil {
		t.Fatalf("expected nil candles for empty result, got %d", len(candles))
	}
}

func TestParseYFCandlesNilPointers(t *testing.T) {
	v := 10.0
	result := yfChartResult{
		Timestamp: []int64{1, 2},
		Indicators: yfIndicators{Quote: []yfOHLCV{{
			Open:  []*float64{&v, nil},
			Close: []*float64{&v},
		}}},
	}
	candles := parseYFCandles(result)
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Open != 10 || !math.IsNaN(candles[1].Open) {
		t.Errorf("open = %v, %v", candles[0].Open, candles[1].Open)
	}
	if !math.IsNaN(candles[1].Close) || !math.IsNaN(candles[0].AdjClose) {
		t.Error("missing cells should be NaN")
	}
}

func TestBarFor(t *testing.T) {
	ts := []int64{100, 200, 300}
	tests := []struct {
		at   int64
		want int
	}{
		{50, -1},
		{100, 0},
		{150, 0},
		{300, 2},
		{999, 2},
	}
	for _, tt := range tests {
		if got := barFor(ts, tt.at); got != tt.want {
			t.Errorf("barFor(%d) = %d, want %d", tt.at, got, tt.want)
		}
	}
}

func TestYFinanceHistory(t *testing.T) {
	y, hits := newTestYFinance(t)
	ctx := context.Background()

	f, err := y.History(ctx, "aapl", PeriodRange("5d", ""))
	if err != nil {
		t.Fatal(err)
	}
	if f.Ticker != "AAPL" || f.Interval != "1d" {
		t.Errorf("ticker=%q interval=%q", f.Ticker, f.Interval)
	}
	if f.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", f.Len())
	}
	b := f.Bars[0]
	if b.Open != 100 || b.High != 105 || b.Low != 98 || b.Close != 103 || b.Volume != 1000 || b.AdjClose != 102.5 {
		t.Errorf("bar 0 = %+v", b)
	}
	if !b.Timestamp.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("timestamp = %v", b.Timestamp)
	}
	if f.Bars[1].Dividends != 0.24 {
		t.Errorf("dividend = %v, want 0.24", f.Bars[1].Dividends)
	}
	if f.Bars[2].StockSplits != 4 {
		t.Errorf("split = %v, want 4", f.Bars[2].StockSplits)
	}
	if !math.IsNaN(f.Bars[2].Close) {
		t.Errorf("null close should be NaN, got %v", f.Bars[2].Close)
	}

	// Second call is served from cache and mutating the result is safe.
	f.Bars[0].Close = -1
	again, err := y.History(ctx, "AAPL", PeriodRange("5d", "1d"))
	if err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("requests = %d, want 1", hits.Load())
	}
	if again.Bars[0].Close != 103 {
		t.Error("cached frame was mutated by caller")
	}
}

func TestYFinanceHistoryErrors(t *testing.T) {
	y, hits := newTestYFinance(t)
	ctx := context.Background()

	if _, err := y.History(ctx, "MISSING", Range{}); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("err = %v, want ErrTickerNotFound", err)
	}
	if _, err := y.History(ctx, "AAPL", Range{Interval: "2h"}); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("err = %v, want ErrInvalidInterval", err)
	}
	if hits.Load() != 1 {
		t.Errorf("invalid range should not hit the network, requests = %d", hits.Load())
	}
}

func TestYFinanceQuote(t *testing.T) {
	y, _ := newTestYFinance(t)
	q, err := y.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if q.Name != "Apple Inc." || q.Exchange != "NasdaqGS" {
		t.Errorf("name=%q exchange=%q", q.Name, q.Exchange)
	}
	if q.LastPrice != 190.5 || q.PrevClose != 189 || q.Open != 189 || q.High != 191 || q.Low != 188.5 {
		t.Errorf("prices = %+v", q)
	}
	if math.Abs(q.ChangePct-0.79) > 1e-9 {
		t.Errorf("ChangePct = %v, want 0.79", q.ChangePct)
	}
	if q.Volume != 50000000 || q.AvgVolume10Day != 48000000 {
		t.Errorf("volume=%d avg10=%d", q.Volume, q.AvgVolume10Day)
	}
	if q.WeekLow52 != 124.17 || q.WeekHigh52 != 199.62 {
		t.Errorf("52w = %v..%v", q.WeekLow52, q.WeekHigh52)
	}
	if q.Beta != 1.28 {
		t.Errorf("Beta = %v, want summaryDetail value 1.28", q.Beta)
	}
	if q.ForwardPE != 28.1 {
		t.Errorf("ForwardPE = %v, want key-statistics fallback 28.1", q.ForwardPE)
	}
	if q.TrailingPE != 29.5 {
		t.Errorf("TrailingPE = %v", q.TrailingPE)
	}
}

func TestYFinanceProfile(t *testing.T) {
	y, _ := newTestYFinance(t)
	p, err := y.Profile(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Apple Inc." || p.Sector != "Technology" || p.Industry != "Consumer Electronics" {
		t.Errorf("profile = %+v", p)
	}
	if p.Employees != 161000 || p.City != "Cupertino" {
		t.Errorf("employees=%d city=%q", p.Employees, p.City)
	}
	if len(p.Officers) != 2 {
		t.Fatalf("officers = %d, want 2", len(p.Officers))
	}
	if p.Officers[0].TotalPay != 16425933 || p.Officers[1].TotalPay != 0 {
		t.Errorf("pay = %v, %v", p.Officers[0].TotalPay, p.Officers[1].TotalPay)
	}
}

func TestYFinanceSearchAndResolve(t *testing.T) {
	y, _ := newTestYFinance(t)
	ctx := context.Background()

	results, err := y.Search(ctx, "apple")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[1].Name != "Apple Inc." {
		t.Fatalf("results = %+v", results)
	}

	sym, err := ResolveTicker(ctx, y, "apple")
	if err != nil {
		t.Fatal(err)
	}
	if sym != "AAPL" {
		t.Errorf("ResolveTicker = %q, want AAPL (first equity)", sym)
	}

	if _, err := y.Search(ctx, "   "); !errors.Is(err, ErrTickerNotFound) {
		t.Errorf("blank query err = %v", err)
	}
}

func TestYFinanceCrumb(t *testing.T) {
	var gotCrumb string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCrumb = r.URL.Query().Get("crumb")
		w.Write([]byte(quoteSummaryJSON))
	}))
	defer srv.Close()

	y := NewYFinance(WithBaseURL(srv.URL), WithCredentials("abc123", "B=1"))
	if _, err := y.Quote(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	if gotCrumb != "abc123" {
		t.Errorf("crumb = %q", gotCrumb)
	}
}

func TestYFinanceName(t *testing.T) {
	if got := NewYFinance().Name(); got != "Yahoo Finance" {
		t.Errorf("Name() = %q", got)
	}
}
