package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cogiquant/cogiquant/internal/config"
)

// fakeClock is a settable clock for cache tests.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache[V any](ttl time.Duration) (*Cache[V], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)}
	c := NewCache[V](ttl)
	c.now = clock.now
	return c, clock
}

func TestCacheSetGet(t *testing.T) {
	c, _ := newTestCache[string](time.Second)

	c.Set("key1", "value1")
	v, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v != "value1" {
		t.Fatalf("got %v, want value1", v)
	}
}

func TestCacheMiss(t *testing.T) {
	c, _ := newTestCache[int](time.Second)
	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	c, clock := newTestCache[string](time.Minute)
	c.Set("key", "val")

	clock.t = clock.t.Add(59 * time.Second)
	if _, ok := c.Get("key"); !ok {
		t.Fatal("expected hit before TTL")
	}
	clock.t = clock.t.Add(2 * time.Second)
	if _, ok := c.Get("key"); ok {
		t.Fatal("expected cache miss after TTL expiry")
	}
}

func TestCacheZeroTTLDisables(t *testing.T) {
	c, _ := newTestCache[string](0)
	c.Set("key", "val")
	if _, ok := c.Get("key"); ok {
		t.Fatal("zero TTL cache should never hit")
	}
	if len(c.entries) != 0 {
		t.Fatalf("stored %d entries, want 0", len(c.entries))
	}
}

func TestCacheSetSweepsExpired(t *testing.T) {
	c, clock := newTestCache[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("c", 3)
	if len(c.entries) != 3 {
		t.Fatalf("swept too early: %d entries, want 3", len(c.entries))
	}

	// a and b expired; c is still live
	clock.t = clock.t.Add(45 * time.Second)
	c.Set("d", 4)
	if len(c.entries) != 2 {
		t.Fatalf("entries after sweep = %d, want 2", len(c.entries))
	}
	for _, k := range []string{"c", "d"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to survive the sweep", k)
		}
	}
}

func TestErrHTTPError(t *testing.T) {
	e := &ErrHTTP{StatusCode: 404, Status: "404 Not Found", Body: "page not found"}
	if msg := e.Error(); msg != "HTTP 404 404 Not Found: page not found" {
		t.Fatalf("unexpected error message: %s", msg)
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		input []string
		want  string
	}{
		{[]string{"", "", "hello"}, "hello"},
		{[]string{"first", "second"}, "first"},
		{[]string{"", ""}, ""},
		{[]string{"  ", "actual"}, "actual"},
	}
	for _, tt := range tests {
		if got := coalesce(tt.input...); got != tt.want {
			t.Errorf("coalesce(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRangeNormalize(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		in           Range
		wantPeriod   string
		wantInterval string
		wantErr      error
	}{
		{"empty uses defaults", Range{}, "1mo", "1d", nil},
		{"period kept", Range{Period: "6MO", Interval: "1wk"}, "6mo", "1wk", nil},
		{"alias", Range{Period: "1w"}, "5d", "1d", nil},
		{"dates", Range{Start: jan, End: feb}, "", "1d", nil},
		{"both", Range{Period: "1y", Start: jan, End: feb}, "", "", ErrInvalidRange},
		{"start only", Range{Start: jan}, "", "", ErrInvalidRange},
		{"reversed", Range{Start: feb, End: jan}, "", "", ErrInvalidRange},
		{"equal dates", Range{Start: jan, End: jan}, "", "", ErrInvalidRange},
		{"unknown period", Range{Period: "7y"}, "", "", ErrInvalidRange},
		{"unknown interval", Range{Interval: "7m"}, "", "", ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Normalize()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Period != tt.wantPeriod || got.Interval != tt.wantInterval {
				t.Errorf("got period=%q interval=%q, want %q %q", got.Period, got.Interval, tt.wantPeriod, tt.wantInterval)
			}
		})
	}
}

func TestRangeQuery(t *testing.T) {
	r, err := DateRange(time.Unix(1700000000, 0), time.Unix(1700086400, 0), "1h").Normalize()
	if err != nil {
		t.Fatal(err)
	}
	q := r.query()
	if q.Get("period1") != "1700000000" || q.Get("period2") != "1700086400" {
		t.Errorf("period params = %s/%s", q.Get("period1"), q.Get("period2"))
	}
	if q.Get("range") != "" {
		t.Errorf("range should be unset for date ranges, got %q", q.Get("range"))
	}
	if q.Get("interval") != "1h" || q.Get("events") != "div,splits" {
		t.Errorf("unexpected query %s", q.Encode())
	}

	p, _ := PeriodRange("1y", "").Normalize()
	if got := p.query().Get("range"); got != "1y" {
		t.Errorf("range = %q, want 1y", got)
	}
	if p.key() == r.key() {
		t.Error("distinct ranges share a cache key")
	}
}

func TestClientSendsHeadersAndCookie(t *testing.T) {
	var gotUA, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	s := buildSettings([]Option{WithUserAgent("cogiquant-test"), WithCredentials("crumb", "B=abc")})
	c := s.client("test")
	var out struct{ OK bool }
	if err := c.getJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatal(err)
	}
	if !out.OK {
		t.Error("body not decoded")
	}
	if gotUA != "cogiquant-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotCookie != "B=abc" {
		t.Errorf("Cookie = %q", gotCookie)
	}
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := buildSettings(nil).client("test")
	var out map[string]any
	err := c.getJSON(context.Background(), srv.URL, &out)
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *ErrHTTP, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d", httpErr.StatusCode)
	}
}

func TestClientCancelledContext(t *testing.T) {
	c := buildSettings([]Option{WithRateLimit(1)}).client("test")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.doGet(ctx, "http://127.0.0.1:0", nil); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.ProviderConfig{
		BaseURL:    "http://example.test",
		UserAgent:  "ua",
		TimeoutSec: 7,
		RateLimit:  2,
		CacheTTL:   0,
		Crumb:      "c",
		Cookie:     "k",
	}
	s := buildSettings(FromConfig(cfg))
	if s.baseURL != "http://example.test" || s.userAgent != "ua" {
		t.Errorf("urls/ua not applied: %+v", s)
	}
	if s.newsURL != DefaultNewsURL {
		t.Errorf("empty news url should keep default, got %q", s.newsURL)
	}
	if s.timeout != 7*time.Second || s.rateLimit != 2 {
		t.Errorf("timeout=%v rate=%v", s.timeout, s.rateLimit)
	}
	if s.cacheTTL != 0 {
		t.Errorf("cacheTTL = %v, want 0", s.cacheTTL)
	}
	if s.crumb != "c" || s.cookie != "k" {
		t.Errorf("credentials not applied")
	}
}
