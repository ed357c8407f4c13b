package datasource

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/cogiquant/cogiquant/internal/config"
)

// Default endpoints.
const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultNewsURL   = "https://feeds.finance.yahoo.com/rss/2.0/headline"
	DefaultSNP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
)

// settings collects everything the Option functions can change. Each source
// reads the fields it needs.
type settings struct {
	baseURL    string
	newsURL    string
	snp500URL  string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	rateLimit  float64
	cacheTTL   time.Duration
	crumb      string
	cookie     string
	log        zerolog.Logger
}

// Option configures a data source.
type Option func(*settings)

// WithBaseURL sets the Yahoo Finance query host.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithNewsURL sets the headline RSS endpoint.
func WithNewsURL(u string) Option {
	return func(s *settings) { s.newsURL = u }
}

// WithSNP500URL sets the constituent table page.
func WithSNP500URL(u string) Option {
	return func(s *settings) { s.snp500URL = u }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(s *settings) { s.rateLimit = perSecond }
}

// WithCacheTTL sets how long responses are cached. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.cacheTTL = ttl }
}

// WithCredentials sets the Yahoo crumb and session cookie.
func WithCredentials(crumb, cookie string) Option {
	return func(s *settings) {
		s.crumb = crumb
		s.cookie = cookie
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

// FromConfig translates the provider section of the config into options.
// Empty values keep the defaults.
func FromConfig(cfg config.ProviderConfig) []Option {
	var opts []Option
	if cfg.BaseURL != "" {
		opts = append(opts, WithBaseURL(cfg.BaseURL))
	}
	if cfg.NewsURL != "" {
		opts = append(opts, WithNewsURL(cfg.NewsURL))
	}
	if cfg.SNP500URL != "" {
		opts = append(opts, WithSNP500URL(cfg.SNP500URL))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, WithUserAgent(cfg.UserAgent))
	}
	if cfg.TimeoutSec > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout()))
	}
	if cfg.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.RateLimit))
	}
	opts = append(opts,
		WithCacheTTL(cfg.CacheDuration()),
		WithCredentials(cfg.Crumb, cfg.Cookie),
	)
	return opts
}

func buildSettings(opts []Option) settings {
	s := settings{
		baseURL:   DefaultBaseURL,
		newsURL:   DefaultNewsURL,
		snp500URL: DefaultSNP500URL,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		rateLimit: DefaultRateLimit,
		cacheTTL:  DefaultCacheTTL,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s settings) client(component string) client {
	c := newClient()
	if s.httpClient != nil {
		c.http = s.httpClient
	} else {
		c.http = &http.Client{Timeout: s.timeout}
	}
	c.userAgent = s.userAgent
	c.cookie = s.cookie
	c.setRateLimit(s.rateLimit)
	c.log = s.log.With().Str("source", component).Logger()
	return c
}
