// Package config handles configuration loading for cogiquant.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cogiquant/cogiquant/pkg/series"
)

// Config represents the complete application configuration.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// ProviderConfig holds market-data provider settings.
type ProviderConfig struct {
	BaseURL    string  `mapstructure:"base_url"    yaml:"base_url"`    // Yahoo Finance query host
	NewsURL    string  `mapstructure:"news_url"    yaml:"news_url"`    // headline RSS endpoint
	SNP500URL  string  `mapstructure:"snp500_url"  yaml:"snp500_url"`  // constituent table page
	UserAgent  string  `mapstructure:"user_agent"  yaml:"user_agent"`
	TimeoutSec int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RateLimit  float64 `mapstructure:"rate_limit"  yaml:"rate_limit"` // requests per second
	CacheTTL   int     `mapstructure:"cache_ttl"   yaml:"cache_ttl"`  // seconds, 0 disables
	Crumb      string  `mapstructure:"crumb"       yaml:"crumb"`
	Cookie     string  `mapstructure:"cookie"      yaml:"cookie"`
}

// Timeout returns the HTTP timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSec) * time.Second
}

// CacheDuration returns the cache TTL as a duration.
func (p ProviderConfig) CacheDuration() time.Duration {
	return time.Duration(p.CacheTTL) * time.Second
}

// AnalysisConfig holds analysis engine settings.
type AnalysisConfig struct {
	Period            string `mapstructure:"period"             yaml:"period"`   // e.g. "6mo"
	Interval          string `mapstructure:"interval"           yaml:"interval"` // e.g. "1d"
	RSIPeriod         int    `mapstructure:"rsi_period"         yaml:"rsi_period"`
	MACDFast          int    `mapstructure:"macd_fast"          yaml:"macd_fast"`
	MACDSlow          int    `mapstructure:"macd_slow"          yaml:"macd_slow"`
	MACDSignal        int    `mapstructure:"macd_signal"        yaml:"macd_signal"`
	SMAWindows        []int  `mapstructure:"sma_windows"        yaml:"sma_windows"`
	EMAAdjust         bool   `mapstructure:"ema_adjust"         yaml:"ema_adjust"`
	FillMode          string `mapstructure:"fill_mode"          yaml:"fill_mode"` // "ffill" or "bfill"
	NormMethod        string `mapstructure:"norm_method"        yaml:"norm_method"`
	ConcurrentFetches int    `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.cogiquant/config.yaml (home directory)
//  3. /etc/cogiquant/config.yaml (system)
//
// Environment variables override config file values.
// Format: COGIQUANT_<SECTION>_<KEY>, e.g., COGIQUANT_ANALYSIS_RSI_PERIOD
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".cogiquant"))
	v.AddConfigPath("/etc/cogiquant")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("COGIQUANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("provider.news_url", "https://feeds.finance.yahoo.com/rss/2.0/headline")
	v.SetDefault("provider.snp500_url", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies")
	v.SetDefault("provider.timeout_sec", 30)
	v.SetDefault("provider.rate_limit", 5.0)
	v.SetDefault("provider.cache_ttl", 300) // 5 minutes

	// Analysis defaults
	v.SetDefault("analysis.period", "6mo")
	v.SetDefault("analysis.interval", "1d")
	v.SetDefault("analysis.rsi_period", 14)
	v.SetDefault("analysis.macd_fast", 12)
	v.SetDefault("analysis.macd_slow", 26)
	v.SetDefault("analysis.macd_signal", 9)
	v.SetDefault("analysis.sma_windows", []int{20, 50, 200})
	v.SetDefault("analysis.ema_adjust", false)
	v.SetDefault("analysis.fill_mode", "ffill")
	v.SetDefault("analysis.norm_method", "minmax")
	v.SetDefault("analysis.concurrent_fetches", 5)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads provider credentials from environment variables.
func overrideFromEnv(cfg *Config) {
	if crumb := os.Getenv("COGIQUANT_PROVIDER_CRUMB"); crumb != "" {
		cfg.Provider.Crumb = crumb
	}
	if cookie := os.Getenv("COGIQUANT_PROVIDER_COOKIE"); cookie != "" {
		cfg.Provider.Cookie = cookie
	}
}

// Validate checks parameter values that the analysis layer would reject
// later with a less helpful error.
func (c *Config) Validate() error {
	a := c.Analysis
	if a.RSIPeriod < 1 {
		return fmt.Errorf("%w: analysis.rsi_period must be positive, got %d", ErrInvalidConfig, a.RSIPeriod)
	}
	if a.MACDFast < 0 || a.MACDSlow < 0 || a.MACDSignal < 0 {
		return fmt.Errorf("%w: analysis.macd_* must not be negative", ErrInvalidConfig)
	}
	for _, w := range a.SMAWindows {
		if w < 1 {
			return fmt.Errorf("%w: analysis.sma_windows contains %d", ErrInvalidConfig, w)
		}
	}
	if _, err := series.ParseFillMode(a.FillMode); err != nil {
		return fmt.Errorf("%w: analysis.fill_mode: %v", ErrInvalidConfig, err)
	}
	if _, err := series.ParseNormMethod(a.NormMethod); err != nil {
		return fmt.Errorf("%w: analysis.norm_method: %v", ErrInvalidConfig, err)
	}
	if a.ConcurrentFetches < 1 {
		return fmt.Errorf("%w: analysis.concurrent_fetches must be positive", ErrInvalidConfig)
	}
	if c.Provider.RateLimit <= 0 {
		return fmt.Errorf("%w: provider.rate_limit must be positive", ErrInvalidConfig)
	}
	if c.Provider.CacheTTL < 0 {
		return fmt.Errorf("%w: provider.cache_ttl must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json", "":
	default:
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
