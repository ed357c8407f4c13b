// Package models defines the core data structures used throughout cogiquant.
package models

import "time"

// OHLCV represents a single price bar. Fields that the provider did not
// report are NaN.
type OHLCV struct {
	Timestamp   time.Time `json:"timestamp"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	AdjClose    float64   `json:"adj_close"`
	Volume      float64   `json:"volume"`
	Dividends   float64   `json:"dividends"`
	StockSplits float64   `json:"stock_splits"`
}

// Quote represents a near-real-time stock quote.
type Quote struct {
	Ticker           string    `json:"ticker"`
	Name             string    `json:"name"`
	Currency         string    `json:"currency,omitempty"`
	Exchange         string    `json:"exchange,omitempty"`
	LastPrice        float64   `json:"last_price"`
	Change           float64   `json:"change"`
	ChangePct        float64   `json:"change_pct"`
	Open             float64   `json:"open"`
	High             float64   `json:"high"`
	Low              float64   `json:"low"`
	PrevClose        float64   `json:"prev_close"`
	Volume           int64     `json:"volume"`
	AvgVolume        int64     `json:"avg_volume,omitempty"`
	AvgVolume10Day   int64     `json:"avg_volume_10d,omitempty"`
	WeekHigh52       float64   `json:"week_high_52"`
	WeekLow52        float64   `json:"week_low_52"`
	MarketCap        float64   `json:"market_cap"`
	Beta             float64   `json:"beta,omitempty"`
	TrailingPE       float64   `json:"trailing_pe,omitempty"`
	ForwardPE        float64   `json:"forward_pe,omitempty"`
	DividendYield    float64   `json:"dividend_yield,omitempty"` // percent
	OverallRisk      int       `json:"overall_risk,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Officer is a company executive as reported in the asset profile.
type Officer struct {
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Age      int     `json:"age,omitempty"`
	TotalPay float64 `json:"total_pay,omitempty"`
}

// CompanyProfile holds descriptive company metadata.
type CompanyProfile struct {
	Ticker      string    `json:"ticker"`
	Name        string    `json:"name"`
	Sector      string    `json:"sector"`
	SectorKey   string    `json:"sector_key,omitempty"`
	Industry    string    `json:"industry"`
	IndustryKey string    `json:"industry_key,omitempty"`
	Employees   int64     `json:"employees"`
	Summary     string    `json:"summary"`
	Website     string    `json:"website,omitempty"`
	City        string    `json:"city,omitempty"`
	Country     string    `json:"country,omitempty"`
	Officers    []Officer `json:"officers,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// SearchResult is one hit from a ticker search.
type SearchResult struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	QuoteType string `json:"quote_type"` // "EQUITY", "ETF", "INDEX", ...
	Sector    string `json:"sector,omitempty"`
	Industry  string `json:"industry,omitempty"`
}

// Constituent is one row of the S&P 500 constituent table.
type Constituent struct {
	Symbol      string `json:"symbol"`
	Security    string `json:"security"`
	Sector      string `json:"sector"`       // GICS sector
	SubIndustry string `json:"sub_industry"` // GICS sub-industry
	HQ          string `json:"headquarters,omitempty"`
	DateAdded   string `json:"date_added,omitempty"`
	CIK         string `json:"cik,omitempty"`
	Founded     string `json:"founded,omitempty"`
}
