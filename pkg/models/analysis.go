package models

import "time"

// SignalType represents the direction of a trading signal.
type SignalType string

const (
	SignalBuy     SignalType = "BUY"
	SignalSell    SignalType = "SELL"
	SignalNeutral SignalType = "NEUTRAL"
)

// Confidence represents the strength of a signal (0.0 to 1.0).
type Confidence float64

// Signal represents a single trading signal from an indicator.
type Signal struct {
	Source     string     `json:"source"` // e.g., "RSI", "MACD"
	Type       SignalType `json:"type"`
	Confidence Confidence `json:"confidence"` // 0.0 to 1.0
	Reason     string     `json:"reason"`     // human-readable explanation
	Price      float64    `json:"price,omitempty"`
}

// Recommendation represents the aggregated call for a stock.
type Recommendation string

const (
	StrongBuy    Recommendation = "STRONG_BUY"
	ModerateBuy  Recommendation = "BUY"
	Hold         Recommendation = "HOLD"
	ModerateSell Recommendation = "SELL"
	StrongSell   Recommendation = "STRONG_SELL"
)

// MACDData contains the latest MACD indicator values.
type MACDData struct {
	MACDLine   float64 `json:"macd_line"`
	SignalLine float64 `json:"signal_line"`
	Histogram  float64 `json:"histogram"`
}

// TechnicalIndicators holds the latest computed indicator values for a stock.
type TechnicalIndicators struct {
	Ticker    string          `json:"ticker"`
	Price     float64         `json:"price"`
	RSI       float64         `json:"rsi"`
	MACD      MACDData        `json:"macd"`
	SMA       map[int]float64 `json:"sma"` // period → value (e.g., 20 → 201.5)
	EMA       map[int]float64 `json:"ema"`
	Timestamp time.Time       `json:"timestamp"`
}

// TechnicalSummary is the output of a full technical pass over one ticker.
type TechnicalSummary struct {
	Ticker         string               `json:"ticker"`
	Indicators     *TechnicalIndicators `json:"indicators"`
	Signals        []Signal             `json:"signals"`
	Direction      SignalType           `json:"direction"`
	Recommendation Recommendation       `json:"recommendation"`
	Confidence     Confidence           `json:"confidence"`
	Summary        string               `json:"summary"`
	Timestamp      time.Time            `json:"timestamp"`
}

// SampleStats summarises a flat numeric sample.
type SampleStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Mode     float64 `json:"mode"`
}

// NewsArticle represents a single news article.
type NewsArticle struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Tickers     []string  `json:"tickers,omitempty"` // related tickers
}
