package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cogiquant/cogiquant/pkg/series"
)

// Canonical history column names.
const (
	ColOpen        = "Open"
	ColHigh        = "High"
	ColLow         = "Low"
	ColClose       = "Close"
	ColAdjClose    = "Adj Close"
	ColVolume      = "Volume"
	ColDividends   = "Dividends"
	ColStockSplits = "Stock Splits"
)

// Columns lists the history columns in display order.
var Columns = []string{ColOpen, ColHigh, ColLow, ColClose, ColAdjClose, ColVolume, ColDividends, ColStockSplits}

// ErrUnknownColumn is returned by Frame.Column for a name outside Columns.
var ErrUnknownColumn = errors.New("models: unknown column")

// Frame is a price history for one ticker, one bar per row in time order.
type Frame struct {
	Ticker   string  `json:"ticker"`
	Interval string  `json:"interval"`
	Bars     []OHLCV `json:"bars"`
}

// Len returns the number of bars.
func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Bars)
}

// Index returns the bar timestamps.
func (f *Frame) Index() []time.Time {
	idx := make([]time.Time, len(f.Bars))
	for i, b := range f.Bars {
		idx[i] = b.Timestamp
	}
	return idx
}

// Column extracts one named column as a time-indexed series. Names are
// matched case-insensitively, and "adjclose" or "adj_close" style
// spellings are accepted.
func (f *Frame) Column(name string) (*series.Series[time.Time], error) {
	pick, canonical := columnGetter(name)
	if pick == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	vals := make([]float64, len(f.Bars))
	for i, b := range f.Bars {
		vals[i] = pick(b)
	}
	return series.New(canonical, f.Index(), vals)
}

func columnGetter(name string) (func(OHLCV) float64, string) {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name))
	switch key {
	case "open":
		return func(b OHLCV) float64 { return b.Open }, ColOpen
	case "high":
		return func(b OHLCV) float64 { return b.High }, ColHigh
	case "low":
		return func(b OHLCV) float64 { return b.Low }, ColLow
	case "close":
		return func(b OHLCV) float64 { return b.Close }, ColClose
	case "adjclose":
		return func(b OHLCV) float64 { return b.AdjClose }, ColAdjClose
	case "volume":
		return func(b OHLCV) float64 { return b.Volume }, ColVolume
	case "dividends":
		return func(b OHLCV) float64 { return b.Dividends }, ColDividends
	case "stocksplits", "splits":
		return func(b OHLCV) float64 { return b.StockSplits }, ColStockSplits
	}
	return nil, ""
}
