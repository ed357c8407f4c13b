package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
)

func sampleFrame() *Frame {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return &Frame{
		Ticker:   "AAPL",
		Interval: "1d",
		Bars: []OHLCV{
			{Timestamp: start, Open: 200.3, High: 202.1, Low: 199.5, Close: 201.7, AdjClose: 201.2, Volume: 35_000_000},
			{Timestamp: start.AddDate(0, 0, 1), Open: 201.8, High: 204.0, Low: 201.0, Close: 203.3, AdjClose: 202.8, Volume: 41_000_000, Dividends: 0.26},
			{Timestamp: start.AddDate(0, 0, 2), Open: 203.1, High: 203.9, Low: 198.6, Close: math.NaN(), AdjClose: math.NaN(), Volume: 52_000_000, StockSplits: 4},
		},
	}
}

// ── Frame Tests ──

func TestFrameColumn(t *testing.T) {
	f := sampleFrame()
	tests := []struct {
		name      string
		canonical string
		want      []float64
	}{
		{"Close", ColClose, []float64{201.7, 203.3, math.NaN()}},
		{"open", ColOpen, []float64{200.3, 201.8, 203.1}},
		{"adj_close", ColAdjClose, []float64{201.2, 202.8, math.NaN()}},
		{"Adj Close", ColAdjClose, []float64{201.2, 202.8, math.NaN()}},
		{"Dividends", ColDividends, []float64{0, 0.26, 0}},
		{"stock splits", ColStockSplits, []float64{0, 0, 4}},
		{"VOLUME", ColVolume, []float64{35_000_000, 41_000_000, 52_000_000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := f.Column(tt.name)
			if err != nil {
				t.Fatalf("Column(%q) error: %v", tt.name, err)
			}
			if s.Name != tt.canonical {
				t.Errorf("Name: got %q, want %q", s.Name, tt.canonical)
			}
			for i, w := range tt.want {
				got := s.Values[i]
				if math.IsNaN(w) != math.IsNaN(got) || (!math.IsNaN(w) && got != w) {
					t.Errorf("cell %d: got %v, want %v", i, got, w)
				}
				if !s.Index[i].Equal(f.Bars[i].Timestamp) {
					t.Errorf("key %d: got %v, want %v", i, s.Index[i], f.Bars[i].Timestamp)
				}
			}
		})
	}
}

func TestFrameUnknownColumn(t *testing.T) {
	if _, err := sampleFrame().Column("Bid"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestFrameEmpty(t *testing.T) {
	var f *Frame
	if f.Len() != 0 {
		t.Errorf("nil frame Len: got %d", f.Len())
	}
	s, err := (&Frame{}).Column("Close")
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Errorf("empty frame column Len: got %d", s.Len())
	}
}

func TestOHLCVTimestamp(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	bar := OHLCV{
		Timestamp: now,
		Open:      200.0,
		High:      205.0,
		Low:       199.0,
		Close:     204.5,
		Volume:    5_000_000,
	}
	data, err := json.Marshal(bar)
	if err != nil {
		t.Fatalf("json.Marshal(OHLCV) error: %v", err)
	}
	var decoded OHLCV
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal(OHLCV) error: %v", err)
	}
	if !decoded.Timestamp.Equal(now) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, now)
	}
}

// ── Analysis Tests ──

func TestSignalTypeConstants(t *testing.T) {
	if string(SignalBuy) != "BUY" {
		t.Errorf("SignalBuy: got %q", SignalBuy)
	}
	if string(SignalSell) != "SELL" {
		t.Errorf("SignalSell: got %q", SignalSell)
	}
	if string(SignalNeutral) != "NEUTRAL" {
		t.Errorf("SignalNeutral: got %q", SignalNeutral)
	}
}

func TestRecommendationConstants(t *testing.T) {
	recs := map[Recommendation]string{
		StrongBuy:    "STRONG_BUY",
		ModerateBuy:  "BUY",
		Hold:         "HOLD",
		ModerateSell: "SELL",
		StrongSell:   "STRONG_SELL",
	}
	for r, expected := range recs {
		if string(r) != expected {
			t.Errorf("Recommendation %v: got %q, want %q", r, string(r), expected)
		}
	}
}
