// Package pricing extracts single price columns from a provider's history
// as time-indexed series ready for the indicator functions.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/cogiquant/cogiquant/internal/datasource"
	"github.com/cogiquant/cogiquant/pkg/models"
	"github.com/cogiquant/cogiquant/pkg/series"
)

// Column fetches history for ticker over r and returns the named column.
// The series is named "<TICKER> <Column>".
func Column(ctx context.Context, p datasource.Provider, ticker, name string, r datasource.Range) (*series.Series[time.Time], error) {
	frame, err := p.History(ctx, ticker, r)
	if err != nil {
		return nil, err
	}
	s, err := frame.Column(name)
	if err != nil {
		return nil, err
	}
	s.Name = fmt.Sprintf("%s %s", frame.Ticker, s.Name)
	return s, nil
}

// Open returns opening prices.
func Open(ctx context.Context, p datasource.Provider, ticker string, r datasource.Range) (*series.Series[time.Time], error) {
	return Column(ctx, p, ticker, models.ColOpen, r)
}

// Close returns closing prices.
func Close(ctx context.Context, p datasource.Provider, ticker string, r datasource.Range) (*series.Series[time.Time], error) {
	return Column(ctx, p, ticker, models.ColClose, r)
}

// High returns the high of each bar.
func High(ctx context.Context, p datasource.Provider, ticker string, r datasource.Range) (*series.Series[time.Time], error) {
	return Column(ctx, p, ticker, models.ColHigh, r)
}

// Low returns the low of each bar.
func Low(ctx context.Context, p datasource.Provider, ticker string, r datasource.Range) (*series.Series[time.Time], error) {
	return Column(ctx, p, ticker, models.ColLow, r)
}
