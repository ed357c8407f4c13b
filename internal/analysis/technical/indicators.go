// Package technical implements technical analysis indicators over indexed
// price series. Every indicator accepts either a *series.Series or a
// *pairedset.PairedSet and returns the same kind it was given, with the same
// length and keys. Warm-up positions that lack enough history are NaN.
package technical

import (
	"errors"
	"fmt"
	"math"

	"github.com/cogiquant/cogiquant/pkg/series"
)

// Indexed is the conversion boundary shared by every indicator: the values
// are read out as a plain slice, and the result is rebuilt over the same
// keys in the caller's representation.
type Indexed[S any] interface {
	Len() int
	Floats() []float64
	WithValues(values []float64) (S, error)
}

// ErrInvalidPeriod is returned for a window, span or period below 1.
var ErrInvalidPeriod = errors.New("technical: period must be a positive integer")

// DefaultRSIPeriod is the conventional RSI look-back.
const DefaultRSIPeriod = 14

// RSI calculates the Relative Strength Index using Wilder's smoothing
// (exponential smoothing with alpha = 1/period, unadjusted), seeded at the
// first gain/loss. The first position has no difference and is NaN.
//
// When the smoothed loss is zero the ratio is unbounded and RSI is 100;
// this includes a flat series where gain and loss are both zero.
func RSI[S Indexed[S]](data S, period int) (S, error) {
	vals, err := values(data, period)
	if err != nil {
		var zero S
		return zero, err
	}

	n := len(vals)
	gains := make([]float64, n)
	losses := make([]float64, n)
	gains[0], losses[0] = math.NaN(), math.NaN()
	for i := 1; i < n; i++ {
		change := vals[i] - vals[i-1]
		switch {
		case math.IsNaN(change):
			gains[i], losses[i] = change, change
		case change > 0:
			gains[i] = change
		default:
			losses[i] = -change
		}
	}

	alpha := 1 / float64(period)
	avgGain := ewm(gains, alpha, false)
	avgLoss := ewm(losses, alpha, false)

	rsi := make([]float64, n)
	for i := range rsi {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
			rsi[i] = math.NaN()
		case l == 0:
			rsi[i] = 100
		default:
			rs := g / l
			rsi[i] = 100 - (100 / (1 + rs))
		}
	}

	return data.WithValues(rsi)
}

// MACDParams holds the MACD spans. Zero fields take the defaults 12/26/9.
type MACDParams struct {
	Fast   int
	Slow   int
	Signal int
}

// DefaultMACDParams returns fast=12, slow=26, signal=9.
func DefaultMACDParams() MACDParams {
	return MACDParams{Fast: 12, Slow: 26, Signal: 9}
}

func (p MACDParams) withDefaults() MACDParams {
	d := DefaultMACDParams()
	if p.Fast == 0 {
		p.Fast = d.Fast
	}
	if p.Slow == 0 {
		p.Slow = d.Slow
	}
	if p.Signal == 0 {
		p.Signal = d.Signal
	}
	return p
}

// MACDResult holds the three MACD lines aligned on the input keys.
type MACDResult[S any] struct {
	MACD      S
	Signal    S
	Histogram S
}

// MACDAll calculates the Moving Average Convergence Divergence:
//
//	macd      = EMA(data, fast) - EMA(data, slow)
//	signal    = EMA(macd, signal)
//	histogram = macd - signal
//
// All EMAs are unadjusted.
func MACDAll[S Indexed[S]](data S, p MACDParams) (MACDResult[S], error) {
	var res MACDResult[S]
	line, signal, hist, err := macd(data, p)
	if err != nil {
		return res, err
	}
	if res.MACD, err = data.WithValues(line); err != nil {
		return res, err
	}
	if res.Signal, err = data.WithValues(signal); err != nil {
		return res, err
	}
	if res.Histogram, err = data.WithValues(hist); err != nil {
		return res, err
	}
	return res, nil
}

// MACDLine returns only the MACD line.
func MACDLine[S Indexed[S]](data S, p MACDParams) (S, error) {
	r, err := MACDAll(data, p)
	return r.MACD, err
}

// MACDSignal returns only the signal line.
func MACDSignal[S Indexed[S]](data S, p MACDParams) (S, error) {
	r, err := MACDAll(data, p)
	return r.Signal, err
}

// MACDHistogram returns only the histogram.
func MACDHistogram[S Indexed[S]](data S, p MACDParams) (S, error) {
	r, err := MACDAll(data, p)
	return r.Histogram, err
}

func macd[S Indexed[S]](data S, p MACDParams) (line, signal, hist []float64, err error) {
	p = p.withDefaults()
	if p.Fast < 0 || p.Slow < 0 || p.Signal < 0 {
		return nil, nil, nil, fmt.Errorf("%w: macd %d/%d/%d", ErrInvalidPeriod, p.Fast, p.Slow, p.Signal)
	}
	vals, err := values(data, 1)
	if err != nil {
		return nil, nil, nil, err
	}

	fastEMA := ewm(vals, spanAlpha(p.Fast), false)
	slowEMA := ewm(vals, spanAlpha(p.Slow), false)

	n := len(vals)
	line = make([]float64, n)
	for i := 0; i < n; i++ {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signal = ewm(line, spanAlpha(p.Signal), false)

	hist = make([]float64, n)
	for i := 0; i < n; i++ {
		hist[i] = line[i] - signal[i]
	}
	return line, signal, hist, nil
}

// Latest returns the last defined value of data.
func Latest[S Indexed[S]](data S) (float64, bool) {
	if data.Len() == 0 {
		return 0, false
	}
	vals := data.Floats()
	for i := len(vals) - 1; i >= 0; i-- {
		if !math.IsNaN(vals[i]) {
			return vals[i], true
		}
	}
	return 0, false
}

// --- helper functions ---

// values validates the period and reads the input values.
func values[S Indexed[S]](data S, period int) ([]float64, error) {
	if period <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	if data.Len() == 0 {
		return nil, series.ErrEmptySeries
	}
	return data.Floats(), nil
}

func spanAlpha(span int) float64 {
	return 2.0 / (float64(span) + 1)
}
