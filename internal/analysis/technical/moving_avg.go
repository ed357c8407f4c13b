package technical

import (
	"math"

	"github.com/cogiquant/cogiquant/pkg/series"
)

// SMA calculates the Simple Moving Average over a trailing window.
//
// The input is forward-filled first (a missing first value is seeded with
// the series mean), so gaps are not averaged over. The first window-1
// positions are NaN. A window longer than the series gives an all-NaN
// result.
func SMA[S Indexed[S]](data S, window int) (S, error) {
	vals, err := values(data, window)
	if err != nil {
		var zero S
		return zero, err
	}
	filled, err := series.FillValues(vals, series.FillForward)
	if err != nil {
		var zero S
		return zero, err
	}
	return data.WithValues(rollingMean(filled, window))
}

// EMA calculates the Exponential Moving Average with smoothing factor
// alpha = 2 / (span + 1).
//
// With adjust=false the recursive form is used:
//
//	ema[0] = x[0]
//	ema[i] = alpha*x[i] + (1-alpha)*ema[i-1]
//
// With adjust=true each value is the bias-corrected weighted mean
// sum((1-alpha)^k * x[i-k]) / sum((1-alpha)^k).
//
// Missing values do not update the average but still decay the weight of
// older observations. Positions before the first observation are NaN.
func EMA[S Indexed[S]](data S, span int, adjust bool) (S, error) {
	vals, err := values(data, span)
	if err != nil {
		var zero S
		return zero, err
	}
	return data.WithValues(ewm(vals, spanAlpha(span), adjust))
}

// StandardPeriods are the commonly used MA periods.
var StandardPeriods = []int{5, 10, 20, 50, 100, 200}

// MultiSMA computes the latest SMA for multiple periods at once. Periods
// longer than the series are left out.
func MultiSMA[S Indexed[S]](data S, periods []int) map[int]float64 {
	result := make(map[int]float64, len(periods))
	for _, p := range periods {
		if p > data.Len() {
			continue
		}
		sma, err := SMA(data, p)
		if err != nil {
			continue
		}
		if v, ok := Latest(sma); ok {
			result[p] = v
		}
	}
	return result
}

// MultiEMA computes the latest unadjusted EMA for multiple periods at once.
func MultiEMA[S Indexed[S]](data S, periods []int) map[int]float64 {
	result := make(map[int]float64, len(periods))
	for _, p := range periods {
		if p > data.Len() {
			continue
		}
		ema, err := EMA(data, p, false)
		if err != nil {
			continue
		}
		if v, ok := Latest(ema); ok {
			result[p] = v
		}
	}
	return result
}

// rollingMean returns the trailing mean over window cells. Each window is
// summed directly so that window=1 reproduces the input exactly.
func rollingMean(data []float64, window int) []float64 {
	n := len(data)
	result := make([]float64, n)
	for i := range result {
		result[i] = math.NaN()
	}
	if window > n {
		return result
	}

	for i := window - 1; i < n; i++ {
		sum := 0.0
		for _, v := range data[i-window+1 : i+1] {
			sum += v
		}
		result[i] = sum / float64(window)
	}
	return result
}

// ewm is the exponentially weighted mean shared by EMA, RSI and MACD.
func ewm(data []float64, alpha float64, adjust bool) []float64 {
	n := len(data)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	oldWtFactor := 1 - alpha
	newWt := 1.0
	if !adjust {
		newWt = alpha
	}

	weighted := data[0]
	oldWt := 1.0
	out[0] = weighted

	for i := 1; i < n; i++ {
		cur := data[i]
		observed := !math.IsNaN(cur)

		if !math.IsNaN(weighted) {
			oldWt *= oldWtFactor
			if observed {
				if weighted != cur {
					weighted = (oldWt*weighted + newWt*cur) / (oldWt + newWt)
				}
				if adjust {
					oldWt += newWt
				} else {
					oldWt = 1.0
				}
			}
		} else if observed {
			weighted = cur
		}
		out[i] = weighted
	}
	return out
}
