package series

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// NormMethod selects how Normalize rescales values.
type NormMethod string

const (
	// MinMax maps the minimum to 0 and the maximum to 1.
	MinMax NormMethod = "minmax"
	// ZScore maps each value to (v - mean) / stddev.
	ZScore NormMethod = "z"
)

// ErrUnknownNormMethod is returned for an unrecognised normalization method.
var ErrUnknownNormMethod = errors.New("series: unknown normalization method")

// ParseNormMethod accepts "minmax", "mm", "m", "z" and "zscore".
// The empty string means MinMax.
func ParseNormMethod(s string) (NormMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "minmax", "mm", "m":
		return MinMax, nil
	case "z", "zscore", "z-score":
		return ZScore, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownNormMethod, s)
	}
}

// Normalize returns a rescaled copy of s. Missing cells stay missing and are
// ignored when computing min, max, mean and standard deviation. The z-score
// uses the sample standard deviation (n-1).
//
// A zero denominator (max == min, or a standard deviation of zero or one
// that cannot be computed) is reported as ErrZeroDenominator rather than
// producing infinities.
func Normalize[K comparable](s *Series[K], method NormMethod) (*Series[K], error) {
	if s.Len() == 0 {
		return nil, ErrEmptySeries
	}

	var (
		vals []float64
		err  error
	)
	switch method {
	case MinMax, "":
		vals, err = minMax(s.Values)
	case ZScore:
		vals, err = zScore(s.Values)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNormMethod, method)
	}
	if err != nil {
		return nil, err
	}
	return s.WithValues(vals)
}

func minMax(data []float64) ([]float64, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return nil, fmt.Errorf("%w: no defined values", ErrZeroDenominator)
	}
	span := hi - lo
	if span == 0 {
		return nil, fmt.Errorf("%w: max equals min (%g)", ErrZeroDenominator, lo)
	}
	if math.IsInf(span, 0) {
		return nil, fmt.Errorf("%w: range [%g, %g] is not finite", ErrZeroDenominator, lo, hi)
	}

	out := make([]float64, len(data))
	for i, v := range data {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = (v - lo) / span
	}
	return out, nil
}

func zScore(data []float64) ([]float64, error) {
	mean, n := nanMean(data)
	if n < 2 {
		return nil, fmt.Errorf("%w: standard deviation needs two defined values, have %d", ErrZeroDenominator, n)
	}
	sumSq := 0.0
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		sumSq += d * d
	}
	sd := math.Sqrt(sumSq / float64(n-1))
	if sd == 0 {
		return nil, fmt.Errorf("%w: standard deviation is zero", ErrZeroDenominator)
	}
	if math.IsInf(sd, 0) || math.IsNaN(sd) {
		return nil, fmt.Errorf("%w: standard deviation is not finite", ErrZeroDenominator)
	}

	out := make([]float64, len(data))
	for i, v := range data {
		if math.IsNaN(v) {
			out[i] = v
			continue
		}
		out[i] = (v - mean) / sd
	}
	return out, nil
}
