package series

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// FillMode selects the direction in which missing cells are filled.
type FillMode string

const (
	FillForward  FillMode = "ffill"
	FillBackward FillMode = "bfill"
)

// ErrUnknownFillMode is returned for a FillMode other than ffill or bfill.
var ErrUnknownFillMode = errors.New("series: unknown fill mode")

// ParseFillMode accepts "ffill", "forward", "bfill" or "backward".
// The empty string means forward.
func ParseFillMode(s string) (FillMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ffill", "forward", "f":
		return FillForward, nil
	case "bfill", "backward", "b":
		return FillBackward, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFillMode, s)
	}
}

// Fill returns a copy of s with every missing cell replaced.
//
// Forward mode carries the nearest preceding defined value forward. If the
// first cell is missing it is seeded with the mean of the defined cells, so
// propagation always has a start value. Backward mode is symmetric: values
// are carried backward and a missing last cell is seeded with the mean.
//
// A series with no defined cells has no mean and comes back all-NaN.
func Fill[K comparable](s *Series[K], mode FillMode) (*Series[K], error) {
	if s.Len() == 0 {
		return nil, ErrEmptySeries
	}
	vals, err := FillValues(s.Values, mode)
	if err != nil {
		return nil, err
	}
	return s.WithValues(vals)
}

// FillValues applies the Fill rules to a bare value slice and returns a new
// slice.
func FillValues(data []float64, mode FillMode) ([]float64, error) {
	n := len(data)
	if n == 0 {
		return nil, ErrEmptySeries
	}

	out := make([]float64, n)
	copy(out, data)
	mean, _ := nanMean(data)

	switch mode {
	case FillForward, "":
		if math.IsNaN(out[0]) {
			out[0] = mean
		}
		for i := 1; i < n; i++ {
			if math.IsNaN(out[i]) {
				out[i] = out[i-1]
			}
		}
	case FillBackward:
		if math.IsNaN(out[n-1]) {
			out[n-1] = mean
		}
		for i := n - 2; i >= 0; i-- {
			if math.IsNaN(out[i]) {
				out[i] = out[i+1]
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFillMode, mode)
	}

	return out, nil
}
