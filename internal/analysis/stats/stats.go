// Package stats provides basic sample statistics over flat numeric slices.
package stats

import (
	"errors"
	"math"
	"sort"

	"golang.org/x/exp/constraints"

	"github.com/cogiquant/cogiquant/pkg/models"
)

// Number is any integer or floating-point element type.
type Number interface {
	constraints.Integer | constraints.Float
}

var (
	// ErrEmptySample is returned for a sample with no elements.
	ErrEmptySample = errors.New("stats: empty sample")

	// ErrInsufficientData is returned when a sample is too small for the
	// requested statistic.
	ErrInsufficientData = errors.New("stats: insufficient data")
)

// Mean returns the arithmetic mean.
func Mean[N Number](sample []N) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	sum := 0.0
	for _, v := range sample {
		sum += float64(v)
	}
	return sum / float64(len(sample)), nil
}

// Variance returns the sample variance (n-1 denominator).
func Variance[N Number](sample []N) (float64, error) {
	mean, err := Mean(sample)
	if err != nil {
		return 0, err
	}
	if len(sample) < 2 {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for _, v := range sample {
		d := float64(v) - mean
		sum += d * d
	}
	return sum / float64(len(sample)-1), nil
}

// StdDev returns the sample standard deviation.
func StdDev[N Number](sample []N) (float64, error) {
	v, err := Variance(sample)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(v), nil
}

// Max returns the largest element.
func Max[N Number](sample []N) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	m := sample[0]
	for _, v := range sample[1:] {
		if v > m {
			m = v
		}
	}
	return float64(m), nil
}

// Min returns the smallest element.
func Min[N Number](sample []N) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	m := sample[0]
	for _, v := range sample[1:] {
		if v < m {
			m = v
		}
	}
	return float64(m), nil
}

// Range returns Max - Min.
func Range[N Number](sample []N) (float64, error) {
	hi, err := Max(sample)
	if err != nil {
		return 0, err
	}
	lo, _ := Min(sample)
	return hi - lo, nil
}

// Mode returns the most frequent element. Ties go to the smallest value.
func Mode[N Number](sample []N) (float64, error) {
	if len(sample) == 0 {
		return 0, ErrEmptySample
	}
	sorted := append(make([]N, 0, len(sample)), sample...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return float64(best), nil
}

// Dropna returns the defined values of data.
func Dropna(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Summarize computes every statistic at once. A single-element sample
// reports zero variance.
func Summarize[N Number](sample []N) (models.SampleStats, error) {
	var s models.SampleStats
	var err error
	if s.Mean, err = Mean(sample); err != nil {
		return s, err
	}
	s.Count = len(sample)
	s.Max, _ = Max(sample)
	s.Min, _ = Min(sample)
	s.Range = s.Max - s.Min
	s.Mode, _ = Mode(sample)
	if len(sample) > 1 {
		s.Variance, _ = Variance(sample)
		s.StdDev = math.Sqrt(s.Variance)
	}
	return s, nil
}
