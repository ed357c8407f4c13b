// Package series provides the indexed numeric series used across cogiquant,
// the cleaning and normalization utilities that operate on it, and the
// conversion boundary to and from pairedset.PairedSet.
//
// Undefined cells are represented as NaN.
package series

import (
	"errors"
	"fmt"
	"math"

	"github.com/cogiquant/cogiquant/pkg/pairedset"
)

// --- Sentinel errors ---

var (
	// ErrLengthMismatch is returned when an index and its values differ in length.
	ErrLengthMismatch = errors.New("series: index and value lengths differ")

	// ErrEmptySeries is returned by operations that need at least one cell.
	ErrEmptySeries = errors.New("series: empty series")

	// ErrIndexValueMismatch is returned at the conversion boundary when key
	// count and value count diverge.
	ErrIndexValueMismatch = errors.New("series: index-value count mismatch")

	// ErrZeroDenominator is returned when a rescaling would divide by zero.
	ErrZeroDenominator = errors.New("series: zero denominator")
)

// Series is a sequence of float64 values addressed by an ordered index.
type Series[K comparable] struct {
	Name   string
	Index  []K
	Values []float64
}

// New builds a series from an index and values of equal length.
// Both slices are copied.
func New[K comparable](name string, index []K, values []float64) (*Series[K], error) {
	if len(index) != len(values) {
		return nil, fmt.Errorf("%w: %d index values, %d values", ErrLengthMismatch, len(index), len(values))
	}
	return &Series[K]{
		Name:   name,
		Index:  append(make([]K, 0, len(index)), index...),
		Values: append(make([]float64, 0, len(values)), values...),
	}, nil
}

// Len returns the number of cells.
func (s *Series[K]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Values)
}

// Clone returns a deep copy.
func (s *Series[K]) Clone() *Series[K] {
	return &Series[K]{
		Name:   s.Name,
		Index:  append(make([]K, 0, len(s.Index)), s.Index...),
		Values: append(make([]float64, 0, len(s.Values)), s.Values...),
	}
}

// Floats returns a copy of the values.
func (s *Series[K]) Floats() []float64 {
	return append(make([]float64, 0, len(s.Values)), s.Values...)
}

// WithValues returns a new series with the same name and index and the
// given values.
func (s *Series[K]) WithValues(values []float64) (*Series[K], error) {
	return New(s.Name, s.Index, values)
}

// Get returns the value of the first cell whose key equals k.
func (s *Series[K]) Get(k K) (float64, bool) {
	for i, key := range s.Index {
		if key == k {
			return s.Values[i], true
		}
	}
	return 0, false
}

// Valid reports how many cells are defined.
func (s *Series[K]) Valid() int {
	n := 0
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// --- Conversion boundary ---

// ToPairedSet converts s into a PairedSet with identical key order and values.
func ToPairedSet[K comparable](s *Series[K]) (*pairedset.PairedSet[K], error) {
	if s.Len() == 0 {
		return nil, ErrEmptySeries
	}
	if len(s.Index) != len(s.Values) {
		return nil, fmt.Errorf("%w: %d keys, %d values", ErrIndexValueMismatch, len(s.Index), len(s.Values))
	}
	return pairedset.New(s.Index, s.Values)
}

// FromPairedSet converts p into a Series with identical key order and values.
func FromPairedSet[K comparable](p *pairedset.PairedSet[K]) (*Series[K], error) {
	if p.Len() == 0 {
		return nil, ErrEmptySeries
	}
	rows := p.Combined()
	if len(rows.Index) != len(rows.Values) {
		return nil, fmt.Errorf("%w: %d keys, %d values", ErrIndexValueMismatch, len(rows.Index), len(rows.Values))
	}
	return &Series[K]{Index: rows.Index, Values: rows.Values}, nil
}

// --- helper functions ---

// nanMean returns the mean of the defined values and how many there were.
func nanMean(data []float64) (float64, int) {
	sum, n := 0.0, 0
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), 0
	}
	return sum / float64(n), n
}
