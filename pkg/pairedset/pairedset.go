// Package pairedset implements an ordered index/value container: two
// positionally aligned slices where Y[i] belongs to X[i]. Insertion order is
// the sequence order of the data and is never changed by any operation.
//
// A PairedSet only grows. There is no removal; values are replaced only by
// building a new set. It is not safe for concurrent mutation.
package pairedset

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/exp/constraints"
)

var (
	// ErrLengthMismatch is returned when index and value slices differ in length.
	ErrLengthMismatch = errors.New("pairedset: index and value lengths differ")

	// ErrIndexOutOfRange is returned by At for positions outside [0, Len).
	ErrIndexOutOfRange = errors.New("pairedset: index out of range")

	// ErrNotNumeric is returned by Coerce when a cell cannot be read as a number.
	ErrNotNumeric = errors.New("pairedset: value is not numeric")
)

// PairedSet holds index values X and numeric values Y of equal length.
type PairedSet[K comparable] struct {
	x []K
	y []float64
}

// Pair is a single (x, y) entry.
type Pair[K comparable] struct {
	X K
	Y float64
}

// Rows is the 2xN view of a set: the index row and the value row.
type Rows[K comparable] struct {
	Index  []K
	Values []float64
}

// New builds a set from two equal-length slices. Both slices are copied.
func New[K comparable](x []K, y []float64) (*PairedSet[K], error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d index values, %d values", ErrLengthMismatch, len(x), len(y))
	}
	return &PairedSet[K]{
		x: append(make([]K, 0, len(x)), x...),
		y: append(make([]float64, 0, len(y)), y...),
	}, nil
}

// FromNumbers builds a set from any integer or float value slice.
func FromNumbers[K comparable, N constraints.Integer | constraints.Float](x []K, y []N) (*PairedSet[K], error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d index values, %d values", ErrLengthMismatch, len(x), len(y))
	}
	vals := make([]float64, len(y))
	for i, v := range y {
		vals[i] = float64(v)
	}
	return &PairedSet[K]{x: append(make([]K, 0, len(x)), x...), y: vals}, nil
}

// Coerce builds a new set from loosely typed cells, converting every cell to
// float64. Numeric strings are parsed; nil cells become NaN. A blank string
// or any other cell that is not a number fails the whole conversion.
func Coerce[K comparable](x []K, cells []any) (*PairedSet[K], error) {
	if len(x) != len(cells) {
		return nil, fmt.Errorf("%w: %d index values, %d values", ErrLengthMismatch, len(x), len(cells))
	}
	vals := make([]float64, len(cells))
	for i, c := range cells {
		if c == nil {
			vals[i] = math.NaN()
			continue
		}
		if s, ok := c.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				return nil, fmt.Errorf("%w: position %d is blank", ErrNotNumeric, i)
			}
			c = s
		}
		v, err := cast.ToFloat64E(c)
		if err != nil {
			return nil, fmt.Errorf("%w: position %d (%v): %v", ErrNotNumeric, i, cells[i], err)
		}
		vals[i] = v
	}
	return &PairedSet[K]{x: append(make([]K, 0, len(x)), x...), y: vals}, nil
}

// Len returns the number of pairs.
func (p *PairedSet[K]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.x)
}

// X returns a copy of the index values.
func (p *PairedSet[K]) X() []K {
	return append(make([]K, 0, len(p.x)), p.x...)
}

// Y returns a copy of the values.
func (p *PairedSet[K]) Y() []float64 {
	return append(make([]float64, 0, len(p.y)), p.y...)
}

// Combined returns the index row and the value row.
func (p *PairedSet[K]) Combined() Rows[K] {
	return Rows[K]{Index: p.X(), Values: p.Y()}
}

// At returns the pair at zero-based position i.
func (p *PairedSet[K]) At(i int) (Pair[K], error) {
	if i < 0 || i >= len(p.x) {
		return Pair[K]{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(p.x))
	}
	return Pair[K]{X: p.x[i], Y: p.y[i]}, nil
}

// Lookup returns the value paired with the first occurrence of x.
// The boolean is false when x never occurs.
func (p *PairedSet[K]) Lookup(x K) (float64, bool) {
	for i, v := range p.x {
		if v == x {
			return p.y[i], true
		}
	}
	return 0, false
}

// Append adds one pair at the tail.
func (p *PairedSet[K]) Append(x K, y float64) {
	p.x = append(p.x, x)
	p.y = append(p.y, y)
}

// Extend appends every pair of other after the pairs already in p,
// preserving other's order. Extending a set with itself doubles it.
func (p *PairedSet[K]) Extend(other *PairedSet[K]) {
	if other.Len() == 0 {
		return
	}
	ox, oy := other.x, other.y
	p.x = append(p.x, ox...)
	p.y = append(p.y, oy...)
}

// Clone returns a detached copy of the set.
func (p *PairedSet[K]) Clone() *PairedSet[K] {
	return &PairedSet[K]{x: p.X(), y: p.Y()}
}

// Floats returns a copy of the values. Together with WithValues it lets
// indicator code treat a PairedSet like any other indexed series.
func (p *PairedSet[K]) Floats() []float64 { return p.Y() }

// WithValues returns a new set with the same index and the given values.
func (p *PairedSet[K]) WithValues(y []float64) (*PairedSet[K], error) {
	return New(p.x, y)
}

func (p *PairedSet[K]) String() string {
	return fmt.Sprintf("[%v\n %v]", p.x, p.y)
}
