package series

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cogiquant/cogiquant/pkg/pairedset"
)

var nan = math.NaN()

func mustSeries(t *testing.T, values ...float64) *Series[int] {
	t.Helper()
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	s, err := New("test", idx, values)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func sameFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewLengthMismatch(t *testing.T) {
	if _, err := New("x", []int{1}, []float64{1, 2}); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	idx := []time.Time{base, base.AddDate(0, 0, 1), base.AddDate(0, 0, 3), base.AddDate(0, 0, 2)}
	vals := []float64{193.67, 198.3, nan, 201.53}

	p, err := pairedset.New(idx, vals)
	if err != nil {
		t.Fatal(err)
	}
	s, err := FromPairedSet(p)
	if err != nil {
		t.Fatalf("FromPairedSet: %v", err)
	}
	back, err := ToPairedSet(s)
	if err != nil {
		t.Fatalf("ToPairedSet: %v", err)
	}

	rows := back.Combined()
	for i := range idx {
		if !rows.Index[i].Equal(idx[i]) {
			t.Errorf("key %d = %v, want %v", i, rows.Index[i], idx[i])
		}
	}
	if !sameFloats(rows.Values, vals) {
		t.Errorf("values = %v, want %v", rows.Values, vals)
	}
}

func TestConversionEmpty(t *testing.T) {
	if _, err := ToPairedSet(&Series[int]{}); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("ToPairedSet: expected ErrEmptySeries, got %v", err)
	}
	empty, _ := pairedset.New[int](nil, nil)
	if _, err := FromPairedSet(empty); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("FromPairedSet: expected ErrEmptySeries, got %v", err)
	}
}

func TestToPairedSetMismatch(t *testing.T) {
	s := &Series[int]{Index: []int{1}, Values: []float64{1, 2}}
	if _, err := ToPairedSet(s); !errors.Is(err, ErrIndexValueMismatch) {
		t.Fatalf("expected ErrIndexValueMismatch, got %v", err)
	}
}

func TestGet(t *testing.T) {
	s := mustSeries(t, 5, 6, 7)
	if v, ok := s.Get(2); !ok || v != 7 {
		t.Errorf("Get(2) = (%v, %v)", v, ok)
	}
	if _, ok := s.Get(9); ok {
		t.Error("Get(9) should miss")
	}
}

// ── Fill ──

func TestFill(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		mode FillMode
		want []float64
	}{
		{"forward interior", []float64{1, nan, nan, 4}, FillForward, []float64{1, 1, 1, 4}},
		{"forward leading seeded with mean", []float64{nan, 2, nan, 4}, FillForward, []float64{3, 2, 2, 4}},
		{"forward trailing", []float64{1, 2, nan}, FillForward, []float64{1, 2, 2}},
		{"backward interior", []float64{1, nan, nan, 4}, FillBackward, []float64{1, 4, 4, 4}},
		{"backward trailing seeded with mean", []float64{2, nan, 4, nan}, FillBackward, []float64{2, 4, 4, 3}},
		{"backward leading", []float64{nan, 2, 3}, FillBackward, []float64{2, 2, 3}},
		{"nothing missing", []float64{1, 2, 3}, FillForward, []float64{1, 2, 3}},
		{"all missing", []float64{nan, nan}, FillForward, []float64{nan, nan}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustSeries(t, tt.in...)
			got, err := Fill(s, tt.mode)
			if err != nil {
				t.Fatal(err)
			}
			if !sameFloats(got.Values, tt.want) {
				t.Errorf("Fill = %v, want %v", got.Values, tt.want)
			}
			if !sameFloats(s.Values, tt.in) {
				t.Errorf("input was modified: %v", s.Values)
			}
		})
	}
}

func TestFillNeverLeavesGaps(t *testing.T) {
	inputs := [][]float64{
		{nan, nan, nan, 7},
		{7, nan, nan, nan},
		{nan, 1, nan, 2, nan},
		{nan, nan, 0.5},
	}
	for _, in := range inputs {
		for _, mode := range []FillMode{FillForward, FillBackward} {
			got, err := Fill(mustSeries(t, in...), mode)
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range got.Values {
				if math.IsNaN(v) {
					t.Errorf("Fill(%v, %s): cell %d still missing", in, mode, i)
				}
			}
		}
	}
}

func TestFillErrors(t *testing.T) {
	if _, err := Fill(&Series[int]{}, FillForward); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
	if _, err := Fill(mustSeries(t, 1), FillMode("sideways")); !errors.Is(err, ErrUnknownFillMode) {
		t.Errorf("expected ErrUnknownFillMode, got %v", err)
	}
}

func TestParseFillMode(t *testing.T) {
	tests := []struct {
		in   string
		want FillMode
		ok   bool
	}{
		{"", FillForward, true},
		{"ffill", FillForward, true},
		{"Backward", FillBackward, true},
		{"bfill", FillBackward, true},
		{"nearest", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFillMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFillMode(%q) = (%q, %v)", tt.in, got, err)
		}
	}
}

// ── Normalize ──

func TestNormalizeMinMax(t *testing.T) {
	got, err := Normalize(mustSeries(t, 10, 20, 30), MinMax)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.5, 1}
	if !sameFloats(got.Values, want) {
		t.Errorf("Normalize = %v, want %v", got.Values, want)
	}
}

func TestNormalizeMinMaxBounds(t *testing.T) {
	in := []float64{98.0, 100.33, 101, nan, 105.4, 110.12, 109.2}
	got, err := Normalize(mustSeries(t, in...), "")
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got.Values {
		if math.IsNaN(in[i]) {
			if !math.IsNaN(v) {
				t.Errorf("missing cell %d was filled: %v", i, v)
			}
			continue
		}
		if v < 0 || v > 1 {
			t.Errorf("cell %d = %v outside [0, 1]", i, v)
		}
	}
	if got.Values[0] != 0 {
		t.Errorf("minimum should map to 0, got %v", got.Values[0])
	}
	if got.Values[5] != 1 {
		t.Errorf("maximum should map to 1, got %v", got.Values[5])
	}
	if math.Abs(got.Values[1]-0.192244) > 1e-6 {
		t.Errorf("cell 1 = %v, want ~0.192244", got.Values[1])
	}
}

func TestNormalizeZScore(t *testing.T) {
	in := []float64{98.0, 100.33, 101, 105.4, 110.12, 109.2}
	got, err := Normalize(mustSeries(t, in...), ZScore)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-1.202038, -0.735894, -0.601852, 0.278419, 1.222711, 1.038654}
	for i := range want {
		if math.Abs(got.Values[i]-want[i]) > 1e-5 {
			t.Errorf("cell %d = %v, want %v", i, got.Values[i], want[i])
		}
	}
}

func TestNormalizeDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		in     []float64
		method NormMethod
	}{
		{"minmax constant", []float64{4, 4, 4}, MinMax},
		{"minmax all missing", []float64{nan, nan}, MinMax},
		{"z constant", []float64{2, 2}, ZScore},
		{"z single value", []float64{2, nan}, ZScore},
		{"minmax infinite", []float64{1, math.Inf(1), 3}, MinMax},
		{"minmax negative infinite", []float64{math.Inf(-1), 2}, MinMax},
		{"z infinite", []float64{1, math.Inf(1), 3}, ZScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(mustSeries(t, tt.in...), tt.method)
			if !errors.Is(err, ErrZeroDenominator) {
				t.Errorf("expected ErrZeroDenominator, got %v", err)
			}
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	if _, err := Normalize(&Series[int]{}, MinMax); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
	if _, err := Normalize(mustSeries(t, 1, 2), NormMethod("log")); !errors.Is(err, ErrUnknownNormMethod) {
		t.Errorf("expected ErrUnknownNormMethod, got %v", err)
	}
}

func TestNormalizePreservesIndex(t *testing.T) {
	s, _ := New("close", []string{"c", "a", "b"}, []float64{3, 1, 2})
	got, err := Normalize(s, MinMax)
	if err != nil {
		t.Fatal(err)
	}
	for i, k := range []string{"c", "a", "b"} {
		if got.Index[i] != k {
			t.Errorf("index %d = %q, want %q", i, got.Index[i], k)
		}
	}
	if got.Name != "close" {
		t.Errorf("name = %q", got.Name)
	}
}
