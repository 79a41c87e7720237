// Package histogram renders one miniature distribution image per numeric column.
package histogram

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bin bounds for the adaptive bin count.
const (
	MinBins = 4
	MaxBins = 30
)

// Bin is one equal-width histogram bin. Every bin is [Lo, Hi) except the last,
// which also holds Hi.
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// BinCount returns clamp(round(2*sqrt(n)), MinBins, MaxBins), or 0 when there is
// nothing to plot.
func BinCount(n int) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Round(2 * math.Sqrt(float64(n))))
	if k < MinBins {
		return MinBins
	}
	if k > MaxBins {
		return MaxBins
	}
	return k
}

// Range returns the plotted interval of values: [min, max], widened around v
// when every value equals v.
func Range(values []float64) (lo, hi float64) {
	lo, hi = floats.Min(values), floats.Max(values)
	if lo == hi {
		return widen(lo)
	}
	return lo, hi
}

// widen returns a non-empty interval centred on c: +-0.5, or a small fraction
// of |c| when 0.5 is below float64 resolution there.
func widen(c float64) (lo, hi float64) {
	half := math.Max(0.5, math.Abs(c)*1e-6)
	return math.Max(c-half, -math.MaxFloat64), math.Min(c+half, math.MaxFloat64)
}

// edges returns k+1 strictly increasing bin edges from lo to hi, or false when
// float64 cannot separate them.
func edges(lo, hi float64, k int) ([]float64, bool) {
	d := make([]float64, k+1)
	if span := hi - lo; !math.IsInf(span, 0) {
		floats.Span(d, lo, hi)
	} else {
		// hi-lo overflows; interpolate so no intermediate leaves the float64 range.
		for i := range d {
			f := float64(i) / float64(k)
			d[i] = lo*(1-f) + hi*f
		}
	}
	d[0], d[k] = lo, hi
	for i := 1; i <= k; i++ {
		if !(d[i] > d[i-1]) || math.IsInf(d[i], 0) {
			return nil, false
		}
	}
	return d, true
}

// Compute sorts values into k equal-width bins over Range(values). A range too
// narrow to split into k bins is widened around its midpoint. It returns nil for
// an empty input or k < 1.
func Compute(values []float64, k int) []Bin {
	if len(values) == 0 || k < 1 {
		return nil
	}
	lo, hi := Range(values)
	dividers, ok := edges(lo, hi, k)
	if !ok {
		lo, hi = widen(lo/2 + hi/2)
		if dividers, ok = edges(lo, hi, k); !ok {
			return nil
		}
	}
	// stat.Histogram bins are half-open; nudge the top edge so max lands in the last bin.
	dividers[k] = math.Nextafter(hi, math.Inf(1))

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	counts := stat.Histogram(nil, dividers, sorted, nil)

	bins := make([]Bin, k)
	for i := range bins {
		bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	bins[k-1].Hi = hi
	return bins
}

// Total returns the number of values across bins.
func Total(bins []Bin) int {
	n := 0
	for _, b := range bins {
		n += b.Count
	}
	return n
}
