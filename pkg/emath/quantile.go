package emath

import(
	"math"
	"sort"
)

// Quantile returns the q'th quantile of xs, linearly interpolating
// between the two nearest order statistics at position q*(n-1). xs is
// not modified. Returns NaN for an empty input.
func Quantile(xs []float64, q float64) float64 {
	return Quantiles(xs, q)[0]
}

// Quantiles is like Quantile, but sorts just once for all the qs.
func Quantiles(xs []float64, qs ...float64) []float64 {
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	ret := make([]float64, len(qs))
	for i, q := range qs {
		ret[i] = QuantileSorted(sorted, q)
	}
	return ret
}

// QuantileSorted expects `sorted` to be in ascending order.
func QuantileSorted(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if q <= 0 { return sorted[0] }
	if q >= 1 { return sorted[n-1] }

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)

	return sorted[lo] + (sorted[hi] - sorted[lo]) * frac
}
