// Package emetrics scores an HDR reconstruction against the original.
//
// Every metric is a pure function of its inputs. The two images must
// have the same shape; anything else is a programming error, and
// panics.
package emetrics

import(
	"fmt"
	"math"

	"github.com/abworrall/hdr-roundtrip/pkg/ecolor"
	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

const(
	DefaultPeak = 1000.0 // nits
	logFloor    = 1e-6
	rangeEps    = 1e-6
	rangeQ      = 0.999
)

// Metrics computes the metrics on a particular numeric backend.
type Metrics struct {
	Backend emath.Backend
}

func New(be emath.Backend) Metrics {
	return Metrics{Backend: be}
}

// Default is used by the package level funcs.
var Default = New(emath.DefaultBackend())

func RMSE(a, b eimage.Image) float64 { return Default.RMSE(a, b) }
func LogRMSE(a, b eimage.Image) float64 { return Default.LogRMSE(a, b) }
func PUError(a, b eimage.Image, peak float64) float64 { return Default.PUError(a, b, peak) }
func DynamicRangeError(a, b eimage.Image) float64 { return Default.DynamicRangeError(a, b) }

func mustMatch(what string, a, b eimage.Image) {
	if !a.SameShape(b) {
		panic(fmt.Sprintf("emetrics: %s of %s vs %s", what, a, b))
	}
}

func (m Metrics)meanSquaredDiff(a, b []float64) float64 {
	sq := make([]float64, len(a))
	for i := range a {
		d := a[i] - b[i]
		sq[i] = d * d
	}
	return m.Backend.Mean(sq)
}

// RMSE is the root mean square difference over every channel of every
// pixel.
func (m Metrics)RMSE(a, b eimage.Image) float64 {
	mustMatch("rmse", a, b)
	return math.Sqrt(m.meanSquaredDiff(a.Pix, b.Pix))
}

// LogRMSE is RMSE in the log10 domain. Values are floored at 1e-6
// first, so zeros and negatives don't blow up.
func (m Metrics)LogRMSE(a, b eimage.Image) float64 {
	mustMatch("log_rmse", a, b)
	toLog := func(v float64) float64 { return math.Log10(emath.MaxOf2(v, logFloor)) }
	return math.Sqrt(m.meanSquaredDiff(a.Map(toLog).Pix, b.Map(toLog).Pix))
}

// PUErrorMap is the per-pixel squared difference between the PU
// encoded luminances of the two images.
func (m Metrics)PUErrorMap(a, b eimage.Image, peak float64) emath.FloatGrid {
	mustMatch("pu_error", a, b)
	puA := ecolor.PUEncodeGrid(ecolor.Luminance(a), peak)
	puB := ecolor.PUEncodeGrid(ecolor.Luminance(b), peak)

	out := puA.NewFromThis()
	va, vb, vo := puA.Values(), puB.Values(), out.Values()
	for i := range vo {
		vo[i] = (va[i] - vb[i]) * (va[i] - vb[i])
	}
	return out
}

// PUError is the mean squared difference between the PU encoded
// luminances, for a display of the given peak luminance. It is zero
// only for a perfect reconstruction.
func (m Metrics)PUError(a, b eimage.Image, peak float64) float64 {
	errMap := m.PUErrorMap(a, b, peak)
	return m.Backend.Mean(errMap.Values())
}

// DynamicRangeError compares the 99.9th percentile luminance of the
// two images, as the absolute log10 of their ratio.
func (m Metrics)DynamicRangeError(a, b eimage.Image) float64 {
	mustMatch("dynamic_range_error", a, b)
	lumA := ecolor.Luminance(a)
	lumB := ecolor.Luminance(b)
	qa := m.Backend.Quantiles(lumA.Values(), rangeQ)[0]
	qb := m.Backend.Quantiles(lumB.Values(), rangeQ)[0]

	return math.Abs(math.Log10((qa + rangeEps) / (qb + rangeEps)))
}
