package ecolor

import(
	"math"

	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

// SuprathresholdContrast is the spread (std dev) of log10 luminance,
// with luminance floored at 1e-6.
func SuprathresholdContrast(be emath.Backend, lum emath.FloatGrid) float64 {
	logL := lum.Map(func(l float64) float64 {
		return math.Log10(emath.MaxOf2(l, 1e-6))
	})
	return be.StdDev(logL.Values())
}
