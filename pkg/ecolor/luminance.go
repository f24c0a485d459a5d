package ecolor

import(
	"math"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

var(
	// BT.709 luminance weights for linear R, G, B
	LuminanceWeights = emath.Vec3{0.2126, 0.7152, 0.0722}
)

const(
	puFloor      = 1e-6
	puSlope      = 5000.0
)

var puNorm = math.Log10(1 + puSlope)

// Luminance returns the luminance map of a linear RGB image. No
// clamping is done, so HDR values come through above 1.0.
func Luminance(img eimage.Image) emath.FloatGrid {
	lum := make([]float64, img.W*img.H)
	w := LuminanceWeights
	for i := range lum {
		lum[i] = w[0]*img.Pix[3*i] + w[1]*img.Pix[3*i+1] + w[2]*img.Pix[3*i+2]
	}
	return emath.NewFloatGridFrom(img.W, lum)
}

// PUEncode maps a luminance onto a perceptually-uniform-ish code,
// given the peak luminance of the display. A luminance equal to the
// peak encodes to exactly 1.
func PUEncode(lum, peakNits float64) float64 {
	l := lum / peakNits
	if l < puFloor {
		l = puFloor
	}
	return math.Log10(1 + puSlope*l) / puNorm
}

// PUEncodeGrid applies PUEncode to every value in the grid.
func PUEncodeGrid(lum emath.FloatGrid, peakNits float64) emath.FloatGrid {
	return lum.Map(func(l float64) float64 { return PUEncode(l, peakNits) })
}
