package ecolor

import(
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

// MeanDeltaE2000 is the average CIEDE2000 color difference between two
// display-referred images. Channels are clipped to [0,1] first, so it
// only makes sense on LDR images (or HDR images scaled to the display).
func MeanDeltaE2000(a, b eimage.Image) float64 {
	if !a.SameShape(b) {
		panic(fmt.Sprintf("ecolor: deltaE of %s vs %s", a, b))
	}

	n := a.W * a.H
	if n == 0 {
		return math.NaN()
	}

	sum := 0.0
	for i:=0; i<n; i++ {
		ca := colorful.LinearRgb(emath.Clamp01(a.Pix[3*i]), emath.Clamp01(a.Pix[3*i+1]), emath.Clamp01(a.Pix[3*i+2]))
		cb := colorful.LinearRgb(emath.Clamp01(b.Pix[3*i]), emath.Clamp01(b.Pix[3*i+1]), emath.Clamp01(b.Pix[3*i+2]))
		sum += ca.DistanceCIEDE2000(cb)
	}

	return sum / float64(n)
}
