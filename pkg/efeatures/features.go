// Package efeatures describes the shape of a scene's luminance
// distribution, with a handful of scale invariant numbers.
package efeatures

import(
	"fmt"
	"math"

	"github.com/abworrall/hdr-roundtrip/pkg/ecolor"
	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

const eps = 1e-8

// Names are the feature column names, in the order they appear in
// every table.
var Names = []string{"dynamic_range", "log_std", "highlight_ratio", "shadow_ratio"}

// Features is computed once per scene, and never changed after.
type Features struct {
	DynamicRange   float64 `json:"dynamic_range"`   // log10 of the 99.9% / 0.1% luminance ratio; 0 for an all black scene
	LogStd         float64 `json:"log_std"`
	HighlightRatio float64 `json:"highlight_ratio"` // fraction of pixels above the scene's own 95th percentile
	ShadowRatio    float64 `json:"shadow_ratio"`    // fraction of pixels below the 5th
}

func (f Features)String() string {
	return fmt.Sprintf("dr=%.3f logstd=%.3f hi=%.4f lo=%.4f", f.DynamicRange, f.LogStd, f.HighlightRatio, f.ShadowRatio)
}

// Values returns the features in the same order as Names.
func (f Features)Values() []float64 {
	return []float64{f.DynamicRange, f.LogStd, f.HighlightRatio, f.ShadowRatio}
}

// Value looks up a feature by its column name.
func (f Features)Value(name string) (float64, bool) {
	for i, n := range Names {
		if n == name {
			return f.Values()[i], true
		}
	}
	return 0, false
}

func Extract(img eimage.Image) Features {
	return ExtractWith(emath.DefaultBackend(), img)
}

// ExtractWith computes the features from the luminance of img. Since
// the quantiles are per-scene, scaling the whole image leaves
// everything but the eps terms unchanged.
func ExtractWith(be emath.Backend, img eimage.Image) Features {
	lum := ecolor.Luminance(img)
	L := lum.Values()
	if len(L) == 0 {
		return Features{}
	}

	q := be.Quantiles(L, 0.001, 0.05, 0.95, 0.999)
	qLow, qShadow, qHigh, qTop := q[0], q[1], q[2], q[3]

	f := Features{}
	if qTop <= 0 {
		qTop = eps // all black; log10 of zero is -Inf
	}
	f.DynamicRange = math.Log10(qTop / (qLow + eps))

	logL := make([]float64, len(L))
	for i, l := range L {
		logL[i] = math.Log10(l + eps)
	}
	if len(logL) > 1 {
		f.LogStd = be.StdDev(logL)
	}

	above, below := make([]float64, len(L)), make([]float64, len(L))
	for i, l := range L {
		if l > qHigh { above[i] = 1 }
		if l < qShadow { below[i] = 1 }
	}
	f.HighlightRatio = be.Mean(above)
	f.ShadowRatio = be.Mean(below)

	return f
}
