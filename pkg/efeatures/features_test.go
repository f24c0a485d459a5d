package efeatures

import(
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastrand"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

// grayRow builds a 1-high image whose luminances are exactly lums.
func grayRow(lums ...float64) eimage.Image {
	img := eimage.New(len(lums), 1)
	for i, l := range lums {
		img.SetRGB(i, 0, l, l, l)
	}
	return img
}

func randomHDR(seed uint32, w, h int) eimage.Image {
	var rng fastrand.RNG
	rng.Seed(seed)
	img := eimage.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = math.Pow(10, -3 + 6*float64(rng.Uint32n(1<<16))/float64(1<<16))
	}
	return img
}

func TestThreePixels(t *testing.T) {
	f := Extract(grayRow(0.01, 1, 100))

	// q(.999) sits at position 1.998, q(.001) at 0.002
	top := 1 + 99*0.998
	low := 0.01 + 0.99*0.002
	assert.InDelta(t, math.Log10(top/(low+eps)), f.DynamicRange, 1e-9)
	assert.InDelta(t, 4.0, f.DynamicRange, 0.1)

	// log10 values are -2, 0, 2
	assert.InDelta(t, 2.0, f.LogStd, 1e-6)

	assert.InDelta(t, 1.0/3, f.HighlightRatio, 1e-12)
	assert.InDelta(t, 1.0/3, f.ShadowRatio, 1e-12)
}

func TestRatiosInRange(t *testing.T) {
	for seed := uint32(1); seed < 6; seed++ {
		f := Extract(randomHDR(seed, 40, 25))
		assert.GreaterOrEqual(t, f.HighlightRatio, 0.0)
		assert.LessOrEqual(t, f.HighlightRatio, 1.0)
		assert.GreaterOrEqual(t, f.ShadowRatio, 0.0)
		assert.LessOrEqual(t, f.ShadowRatio, 1.0)
		assert.GreaterOrEqual(t, f.DynamicRange, 0.0)

		// 1000 pixels, so the 95% boundary splits off about 50 of them
		assert.InDelta(t, 0.05, f.HighlightRatio, 0.002)
		assert.InDelta(t, 0.05, f.ShadowRatio, 0.002)
	}
}

func TestFlatScene(t *testing.T) {
	f := Extract(eimage.NewFilled(8, 8, 1.0))
	assert.InDelta(t, 0.0, f.DynamicRange, 1e-7)
	assert.InDelta(t, 0.0, f.LogStd, 1e-12)
	assert.Equal(t, 0.0, f.HighlightRatio)
	assert.Equal(t, 0.0, f.ShadowRatio)
}

func TestBlackScene(t *testing.T) {
	f := Extract(eimage.NewFilled(4, 4, 0.0))
	assert.False(t, math.IsNaN(f.DynamicRange))
	assert.Equal(t, 0.0, f.DynamicRange)
	assert.InDelta(t, 0.0, f.LogStd, 1e-12)

	// Near-black keeps the plain ratio, eps in the denominator only
	f = Extract(eimage.NewFilled(4, 4, 1e-9))
	assert.InDelta(t, -math.Log10(11), f.DynamicRange, 1e-9)
}

func TestScaleInvariance(t *testing.T) {
	img := randomHDR(7, 30, 30)
	brighter := img.Map(func(v float64) float64 { return v * 50 })

	a, b := Extract(img), Extract(brighter)
	assert.True(t, cmp.Equal(a, b, cmpopts.EquateApprox(0, 1e-4)), cmp.Diff(a, b))
}

func TestBackendsAgree(t *testing.T) {
	img := randomHDR(8, 17, 13)
	a := ExtractWith(emath.GonumBackend{}, img)
	b := ExtractWith(emath.ScalarBackend{}, img)
	assert.True(t, cmp.Equal(a, b, cmpopts.EquateApprox(0, 1e-9)), cmp.Diff(a, b))
}

func TestValue(t *testing.T) {
	f := Features{1, 2, 3, 4}
	for i, name := range Names {
		v, ok := f.Value(name)
		assert.True(t, ok)
		assert.Equal(t, float64(i+1), v)
	}
	_, ok := f.Value("contrast")
	assert.False(t, ok)
	assert.Equal(t, len(Names), len(f.Values()))
}
