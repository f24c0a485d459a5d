package emetrics

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fastrand"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

func randomHDR(seed uint32, w, h int) eimage.Image {
	var rng fastrand.RNG
	rng.Seed(seed)
	img := eimage.New(w, h)
	for i := range img.Pix {
		img.Pix[i] = math.Pow(10, -2 + 5*float64(rng.Uint32n(1<<16))/float64(1<<16))
	}
	return img
}

var backends = []Metrics{New(emath.GonumBackend{}), New(emath.ScalarBackend{})}

func TestSelfComparisonIsZero(t *testing.T) {
	a := randomHDR(1, 12, 9)
	for _, m := range backends {
		name := m.Backend.Name()
		assert.Equal(t, 0.0, m.RMSE(a, a), name)
		assert.Equal(t, 0.0, m.LogRMSE(a, a), name)
		assert.Equal(t, 0.0, m.DynamicRangeError(a, a), name)
		for _, peak := range []float64{100, 400, 1000} {
			assert.Equal(t, 0.0, m.PUError(a, a, peak), name)
		}
	}
}

func TestRMSE(t *testing.T) {
	a := eimage.NewFilled(2, 2, 1.0)
	b := eimage.NewFilled(2, 2, 3.0)
	assert.InDelta(t, 2.0, RMSE(a, b), 1e-12)

	x, y := randomHDR(2, 8, 8), randomHDR(3, 8, 8)
	for _, m := range backends {
		assert.InDelta(t, m.RMSE(x, y), m.RMSE(y, x), 1e-12, "symmetric")
	}
	assert.InDelta(t, backends[0].RMSE(x, y), backends[1].RMSE(x, y), 1e-9)
}

func TestLogRMSE(t *testing.T) {
	a := eimage.NewFilled(1, 1, 10.0)
	b := eimage.NewFilled(1, 1, 1000.0)
	assert.InDelta(t, 2.0, LogRMSE(a, b), 1e-12)

	zero := eimage.NewFilled(1, 1, 0.0)
	neg := eimage.NewFilled(1, 1, -4.0)
	assert.Equal(t, 0.0, LogRMSE(zero, neg), "both floor to 1e-6")
	assert.InDelta(t, 6.0, LogRMSE(zero, eimage.NewFilled(1, 1, 1.0)), 1e-12)
}

func TestPUError(t *testing.T) {
	peak := 1000.0
	a := eimage.NewFilled(2, 1, peak)     // encodes to exactly 1
	b := eimage.NewFilled(2, 1, 0.0)      // encodes to the floor
	floor := 0.0005855713609388421
	want := (1 - floor) * (1 - floor)
	assert.InDelta(t, want, PUError(a, b, peak), 1e-12)

	x, y := randomHDR(4, 10, 10), randomHDR(5, 10, 10)
	errMap := Default.PUErrorMap(x, y, peak)
	assert.Equal(t, 10, errMap.Dx())
	assert.InDelta(t, PUError(x, y, peak), Default.Backend.Mean(errMap.Values()), 1e-15)
	assert.InDelta(t, PUError(x, y, peak), PUError(y, x, peak), 1e-15)
}

func TestPUErrorUsesLuminanceOnly(t *testing.T) {
	// Same luminance, different colors
	a := eimage.New(1, 1)
	a.SetRGB(0, 0, 1, 0, 0)
	b := eimage.New(1, 1)
	b.SetRGB(0, 0, 0, 0.2126/0.7152, 0)

	assert.InDelta(t, 0.0, PUError(a, b, DefaultPeak), 1e-15)
	assert.Greater(t, RMSE(a, b), 0.5)
}

func TestDynamicRangeError(t *testing.T) {
	a := eimage.NewFilled(4, 4, 100.0)
	b := eimage.NewFilled(4, 4, 1.0)
	assert.InDelta(t, 2.0, DynamicRangeError(a, b), 1e-6)
	assert.InDelta(t, 2.0, DynamicRangeError(b, a), 1e-6)

	black := eimage.NewFilled(4, 4, 0.0)
	assert.False(t, math.IsInf(DynamicRangeError(black, b), 0))
	assert.InDelta(t, 6.0, DynamicRangeError(black, b), 1e-5)

	x, y := randomHDR(6, 20, 20), randomHDR(7, 20, 20)
	assert.InDelta(t, backends[0].DynamicRangeError(x, y), backends[1].DynamicRangeError(x, y), 1e-12)
}

func TestShapeMismatchPanics(t *testing.T) {
	a := eimage.NewFilled(2, 2, 1.0)
	b := eimage.NewFilled(2, 3, 1.0)
	assert.Panics(t, func() { RMSE(a, b) })
	assert.Panics(t, func() { PUError(a, b, DefaultPeak) })
	assert.Panics(t, func() { DynamicRangeError(a, b) })
}
