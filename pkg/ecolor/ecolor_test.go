package ecolor

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

func solid(w, h int, r, g, b float64) eimage.Image {
	img := eimage.New(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			img.SetRGB(x, y, r, g, b)
		}
	}
	return img
}

func TestLuminance(t *testing.T) {
	img := eimage.New(3, 1)
	img.SetRGB(0, 0, 1, 0, 0)
	img.SetRGB(1, 0, 0, 1, 0)
	img.SetRGB(2, 0, 100, 100, 100)

	lum := Luminance(img)
	require.Equal(t, 3, lum.Dx())
	assert.InDelta(t, 0.2126, lum.Get(0, 0), 1e-12)
	assert.InDelta(t, 0.7152, lum.Get(1, 0), 1e-12)
	assert.InDelta(t, 100.0, lum.Get(2, 0), 1e-9, "no clamping above 1")
}

func TestPUEncode(t *testing.T) {
	for _, peak := range []float64{100, 400, 1000, 4000} {
		assert.InDelta(t, 1.0, PUEncode(peak, peak), 1e-12, "peak %v", peak)
	}

	assert.InDelta(t, 0.7298719192563994, PUEncode(100, 1000), 1e-12)

	// Everything at or below the floor encodes the same
	floor := 0.0005855713609388421
	assert.InDelta(t, floor, PUEncode(0, 1000), 1e-12)
	assert.InDelta(t, floor, PUEncode(-5, 1000), 1e-12)
	assert.InDelta(t, floor, PUEncode(1e-3, 1000), 1e-12)

	assert.Greater(t, PUEncode(2000, 1000), 1.0, "brighter than peak goes mildly above 1")

	prev := PUEncode(0.01, 1000)
	for l := 0.02; l < 5000; l *= 1.5 {
		cur := PUEncode(l, 1000)
		assert.Greater(t, cur, prev)
		prev = cur
	}
}

func TestPUEncodeGrid(t *testing.T) {
	g := emath.NewFloatGridFrom(2, []float64{1000, 100})
	pu := PUEncodeGrid(g, 1000)
	assert.InDelta(t, 1.0, pu.Get(0, 0), 1e-12)
	assert.Equal(t, 1000.0, g.Get(0, 0))
}

func TestRGBToXYZ(t *testing.T) {
	white := solid(2, 2, 1, 1, 1)
	for _, be := range []emath.Backend{emath.GonumBackend{}, emath.ScalarBackend{}} {
		xyz := RGBToXYZWith(be, white)
		assert.InDelta(t, 0.9505, xyz.Pix[0], 1e-4, be.Name())
		assert.InDelta(t, 1.0000, xyz.Pix[1], 1e-4, be.Name())
		assert.InDelta(t, 1.0890, xyz.Pix[2], 1e-4, be.Name())
	}
}

func TestChromaticity(t *testing.T) {
	x, y := Chromaticity(emath.Vec3{0, 0, 0})
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
	assert.False(t, math.IsNaN(x))
}

func TestChromaticityError(t *testing.T) {
	red := solid(3, 2, 1, 0, 0)
	blue := solid(3, 2, 0, 0, 1)

	assert.Equal(t, 0.0, ChromaticityError(red, red))
	assert.InDelta(t, 0.3130372095453424, ChromaticityError(red, blue), 1e-9)
	assert.InDelta(t, ChromaticityError(red, blue), ChromaticityErrorWith(emath.ScalarBackend{}, blue, red), 1e-12)

	// Chromaticity ignores intensity
	assert.InDelta(t, 0.0, ChromaticityError(red, solid(3, 2, 50, 0, 0)), 1e-12)

	assert.Panics(t, func() { ChromaticityError(red, solid(2, 2, 1, 0, 0)) })
}

func TestMeanDeltaE2000(t *testing.T) {
	gray := solid(2, 2, 0.5, 0.5, 0.5)
	assert.InDelta(t, 0.0, MeanDeltaE2000(gray, gray), 1e-9)

	red := solid(2, 2, 1, 0, 0)
	assert.Greater(t, MeanDeltaE2000(gray, red), 0.1)
}

func TestSuprathresholdContrast(t *testing.T) {
	// log10 values are -1, 0, 1
	lum := emath.NewFloatGridFrom(3, []float64{0.1, 1, 10})
	assert.InDelta(t, 1.0, SuprathresholdContrast(emath.GonumBackend{}, lum), 1e-12)

	flat := emath.NewFloatGridFrom(2, []float64{0, -1})
	assert.InDelta(t, 0.0, SuprathresholdContrast(emath.ScalarBackend{}, flat), 1e-12, "both floored to 1e-6")
}
