package fattal02

import(
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

func randomGrid(seed uint32, w, h int) emath.FloatGrid {
	var rng fastrand.RNG
	rng.Seed(seed)
	g := emath.NewFloatGrid(w, h)
	vals := g.Values()
	for i := range vals {
		vals[i] = float64(rng.Uint32n(10000)) / 10000.0
	}
	return g
}

func TestTransformsAreInverses(t *testing.T) {
	A := randomGrid(1, 7, 5)
	orig := A.Copy()

	B := transform_ev2normal(transform_normal2ev(A))
	for i, v := range orig.Values() {
		assert.InDelta(t, v, B.Values()[i], 1e-12)
	}
}

// laplacian assumes the boundary reflects about the edge pixel,
// U(-1) = U(1), which is what the DCT solver assumes.
func laplacian(U emath.FloatGrid) emath.FloatGrid {
	w, h := U.Dx(), U.Dy()
	reflect := func(i, n int) int {
		if i < 0 { return -i }
		if i >= n { return 2*(n-1) - i }
		return i
	}
	L := U.NewFromThis()
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			v := U.Get(reflect(x-1, w), y) + U.Get(reflect(x+1, w), y)
			v += U.Get(x, reflect(y-1, h)) + U.Get(x, reflect(y+1, h))
			L.Set(x, y, v - 4*U.Get(x, y))
		}
	}
	return L
}

func TestSolvePdeFft(t *testing.T) {
	U := randomGrid(2, 9, 6)
	F := laplacian(U)

	solved := SolvePdeFft(F, false)

	// Solutions are only unique up to a constant
	offset := solved.Get(0, 0) - U.Get(0, 0)
	for y:=0; y<U.Dy(); y++ {
		for x:=0; x<U.Dx(); x++ {
			assert.InDelta(t, U.Get(x, y) + offset, solved.Get(x, y), 1e-9, "(%d,%d)", x, y)
		}
	}

	_, max := solved.MinMax()
	assert.InDelta(t, 0.0, max, 1e-12, "solution is shifted to be non-positive")
}

func TestGetLambda(t *testing.T) {
	l := get_lambda(5)
	assert.Equal(t, 0.0, l[0])
	assert.InDelta(t, -4.0, l[4], 1e-12)
}

func TestPerform(t *testing.T) {
	img := eimage.New(32, 24)
	for y:=0; y<img.H; y++ {
		for x:=0; x<img.W; x++ {
			v := math.Pow(10, float64(x)/8.0) // four decades across the image
			img.SetRGB(x, y, v, v*0.8, v*0.6)
		}
	}

	op := NewDefaultFattal02(img)
	out := op.Perform()
	require.NotNil(t, out)
	assert.Equal(t, img.Bounds(), out.Bounds())

	// Brightness ordering survives the tonemapping, left to right
	lum := func(x int) uint32 { _, g, _, _ := out.At(x, img.H/2).RGBA(); return g }
	assert.Less(t, lum(2), lum(img.W-3))
}

func TestPerformFlatImage(t *testing.T) {
	op := NewDefaultFattal02(eimage.NewFilled(16, 16, 2.0))
	out := op.Perform()
	assert.Equal(t, 16, out.Bounds().Dx())
}
