package emath

import(
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func randomValues(seed uint32, n int, scale float64) []float64 {
	var rng fastrand.RNG
	rng.Seed(seed)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = scale * float64(rng.Uint32n(1<<20)) / float64(1<<20)
	}
	return xs
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		xs   []float64
		q    float64
		want float64
	}{
		{[]float64{1, 2, 3, 4}, 0.5, 2.5},
		{[]float64{4, 3, 2, 1}, 0.0, 1},
		{[]float64{4, 3, 2, 1}, 1.0, 4},
		{[]float64{0.01, 1, 100}, 0.999, 99.802},
		{[]float64{0.01, 1, 100}, 0.001, 0.01198},
		{[]float64{7}, 0.3, 7},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Quantile(tt.xs, tt.q), 1e-9, "q=%v of %v", tt.q, tt.xs)
	}

	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestQuantileDoesNotModifyInput(t *testing.T) {
	xs := []float64{3, 1, 2}
	Quantiles(xs, 0.1, 0.9)
	assert.Equal(t, []float64{3, 1, 2}, xs)
}

func TestBackendsAgree(t *testing.T) {
	xs := randomValues(42, 1001, 50)
	g, s := GonumBackend{}, ScalarBackend{}

	assert.InDelta(t, s.Sum(xs), g.Sum(xs), 1e-9)
	assert.InDelta(t, s.Mean(xs), g.Mean(xs), 1e-12)
	assert.InDelta(t, s.StdDev(xs), g.StdDev(xs), 1e-9)

	qs := []float64{0.001, 0.05, 0.5, 0.95, 0.999}
	if diff := cmp.Diff(s.Quantiles(xs, qs...), g.Quantiles(xs, qs...), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("quantiles differ (-scalar +gonum):\n%s", diff)
	}

	m := Mat3{0.4124, 0.3576, 0.1805, 0.2126, 0.7152, 0.0722, 0.0193, 0.1192, 0.9505}
	src := randomValues(7, 300, 10)
	dstS := make([]float64, len(src))
	dstG := make([]float64, len(src))
	s.MatMul3(m, src, dstS)
	g.MatMul3(m, src, dstG)
	if diff := cmp.Diff(dstS, dstG, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("matmul differs (-scalar +gonum):\n%s", diff)
	}
}

func TestMatMul3InPlace(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5, 6}
	want := []float64{1, 2, 3, 4, 5, 6}
	GonumBackend{}.MatMul3(IdentityMat3(), xs, xs)
	assert.Equal(t, want, xs)
}

func TestStdDevIsUnbiased(t *testing.T) {
	for _, b := range []Backend{GonumBackend{}, ScalarBackend{}} {
		// mean 2, squared deviations sum to 2, n-1 = 2
		assert.InDelta(t, 1.0, b.StdDev([]float64{1, 2, 3}), 1e-12, b.Name())
	}
}

func TestNewBackend(t *testing.T) {
	for _, name := range Backends {
		b, err := NewBackend(name)
		require.NoError(t, err)
		assert.Equal(t, name, b.Name())
	}

	b, err := NewBackend("")
	require.NoError(t, err)
	assert.Equal(t, "gonum", b.Name())

	_, err = NewBackend("cuda")
	assert.Error(t, err)
}

func TestFloatGrid(t *testing.T) {
	g := NewFloatGridFrom(3, []float64{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 3, g.Dx())
	assert.Equal(t, 2, g.Dy())
	assert.Equal(t, 6.0, g.Get(2, 1))

	g.Set(0, 1, 10)
	assert.Equal(t, 10.0, g.Values()[3])

	sq := g.Map(func(v float64) float64 { return v * v })
	assert.Equal(t, 100.0, sq.Get(0, 1))
	assert.Equal(t, 10.0, g.Get(0, 1), "Map must not modify the source")

	min, max := g.MinMax()
	assert.Equal(t, 1.0, min)
	assert.Equal(t, 10.0, max)
	assert.Equal(t, "3x2 range [1, 10] mean 4.5", g.Stats())

	assert.Panics(t, func() { NewFloatGridFrom(4, []float64{1, 2, 3}) })
}

func TestFloatGridDownUpSample(t *testing.T) {
	g := NewFloatGridFrom(4, []float64{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	})
	small := g.DownSample()
	assert.Equal(t, []float64{1, 2, 3, 4}, small.Values())

	big := g.NewFromThis()
	small.UpSampleInto(&big)
	assert.Equal(t, g.Values(), big.Values())
}

func TestHeatmapColor(t *testing.T) {
	assert.Equal(t, heatmapStops[0], HeatmapColor(-1))
	assert.Equal(t, heatmapStops[2], HeatmapColor(2))

	mid := HeatmapColor(0.5)
	assert.InDelta(t, heatmapStops[1].R, mid.R, 1e-6)
}

func TestGridImages(t *testing.T) {
	dir := t.TempDir()
	g := NewFloatGridFrom(16, randomValues(3, 16*8, 1))

	require.NoError(t, g.ToImg("gray", filepath.Join(dir, "gray.png")))
	require.NoError(t, g.ToHeatmap("heat", filepath.Join(dir, "heat.png")))
	assert.FileExists(t, filepath.Join(dir, "heat.png"))
}

func TestGamma(t *testing.T) {
	for _, f := range []float64{0, 0.001, 0.2, 0.5, 1} {
		assert.InDelta(t, f, GammaLinearize_F64(GammaExpand_F64(f)), 1e-9)
	}
}

func TestDescribeHost(t *testing.T) {
	assert.Contains(t, DescribeHost(ScalarBackend{}), "backend=scalar")
}
