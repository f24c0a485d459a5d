package eplot

import(
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"

	"github.com/abworrall/hdr-roundtrip/pkg/etable"
)

func results(n int) *etable.Table {
	var rng fastrand.RNG
	rng.Seed(3)
	t := etable.New("scene", "dynamic_range", "log_std", "pu_error")
	for i:=0; i<n; i++ {
		dr := float64(rng.Uint32n(1000)) / 100
		ls := float64(rng.Uint32n(1000)) / 1000
		t.Append("s", dr, ls, 0.01*dr + 0.001*float64(rng.Uint32n(10)))
	}
	return t
}

func assertPNG(t *testing.T, filename string) {
	t.Helper()
	f, err := os.Open(filename)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 100)
}

func TestFigures(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	tbl := results(40)

	corr := filepath.Join(dir, "correlation_matrix.png")
	require.NoError(t, CorrelationMatrix(tbl, []string{"dynamic_range", "log_std", "pu_error"}, corr))
	assertPNG(t, corr)

	dist := filepath.Join(dir, "pu_error_distribution.png")
	require.NoError(t, ErrorDistribution(tbl, "pu_error", dist))
	assertPNG(t, dist)

	scatter := filepath.Join(dir, "pu_error_vs_dynamic_range.png")
	require.NoError(t, ErrorVsFeature(tbl, "dynamic_range", "pu_error", scatter))
	assertPNG(t, scatter)
}

func TestFigureErrors(t *testing.T) {
	dir := t.TempDir()
	tbl := results(5)

	assert.Error(t, ErrorDistribution(tbl, "rmse", filepath.Join(dir, "x.png")))
	assert.Error(t, ErrorVsFeature(tbl, "shadow_ratio", "pu_error", filepath.Join(dir, "y.png")))
	assert.Error(t, CorrelationMatrix(tbl, []string{"scene"}, filepath.Join(dir, "z.png")))
	assert.Error(t, ErrorDistribution(etable.New("pu_error"), "pu_error", filepath.Join(dir, "w.png")))
}
