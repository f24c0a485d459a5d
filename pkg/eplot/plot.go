// Package eplot renders the diagnostic figures for a run's results
// table, as PNGs.
package eplot

import(
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/abworrall/hdr-roundtrip/pkg/eregress"
	"github.com/abworrall/hdr-roundtrip/pkg/etable"
)

var(
	Width  = 8 * vg.Inch
	Height = 6 * vg.Inch
	Bins   = 30
)

func save(p *plot.Plot, w, h vg.Length, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	if err := p.Save(w, h, filename); err != nil {
		return fmt.Errorf("save plot '%s': %v", filename, err)
	}
	return nil
}

// {{{ CorrelationMatrix

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Row 0 is
// drawn at the top, like a table.
type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid)Dims() (int, int)      { n := g.m.SymmetricDim(); return n, n }
func (g corrGrid)Z(c, r int) float64    { n := g.m.SymmetricDim(); return g.m.At(n-1-r, c) }
func (g corrGrid)X(c int) float64       { return float64(c) }
func (g corrGrid)Y(r int) float64       { return float64(r) }

// CorrelationMatrix draws the pairwise Pearson r between the columns as
// a heatmap, with each cell annotated with its value.
func CorrelationMatrix(t *etable.Table, cols []string, filename string) error {
	corr, err := eregress.CorrelationMatrix(t, cols)
	if err != nil {
		return err
	}
	n := len(cols)

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{corr}, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1

	p := plot.New()
	p.Title.Text = "Feature / error correlations"
	p.Add(hm)

	labels := plotter.XYLabels{}
	ticks := []plot.Tick{}
	for i:=0; i<n; i++ {
		for j:=0; j<n; j++ {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(j), Y: float64(n-1-i)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", corr.At(i, j)))
		}
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: cols[i]})
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}
	p.Add(l)

	yTicks := make([]plot.Tick, n)
	for i, tk := range ticks {
		yTicks[n-1-i] = plot.Tick{Value: float64(n-1-i), Label: tk.Label}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)

	return save(p, Width, Width, filename)
}

// }}}

// ErrorDistribution is a histogram of one column.
func ErrorDistribution(t *etable.Table, col, filename string) error {
	vals, err := t.Floats(col)
	if err != nil {
		return err
	}
	if len(vals) == 0 {
		return fmt.Errorf("no values in '%s' to plot", col)
	}

	h, err := plotter.NewHist(plotter.Values(vals), Bins)
	if err != nil {
		return fmt.Errorf("histogram of '%s': %v", col, err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", col)
	p.X.Label.Text = col
	p.Y.Label.Text = "count"
	p.Add(h)

	return save(p, Width, Height, filename)
}

// ErrorVsFeature scatters the error column against a feature, with the
// least squares line through them.
func ErrorVsFeature(t *etable.Table, feature, errCol, filename string) error {
	xs, err := t.Floats(feature)
	if err != nil {
		return err
	}
	ys, err := t.Floats(errCol)
	if err != nil {
		return err
	}

	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X, pts[i].Y = xs[i], ys[i]
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("scatter %s vs %s: %v", errCol, feature, err)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", errCol, feature)
	p.X.Label.Text = feature
	p.Y.Label.Text = errCol
	p.Add(sc)

	if len(xs) > 1 {
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		if !math.IsNaN(alpha) && !math.IsNaN(beta) {
			fit := plotter.NewFunction(func(x float64) float64 { return alpha + beta*x })
			fit.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(fit)
			p.Legend.Add(fmt.Sprintf("fit: %.3g + %.3g x", alpha, beta), fit)
			p.Legend.Top = true
		}
	}

	return save(p, Width, Height, filename)
}
