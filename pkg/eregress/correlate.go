package eregress

import(
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/abworrall/hdr-roundtrip/pkg/etable"
)

// Correlation is the Pearson r between two columns. It is NaN if either
// column is constant.
func Correlation(t *etable.Table, a, b string) (float64, error) {
	xs, err := t.Floats(a)
	if err != nil {
		return 0, err
	}
	ys, err := t.Floats(b)
	if err != nil {
		return 0, err
	}
	return stat.Correlation(xs, ys, nil), nil
}

// CorrelationMatrix is the pairwise Pearson r between the columns, in
// the order given.
func CorrelationMatrix(t *etable.Table, cols []string) (*mat.SymDense, error) {
	if t.Len() < 2 || len(cols) == 0 {
		return nil, fmt.Errorf("correlation matrix needs 2+ rows and 1+ columns, got %d x %v", t.Len(), cols)
	}
	data := mat.NewDense(t.Len(), len(cols), nil)
	for j, c := range cols {
		vals, err := t.Floats(c)
		if err != nil {
			return nil, err
		}
		data.SetCol(j, vals)
	}

	corr := mat.NewSymDense(len(cols), nil)
	stat.CorrelationMatrix(corr, data, nil)
	return corr, nil
}
