// Package eregress fits polynomial ridge regressions of an error
// column against scene features, and reports how well the features
// explain the error.
//
// The model is standardize -> polynomial expansion -> ridge, with an
// unpenalized intercept. It is scored by R^2 on the training data, and
// by the mean R^2 over contiguous, unshuffled K folds.
package eregress

import(
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/abworrall/hdr-roundtrip/pkg/etable"
)

type Result struct {
	R2           float64
	CVR2         float64
	Coefficients []float64 // one per expanded feature, in standardized units
	Intercept    float64
	FeatureNames []string
}

func (r Result)String() string {
	return fmt.Sprintf("R2=%.4f CV_R2=%.4f over %d terms", r.R2, r.CVR2, len(r.FeatureNames))
}

// SummaryTable is the single row r2,cv_r2 table.
func (r Result)SummaryTable() *etable.Table {
	t := etable.New("r2", "cv_r2")
	t.Append(r.R2, r.CVR2)
	return t
}

// CoefficientTable lists each term with its coefficient, then the
// intercept.
func (r Result)CoefficientTable() *etable.Table {
	t := etable.New("feature", "coefficient")
	for i, name := range r.FeatureNames {
		t.Append(name, r.Coefficients[i])
	}
	t.Append("intercept", r.Intercept)
	return t
}

// Run regresses the target column against the feature columns.
func Run(t *etable.Table, features []string, target string, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if len(features) == 0 {
		return Result{}, fmt.Errorf("regression needs at least one feature: %w", ErrBadConfig)
	}

	X, y, err := extract(t, features, target)
	if err != nil {
		return Result{}, err
	}
	if len(y) < cfg.KFolds {
		return Result{}, fmt.Errorf("regression: %d rows is fewer than k_folds=%d", len(y), cfg.KFolds)
	}

	sc := fitScaler(X)
	terms := polyTerms(len(features), cfg.PolynomialDegree)
	P := make([][]float64, len(X))
	for i, row := range X {
		z := sc.transform(row)
		P[i] = make([]float64, len(terms))
		for j, tm := range terms {
			P[i][j] = tm.eval(z)
		}
	}

	res := Result{}
	for _, tm := range terms {
		res.FeatureNames = append(res.FeatureNames, tm.name(features))
	}

	m, err := fitLinear(P, y, cfg.alpha())
	if err != nil {
		return Result{}, err
	}
	res.Coefficients = m.coef
	res.Intercept = m.intercept
	res.R2 = R2(y, m.predictAll(P))

	sum := 0.0
	for _, f := range kFolds(len(y), cfg.KFolds) {
		trainP, trainY, testP, testY := f.split(P, y)
		fm, err := fitLinear(trainP, trainY, cfg.alpha())
		if err != nil {
			return Result{}, fmt.Errorf("fold [%d,%d): %v", f.lo, f.hi, err)
		}
		sum += R2(testY, fm.predictAll(testP))
	}
	res.CVR2 = sum / float64(cfg.KFolds)

	return res, nil
}

func extract(t *etable.Table, features []string, target string) ([][]float64, []float64, error) {
	y, err := t.Floats(target)
	if err != nil {
		return nil, nil, fmt.Errorf("regression target: %w", err)
	}
	X := make([][]float64, len(y))
	for i := range X {
		X[i] = make([]float64, len(features))
	}
	for j, name := range features {
		col, err := t.Floats(name)
		if err != nil {
			return nil, nil, fmt.Errorf("regression feature: %w", err)
		}
		for i, v := range col {
			X[i][j] = v
		}
	}
	return X, y, nil
}

// {{{ linear model

type linearModel struct {
	coef      []float64
	intercept float64
}

func (lm linearModel)predict(x []float64) float64 {
	v := lm.intercept
	for j, c := range lm.coef {
		v += c * x[j]
	}
	return v
}

func (lm linearModel)predictAll(X [][]float64) []float64 {
	ret := make([]float64, len(X))
	for i, x := range X {
		ret[i] = lm.predict(x)
	}
	return ret
}

// fitLinear solves min |y - b - Xw|^2 + alpha |w|^2. Centering X and y
// first keeps the intercept b out of the penalty. With alpha==0 this is
// ordinary least squares, solved via SVD so that rank deficient inputs
// get the minimum norm solution.
func fitLinear(X [][]float64, y []float64, alpha float64) (linearModel, error) {
	n, p := len(X), len(X[0])

	xMean := make([]float64, p)
	yMean := 0.0
	for i := range X {
		for j := range xMean {
			xMean[j] += X[i][j]
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	xc := mat.NewDense(n, p, nil)
	yc := mat.NewVecDense(n, nil)
	for i := range X {
		for j := range xMean {
			xc.Set(i, j, X[i][j] - xMean[j])
		}
		yc.SetVec(i, y[i] - yMean)
	}

	w := mat.NewVecDense(p, nil)
	solved := false
	if alpha > 0 {
		var ata mat.SymDense
		ata.SymOuterK(1, xc.T())
		for j:=0; j<p; j++ {
			ata.SetSym(j, j, ata.At(j, j) + alpha)
		}
		var aty mat.VecDense
		aty.MulVec(xc.T(), yc)

		var chol mat.Cholesky
		if chol.Factorize(&ata) {
			if err := chol.SolveVecTo(w, &aty); err == nil {
				solved = true
			}
		}
	}

	if !solved {
		var svd mat.SVD
		if !svd.Factorize(xc, mat.SVDThin) {
			return linearModel{}, fmt.Errorf("least squares: SVD failed to factorize %dx%d", n, p)
		}
		rank := svd.Rank(1e-12)
		if rank == 0 {
			// Every feature is constant; the best fit is the mean
			w.Zero()
		} else {
			svd.SolveVecTo(w, yc, rank)
		}
	}

	lm := linearModel{coef: make([]float64, p), intercept: yMean}
	for j:=0; j<p; j++ {
		lm.coef[j] = w.AtVec(j)
		lm.intercept -= lm.coef[j] * xMean[j]
	}
	return lm, nil
}

// }}}

// R2 is the coefficient of determination. A constant truth scores 1
// when predicted exactly, and 0 otherwise.
func R2(truth, pred []float64) float64 {
	mean := 0.0
	for _, v := range truth {
		mean += v
	}
	mean /= float64(len(truth))

	ssRes, ssTot := 0.0, 0.0
	for i, v := range truth {
		ssRes += (v - pred[i]) * (v - pred[i])
		ssTot += (v - mean) * (v - mean)
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// {{{ kFolds

type fold struct {
	lo, hi int // the test rows
}

// kFolds splits n rows into k contiguous folds; the first n%k folds
// get one extra row.
func kFolds(n, k int) []fold {
	folds := make([]fold, k)
	lo := 0
	for i := range folds {
		size := n / k
		if i < n % k {
			size++
		}
		folds[i] = fold{lo, lo + size}
		lo += size
	}
	return folds
}

func (f fold)split(X [][]float64, y []float64) ([][]float64, []float64, [][]float64, []float64) {
	trainX, trainY := [][]float64{}, []float64{}
	for i := range X {
		if i < f.lo || i >= f.hi {
			trainX = append(trainX, X[i])
			trainY = append(trainY, y[i])
		}
	}
	return trainX, trainY, X[f.lo:f.hi], y[f.lo:f.hi]
}

// }}}
