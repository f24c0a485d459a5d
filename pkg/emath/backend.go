package emath

import(
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// A Backend does the bulk array math for the metrics and feature
// extractors. All backends must give the same answers (up to float
// rounding); they differ only in how they get there.
type Backend interface {
	Name() string

	Sum(xs []float64) float64
	Mean(xs []float64) float64
	StdDev(xs []float64) float64 // unbiased, i.e. divides by n-1
	Quantiles(xs []float64, qs ...float64) []float64

	// MatMul3 applies m to each consecutive triple of src, writing the
	// triples into dst. len(src) must equal len(dst), and be a multiple
	// of three.
	MatMul3(m Mat3, src, dst []float64)
}

var(
	Backends = []string{"gonum", "scalar"}
)

func ListBackends() string {
	return fmt.Sprintf("%v", Backends)
}

// NewBackend returns the named backend; the empty name gets the default.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", "gonum": return GonumBackend{}, nil
	case "scalar":    return ScalarBackend{}, nil
	}
	return nil, fmt.Errorf("no backend named '%s', wanted %s", name, ListBackends())
}

// DefaultBackend is what the package-level helpers in the metric
// packages use.
func DefaultBackend() Backend { return GonumBackend{} }

func checkTriples(src, dst []float64) {
	if len(src) != len(dst) || len(src) % 3 != 0 {
		panic(fmt.Sprintf("emath: MatMul3 wants equal lengths divisible by 3, got %d,%d", len(src), len(dst)))
	}
}

// {{{ ScalarBackend

// ScalarBackend is plain loops, with no dependencies.
type ScalarBackend struct{}

func (ScalarBackend)Name() string { return "scalar" }

func (ScalarBackend)Sum(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum
}

func (b ScalarBackend)Mean(xs []float64) float64 {
	return b.Sum(xs) / float64(len(xs))
}

func (b ScalarBackend)StdDev(xs []float64) float64 {
	mean := b.Mean(xs)
	ss := 0.0
	for _, x := range xs {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

func (ScalarBackend)Quantiles(xs []float64, qs ...float64) []float64 {
	return Quantiles(xs, qs...)
}

func (ScalarBackend)MatMul3(m Mat3, src, dst []float64) {
	checkTriples(src, dst)
	for i:=0; i<len(src); i+=3 {
		v := m.Apply(Vec3{src[i], src[i+1], src[i+2]})
		dst[i], dst[i+1], dst[i+2] = v[0], v[1], v[2]
	}
}

// }}}
// {{{ GonumBackend

// GonumBackend hands the work to gonum's floats, stat and mat packages.
type GonumBackend struct{}

func (GonumBackend)Name() string                  { return "gonum" }
func (GonumBackend)Sum(xs []float64) float64      { return floats.Sum(xs) }
func (GonumBackend)Mean(xs []float64) float64     { return stat.Mean(xs, nil) }
func (GonumBackend)StdDev(xs []float64) float64   { return stat.StdDev(xs, nil) }

// gonum's stat.Quantile places samples at i/n rather than i/(n-1), so
// it can't be used here.
func (GonumBackend)Quantiles(xs []float64, qs ...float64) []float64 {
	return Quantiles(xs, qs...)
}

func (GonumBackend)MatMul3(m Mat3, src, dst []float64) {
	checkTriples(src, dst)
	n := len(src) / 3
	if n == 0 {
		return
	}

	in := src
	if &src[0] == &dst[0] {
		in = make([]float64, len(src))
		copy(in, src)
	}

	// Pixels are rows, so out = in * m^T
	a := mat.NewDense(n, 3, in)
	mt := mat.NewDense(3, 3, []float64(m[:]))
	out := mat.NewDense(n, 3, dst)
	out.Mul(a, mt.T())
}

// }}}
