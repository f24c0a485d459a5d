package eregress

import(
	"fmt"
	"math"
	"strings"
)

// A term is a monomial, listed as the (non-decreasing) feature indices
// that get multiplied together.
type term []int

// polyTerms lists every monomial of degree 1..degree over n features,
// in order of degree and then lexicographically; there is no constant
// term.
func polyTerms(n, degree int) []term {
	terms := []term{}
	var walk func(prefix term, start, left int)
	walk = func(prefix term, start, left int) {
		if left == 0 {
			terms = append(terms, append(term{}, prefix...))
			return
		}
		for i:=start; i<n; i++ {
			walk(append(prefix, i), i, left-1)
		}
	}
	for d:=1; d<=degree; d++ {
		walk(term{}, 0, d)
	}
	return terms
}

// name renders a term like "a", "a^2" or "a b".
func (tm term)name(features []string) string {
	parts := []string{}
	for i:=0; i<len(tm); {
		j := i
		for j < len(tm) && tm[j] == tm[i] {
			j++
		}
		if j-i == 1 {
			parts = append(parts, features[tm[i]])
		} else {
			parts = append(parts, fmt.Sprintf("%s^%d", features[tm[i]], j-i))
		}
		i = j
	}
	return strings.Join(parts, " ")
}

func (tm term)eval(x []float64) float64 {
	v := 1.0
	for _, i := range tm {
		v *= x[i]
	}
	return v
}

// {{{ scaler

// scaler standardizes each column to zero mean and unit (population)
// variance. Constant columns are only centered.
type scaler struct {
	mean, scale []float64
}

func fitScaler(X [][]float64) scaler {
	nf := len(X[0])
	s := scaler{mean: make([]float64, nf), scale: make([]float64, nf)}
	n := float64(len(X))
	for j:=0; j<nf; j++ {
		sum := 0.0
		for _, row := range X {
			sum += row[j]
		}
		s.mean[j] = sum / n

		ss := 0.0
		for _, row := range X {
			ss += (row[j] - s.mean[j]) * (row[j] - s.mean[j])
		}
		s.scale[j] = math.Sqrt(ss / n)
		if s.scale[j] == 0 {
			s.scale[j] = 1
		}
	}
	return s
}

func (s scaler)transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j] - s.mean[j]) / s.scale[j]
	}
	return out
}

// }}}
