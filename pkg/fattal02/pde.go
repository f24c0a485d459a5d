package fattal02

// Solves the Poisson PDE in the fattal02 implementation in PFSTMO,
// via the discrete cosine transform.
//
// PFSTMO uses fftw_plan_r2r_2d() with FFTW_REDFT00 in both dimensions.
// That is an unnormalized 2D DCT-I, which is exactly what gonum's
// fourier.DCT computes one dimension at a time, so no cgo is needed.

import(
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

// dct2d returns the unnormalized 2D DCT-I of A. Both dimensions must
// be at least 2.
func dct2d(A emath.FloatGrid) emath.FloatGrid {
	width  := A.Dx()
	height := A.Dy()
	T      := A.NewFromThis()
	src    := A.Values()
	dst    := T.Values()

	rows := fourier.NewDCT(width)
	for y:=0; y<height; y++ {
		rows.Transform(dst[y*width:(y+1)*width], src[y*width:(y+1)*width])
	}

	cols := fourier.NewDCT(height)
	in  := make([]float64, height)
	out := make([]float64, height)
	for x:=0; x<width; x++ {
		for y:=0; y<height; y++ {
			in[y] = T.Get(x,y)
		}
		cols.Transform(out, in)
		for y:=0; y<height; y++ {
			T.Set(x,y, out[y])
		}
	}

	return T
}

//////// Clones of routines in pde_fft.cpp, from the PFSTMO package

// returns T = EVy A EVx^tr
// note, modifies input data
func transform_ev2normal(A emath.FloatGrid) emath.FloatGrid {
	width  := A.Dx()
	height := A.Dy()

	// the discrete cosine transform is not exactly the transform needed
	// need to scale input values to get the right transformation
	for y:=1 ; y<height-1 ; y++ {
		for x:=1 ; x<width-1 ; x++ {
			A.Set(x,y,      A.Get(x,y)        * 0.25)
		}
	}
	for x:=1 ; x<width-1 ; x++ {
		A.Set(x,0,        A.Get(x,0)        * 0.5)
		A.Set(x,height-1, A.Get(x,height-1) * 0.5)
	}
	for y:=1 ; y<height-1 ; y++ {
		A.Set(0,y,        A.Get(0,y)        * 0.5)
		A.Set(width-1,y , A.Get(width-1,y)  * 0.5)
	}

	return dct2d(A)
}

// returns T = EVy^-1 * A * (EVx^-1)^tr
func transform_normal2ev(A emath.FloatGrid) emath.FloatGrid {
	width  := A.Dx()
	height := A.Dy()
	T      := dct2d(A)

	// need to scale the output matrix to get the right transform
	for y:=0 ; y<height ; y++ {
		for x:=0 ; x<width ; x++ {
			T.Set(x,y,       T.Get(x,y)        * (1.0/float64((height-1)*(width-1))))
		}
	}
	for x:=0 ; x<width ; x++ {
		T.Set(x,0,         T.Get(x,0)        * 0.5)
		T.Set(x,height-1,  T.Get(x,height-1) * 0.5)
	}
	for y:=0 ; y<height ; y++ {
		T.Set(0,y,         T.Get(0,y)        * 0.5)
		T.Set(width-1,y,   T.Get(width-1,y)  * 0.5)
	}

	return T
}

// returns the eigenvalues of the 1d laplace operator
func get_lambda(n int) []float64 {
	v := make([]float64, n)
	for i:=0; i<n; i++ {
		u := math.Sin( float64(i)/float64(2*(n-1)) * math.Pi )
		v[i] = -4.0 * u * u
	}
	return v
}

// makes boundary conditions compatible so that a solution exists
func make_compatible_boundary(F emath.FloatGrid) {
	width  := F.Dx()
	height := F.Dy()

	sum := 0.0
	for y:=1 ; y<height-1 ; y++ {
		for x:=1 ; x<width-1 ; x++ {
			sum += F.Get(x,y)
		}
	}
	for x:=1 ; x<width-1 ; x++ {
		sum += 0.5 * (F.Get(x,0) + F.Get(x,height-1))
	}
	for y:=1 ; y<height-1 ; y++ {
		sum += 0.5 * (F.Get(0,y) + F.Get(width-1,y))
	}
	sum += 0.25*(F.Get(0,0) + F.Get(0,height-1) + F.Get(width-1,0) + F.Get(width-1,height-1))

	add := -1.0 * sum / float64(height+width-3)

	for x:=0 ; x<width ; x++ {
		F.Set(x,0,         F.Get(x,0)        + add)
		F.Set(x,height-1,  F.Get(x,height-1) + add)
	}
	for y:=1 ; y<height-1 ; y++ {
		F.Set(0,y,         F.Get(0,y)        + add)
		F.Set(width-1,y,   F.Get(width-1,y)  + add)
	}
}

// SolvePdeFft solves Laplace U = F with Neumann boundary conditions
// if adjust_bound is true then boundary values in F are modified so that
// the equation has a solution, if adjust_bound is set to false then F is
// not modified and the equation might not have a solution but an
// approximate solution with a minimum error is then calculated.
// note, input data F might be modified
func SolvePdeFft(F emath.FloatGrid, adjustBound bool) emath.FloatGrid {
	width  := F.Dx()
	height := F.Dy()

	// in general there might not be a solution to the Poisson pde
	// with Neumann boundary conditions unless the boundary satisfies
	// an integral condition, this function modifies the boundary so that
	// the condition is exactly satisfied
	if adjustBound {
		make_compatible_boundary(F)
	}

	// transforms F into eigenvector space
	F_tr := transform_normal2ev(F)

	// in the eigenvector space the solution is very simple
	U_tr := F_tr.NewFromThis()
	l1 := get_lambda(height)
	l2 := get_lambda(width)
	for y:=0 ; y<height ; y++ {
		for x:=0 ; x<width ; x++ {
			if x==0 && y==0 {
				U_tr.Set(x,y,  0.0) // any value ok, only adds a const to the solution
			} else {
				U_tr.Set(x,y,  F_tr.Get(x,y) / (l1[y] + l2[x]))
			}
		}
	}

	// transforms U_tr back to the normal space
	U := transform_ev2normal(U_tr)

	// the solution U as calculated will satisfy something like int U = 0
	// since for any constant c, U-c is also a solution and we are mainly
	// working in the logspace of (0,1) data we prefer to have
	// a solution which has no positive values: U_new(x,y)=U(x,y)-max
	// (not really needed but good for numerics as we later take exp(U))
	max := 0.0
	for _, val := range U.Values() {
		if val > max {
			max = val
		}
	}
	vals := U.Values()
	for i := range vals {
		vals[i] -= max
	}

	return U
}
