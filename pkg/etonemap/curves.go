package etonemap

import(
	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
)

// Hable's "Uncharted 2" filmic curve constants
const(
	filmicA = 0.15 // shoulder strength
	filmicB = 0.50 // linear strength
	filmicC = 0.10 // linear angle
	filmicD = 0.20 // toe strength
	filmicE = 0.02 // toe numerator
	filmicF = 0.30 // toe denominator
)

// inverseFloor keeps the inverse finite as the LDR value approaches 1.
const inverseFloor = 1e-6

// ReinhardGlobal maps [0,inf) into [0,1) via x/(1+x), after scaling by
// exposure. Negative values are passed through the same formula.
func ReinhardGlobal(hdr eimage.Image, exposure float64) eimage.Image {
	return hdr.Map(func(v float64) float64 {
		x := v * exposure
		return x / (1.0 + x)
	})
}

// Filmic applies the Hable curve to each channel. Negative input is
// clamped to zero; the output is not clamped.
func Filmic(hdr eimage.Image) eimage.Image {
	return hdr.Map(FilmicCurve)
}

func FilmicCurve(v float64) float64 {
	x := v
	if x < 0 {
		x = 0
	}
	A, B, C, D, E, F := filmicA, filmicB, filmicC, filmicD, filmicE, filmicF
	return ((x*(A*x+C*B)+D*E) / (x*(A*x+B)+D*F)) - E/F
}

// InverseReinhard undoes ReinhardGlobal. It is only an exact inverse
// for images that ReinhardGlobal produced; LDR from any other operator
// gets run through the same formula regardless.
func InverseReinhard(ldr eimage.Image, exposure float64) eimage.Image {
	return ldr.Map(func(v float64) float64 {
		denom := 1.0 - v
		if denom < inverseFloor {
			denom = inverseFloor
		}
		return (v / denom) / exposure
	})
}
