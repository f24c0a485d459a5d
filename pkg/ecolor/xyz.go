package ecolor

import(
	"fmt"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

var(
	// Linear sRGB primaries (D65) to CIE XYZ
	//
	// http://www.brucelindbloom.com/index.html?Eqn_RGB_XYZ_Matrix.html
	LinearSRGB_to_XYZ = emath.Mat3{
		0.4124, 0.3576, 0.1805,
		0.2126, 0.7152, 0.0722,
		0.0193, 0.1192, 0.9505,
	}
)

const chromaFloor = 1e-6

// RGBToXYZ converts every pixel of a linear sRGB image into XYZ. The
// result has the same shape, with X,Y,Z in place of R,G,B.
func RGBToXYZ(img eimage.Image) eimage.Image {
	return RGBToXYZWith(emath.DefaultBackend(), img)
}

func RGBToXYZWith(be emath.Backend, img eimage.Image) eimage.Image {
	out := eimage.New(img.W, img.H)
	be.MatMul3(LinearSRGB_to_XYZ, img.Pix, out.Pix)
	return out
}

// Chromaticity returns the CIE xy coordinates of an XYZ triple. The
// denominator is floored, so black comes out as (0,0) rather than NaN.
func Chromaticity(xyz emath.Vec3) (float64, float64) {
	sum := emath.MaxOf2(xyz.Sum(), chromaFloor)
	return xyz[0] / sum, xyz[1] / sum
}

// ChromaticityError is the mean, over pixels, of the squared distance
// between the two images' xy chromaticities.
func ChromaticityError(a, b eimage.Image) float64 {
	return ChromaticityErrorWith(emath.DefaultBackend(), a, b)
}

func ChromaticityErrorWith(be emath.Backend, a, b eimage.Image) float64 {
	if !a.SameShape(b) {
		panic(fmt.Sprintf("ecolor: chromaticity error of %s vs %s", a, b))
	}

	xyzA := RGBToXYZWith(be, a)
	xyzB := RGBToXYZWith(be, b)

	dists := make([]float64, a.W*a.H)
	for i := range dists {
		xa, ya := Chromaticity(emath.Vec3{xyzA.Pix[3*i], xyzA.Pix[3*i+1], xyzA.Pix[3*i+2]})
		xb, yb := Chromaticity(emath.Vec3{xyzB.Pix[3*i], xyzB.Pix[3*i+1], xyzB.Pix[3*i+2]})
		dists[i] = (xa-xb)*(xa-xb) + (ya-yb)*(ya-yb)
	}

	return be.Mean(dists)
}
