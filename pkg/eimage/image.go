package eimage

import(
	"fmt"
	"image"
	"image/color"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/abworrall/hdr-roundtrip/pkg/emath"
)

// Image is a linear RGB float image, shape (H, W, 3), stored row-major
// with the channels last. HDR values have no upper bound. Implements
// the image.Image and hdr.Image interfaces, so it can be handed
// straight to the tonemappers in mdouchement/hdr.
type Image struct {
	W, H int
	Pix  []float64 // len == W*H*3, in R,G,B order
}

func New(w, h int) Image {
	return Image{W: w, H: h, Pix: make([]float64, w*h*3)}
}

// NewFrom wraps pix (not copied), which must hold w*h RGB triples.
func NewFrom(w, h int, pix []float64) (Image, error) {
	if w <= 0 || h <= 0 || len(pix) != w*h*3 {
		return Image{}, fmt.Errorf("eimage: %d values for a %dx%dx3 image", len(pix), w, h)
	}
	return Image{W: w, H: h, Pix: pix}, nil
}

// NewFilled is an image where every channel of every pixel is v.
func NewFilled(w, h int, v float64) Image {
	img := New(w, h)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// Implement image.Image
func (img Image)ColorModel() color.Model       { return hdrcolor.RGBModel }
func (img Image)Bounds() image.Rectangle       { return image.Rect(0, 0, img.W, img.H) }
func (img Image)At(x, y int) color.Color       { return img.HDRAt(x, y) }

// Implement hdr.Image
func (img Image)HDRAt(x, y int) hdrcolor.Color { return img.RGBAt(x, y) }
func (img Image)Size() int                     { return img.W * img.H }

var _ hdr.Image = Image{}

func (img Image)offset(x, y int) int { return 3 * (y*img.W + x) }

func (img Image)RGBAt(x, y int) hdrcolor.RGB {
	i := img.offset(x, y)
	return hdrcolor.RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}

func (img Image)Vec3At(x, y int) emath.Vec3 {
	i := img.offset(x, y)
	return emath.Vec3{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}
}

func (img Image)SetRGB(x, y int, r, g, b float64) {
	i := img.offset(x, y)
	img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
}

func (img Image)String() string {
	return fmt.Sprintf("Image[%dx%dx3]", img.W, img.H)
}

func (img Image)SameShape(other Image) bool {
	return img.W == other.W && img.H == other.H && len(img.Pix) == len(other.Pix)
}

func (img Image)Clone() Image {
	c := Image{W: img.W, H: img.H, Pix: make([]float64, len(img.Pix))}
	copy(c.Pix, img.Pix)
	return c
}

// Map returns a new image, with f applied to every channel value
func (img Image)Map(f func(float64) float64) Image {
	out := Image{W: img.W, H: img.H, Pix: make([]float64, len(img.Pix))}
	for i, v := range img.Pix {
		out.Pix[i] = f(v)
	}
	return out
}

// Release drops the pixel buffer, so it can be reclaimed before the next
// image is loaded.
func (img *Image)Release() {
	img.Pix = nil
}

func (img Image)Released() bool { return img.Pix == nil }

// FromHDR copies any hdr.Image into an Image.
func FromHDR(src hdr.Image) Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy())

	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			r, g, bb, _ := src.HDRAt(x + b.Min.X, y + b.Min.Y).HDRRGBA()
			img.SetRGB(x, y, r, g, bb)
		}
	}

	return img
}

// FromLDR maps a display image into [0,1] floats. If linearize is set,
// the sRGB transfer curve is removed, giving linear-light values.
func FromLDR(src image.Image, linearize bool) Image {
	b := src.Bounds()
	img := New(b.Dx(), b.Dy())

	conv := func(c uint32) float64 {
		f := float64(c) / float64(0xFFFF)
		if linearize {
			f = emath.GammaLinearize_F64(f)
		}
		return f
	}

	for y:=0; y<b.Dy(); y++ {
		for x:=0; x<b.Dx(); x++ {
			r, g, bb, _ := src.At(x + b.Min.X, y + b.Min.Y).RGBA()
			img.SetRGB(x, y, conv(r), conv(g), conv(bb))
		}
	}

	return img
}

// ToLDR renders the image for display: values are clipped to [0,1],
// and optionally sRGB gamma encoded.
func (img Image)ToLDR(gammaEncode bool) *image.RGBA64 {
	out := image.NewRGBA64(img.Bounds())

	for y:=0; y<img.H; y++ {
		for x:=0; x<img.W; x++ {
			v := img.Vec3At(x, y)
			if gammaEncode {
				v.FloorAt(0.0)
				v = emath.GammaExpand_sRGB(v)
			}
			v.FloorAt(0.0)
			v.CeilingAt(1.0) // Clipping, else high vals wraparound

			out.SetRGBA64(x, y, color.RGBA64{
				R: uint16(v[0] * float64(0xFFFF)),
				G: uint16(v[1] * float64(0xFFFF)),
				B: uint16(v[2] * float64(0xFFFF)),
				A: 0xFFFF,
			})
		}
	}

	return out
}
