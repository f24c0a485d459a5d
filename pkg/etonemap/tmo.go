package etonemap

import(
	"fmt"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/tmo"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
	"github.com/abworrall/hdr-roundtrip/pkg/fattal02"
)

// libraryOperator wraps the mdouchement/hdr tonemappers (and fattal02,
// which implements the same interface). They all render a gamma encoded
// 16 bit image; we linearize it back into [0,1] floats, so the output
// is comparable with the analytic curves.
type libraryOperator struct {
	name string
}

func (lo libraryOperator)Name() string { return lo.name }

func (lo libraryOperator)Forward(img eimage.Image) (out eimage.Image, err error) {
	if lo.name == "fattal02" && (img.W < fattal02.MinSize || img.H < fattal02.MinSize) {
		return eimage.Image{}, fmt.Errorf("fattal02 needs at least %dx%d pixels, got %s", fattal02.MinSize, fattal02.MinSize, img)
	}

	// Some of the operators panic on degenerate input (e.g. a flat image)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tonemapper %s: %v", lo.name, r)
		}
	}()

	op := SetupTonemapper(lo.name, img)
	ldr := op.Perform()

	return eimage.FromLDR(ldr, true), nil
}

// SetupTonemapper builds the named library operator over the image.
// The parameter tweaks keep very high dynamic range scenes from
// blowing out their small but important bright areas.
func SetupTonemapper(name string, img hdr.Image) tmo.ToneMappingOperator {
	switch name {
	case "drago03":
		op :=  tmo.NewDefaultDrago03(img)
		op.Bias = 1.0            // Otherwise image overexposes
		return op

	case "durand":
		return tmo.NewDefaultDurand(img)

	case "fattal02":
		op := fattal02.NewDefaultFattal02(img)
		op.WhitePoint  = 0.00001 // We want as close to zero overexposed pixels	as we can get
		op.GammaExpand = true    // image comes out too dark otherwise
		return op

	case "icam06":
		op := tmo.NewDefaultICam06(img)
		op.Contrast    = 0.65
		op.MaxClipping = 0.99999 // Otherwise image overexposes
		return op

	case "linear":
		return tmo.NewLinear(img)

	case "reinhard05":
		op := tmo.NewDefaultReinhard05(img)
		op.Chromatic  = 0.005
		op.Light      = 0.005    // Otherwise image overexposes
		return op
	}

	return nil
}
