package etonemap

import(
	"fmt"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
)

var(
	// The first two are the analytic curves; the rest are the local and
	// global operators from mdouchement/hdr, plus our fattal02.
	Tonemappers = []string{"reinhard", "filmic", "drago03", "durand", "fattal02", "icam06", "linear", "reinhard05"}
)

func ListTonemappers() string {
	return fmt.Sprintf("%v", Tonemappers)
}

// An Operator maps an HDR image down into LDR, with values in [0,1).
type Operator interface {
	Name() string
	Forward(hdr eimage.Image) (eimage.Image, error)
}

// An Inverse expands LDR back to an HDR estimate.
type Inverse interface {
	Name() string
	Inverse(ldr eimage.Image) eimage.Image
}

// {{{ curveOperator

type curveOperator struct {
	name string
	f    func(eimage.Image) eimage.Image
}

func (c curveOperator)Name() string { return c.name }
func (c curveOperator)Forward(hdr eimage.Image) (eimage.Image, error) { return c.f(hdr), nil }

// }}}
// {{{ ReinhardInverse

type ReinhardInverse struct {
	Exposure float64
}

func (ri ReinhardInverse)Name() string { return "inverse_reinhard" }
func (ri ReinhardInverse)Inverse(ldr eimage.Image) eimage.Image {
	return InverseReinhard(ldr, ri.Exposure)
}

// }}}

// Lookup returns the named forward operator. Exposure only affects
// the reinhard curve.
func Lookup(name string, exposure float64) (Operator, error) {
	switch name {
	case "reinhard":
		return curveOperator{name, func(img eimage.Image) eimage.Image { return ReinhardGlobal(img, exposure) }}, nil

	case "filmic":
		return curveOperator{name, Filmic}, nil

	case "drago03", "durand", "fattal02", "icam06", "linear", "reinhard05":
		return libraryOperator{name: name}, nil
	}

	return nil, fmt.Errorf("tonemapper %q not recognized, wanted %s", name, ListTonemappers())
}

// InverseFor returns the inverse used to reconstruct HDR from the named
// operator's output. There is only the one inverse: LDR from every
// operator goes back through InverseReinhard, which is the point of the
// transfer experiment.
func InverseFor(name string, exposure float64) Inverse {
	return ReinhardInverse{Exposure: exposure}
}
