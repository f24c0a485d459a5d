package eimage

import(
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFrom(t *testing.T) {
	img, err := NewFrom(2, 1, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, 4.0, img.RGBAt(1, 0).R)
	assert.Equal(t, 2, img.Size())
	assert.Equal(t, image.Rect(0, 0, 2, 1), img.Bounds())

	_, err = NewFrom(2, 2, []float64{1, 2, 3})
	assert.Error(t, err)
}

func TestHDRAtRoundTrip(t *testing.T) {
	img := New(3, 2)
	img.SetRGB(2, 1, 10, 20, 30)

	r, g, b, _ := img.HDRAt(2, 1).HDRRGBA()
	assert.Equal(t, []float64{10, 20, 30}, []float64{r, g, b})

	copied := FromHDR(img)
	assert.Equal(t, img.Pix, copied.Pix)
}

func TestMapCloneRelease(t *testing.T) {
	img := NewFilled(2, 2, 1.0)
	doubled := img.Map(func(v float64) float64 { return 2 * v })
	assert.Equal(t, 2.0, doubled.Pix[5])
	assert.Equal(t, 1.0, img.Pix[5])

	c := img.Clone()
	c.Pix[0] = 9
	assert.Equal(t, 1.0, img.Pix[0])
	assert.True(t, img.SameShape(c))
	assert.False(t, img.SameShape(New(1, 4)))

	img.Release()
	assert.True(t, img.Released())
}

func TestLDRConversions(t *testing.T) {
	src := image.NewRGBA64(image.Rect(0, 0, 1, 1))
	src.SetRGBA64(0, 0, color.RGBA64{R: 0xFFFF, G: 0x8000, B: 0, A: 0xFFFF})

	raw := FromLDR(src, false)
	assert.InDelta(t, 1.0, raw.Pix[0], 1e-9)
	assert.InDelta(t, 0.5, raw.Pix[1], 1e-4)
	assert.Equal(t, 0.0, raw.Pix[2])

	lin := FromLDR(src, true)
	assert.InDelta(t, 0.214, lin.Pix[1], 1e-3)

	// Linear values survive the trip out to a gamma-encoded LDR and back
	back := FromLDR(lin.ToLDR(true), true)
	assert.InDelta(t, lin.Pix[1], back.Pix[1], 1e-3)

	over := NewFilled(1, 1, 5.0).ToLDR(false)
	assert.Equal(t, uint16(0xFFFF), over.RGBA64At(0, 0).R, "values above 1 clip")
}

func TestWriters(t *testing.T) {
	dir := t.TempDir()
	img := NewFilled(4, 3, 0.25)

	require.NoError(t, img.WriteToPNG(filepath.Join(dir, "x.png")))
	require.NoError(t, img.WriteToHDR(filepath.Join(dir, "x.hdr")))
	assert.FileExists(t, filepath.Join(dir, "x.hdr"))
}
