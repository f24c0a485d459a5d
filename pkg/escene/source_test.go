package escene

import(
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrjoshuak/go-openexr/exr"
	"github.com/pbnjay/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
)

func gradientImage(w, h int) eimage.Image {
	img := eimage.New(w, h)
	for y:=0; y<h; y++ {
		for x:=0; x<w; x++ {
			v := float64(1 + x + y*w)
			img.SetRGB(x, y, v, v*0.5, v*0.25)
		}
	}
	return img
}

func TestEXRRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "grad.exr")
	src := gradientImage(5, 3)
	require.NoError(t, WriteEXR(src, filename))

	got, err := ReadEXR(filename)
	require.NoError(t, err)
	require.Equal(t, 5, got.W)
	require.Equal(t, 3, got.H)
	for i := range src.Pix {
		assert.InDelta(t, src.Pix[i], got.Pix[i], 1e-5*src.Pix[i])
	}
}

func TestEXRMissingChannel(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "rg.exr")

	h := exr.NewScanlineHeader(2, 2)
	h.SetCompression(exr.CompressionNone)
	cl := exr.NewChannelList()
	cl.Add(exr.Channel{Name: "G", Type: exr.PixelTypeFloat, XSampling: 1, YSampling: 1})
	cl.Add(exr.Channel{Name: "R", Type: exr.PixelTypeFloat, XSampling: 1, YSampling: 1})
	h.SetChannels(cl)
	require.NoError(t, writeEXR(h, []string{"R", "G"}, gradientImage(2, 2), filename))

	_, err := ReadEXR(filename)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingChannel), "got %v", err)
}

func TestHDRRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "grad.hdr")
	src := gradientImage(4, 4)
	require.NoError(t, src.WriteToHDR(filename))

	got, err := ReadHDR(filename)
	require.NoError(t, err)
	require.True(t, src.SameShape(got))
	for i := range src.Pix {
		// RGBE keeps 8 bits of mantissa per channel
		assert.InDelta(t, src.Pix[i], got.Pix[i], 0.02*src.Pix[i]+1e-3)
	}
}

func TestHDRTooBig(t *testing.T) {
	if memory.FreeMemory() == 0 {
		t.Skip("free memory unknown on this platform")
	}

	// Just a header; there are no pixels to decode
	filename := filepath.Join(t.TempDir(), "huge.hdr")
	header := "#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1000000 +X 1000000\n"
	require.NoError(t, os.WriteFile(filename, []byte(header), 0644))

	_, err := ReadHDR(filename)
	assert.ErrorIs(t, err, ErrTooBig)
}

func TestFolderSource(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))

	require.NoError(t, WriteEXR(gradientImage(2, 2), filepath.Join(dir, "b.exr")))
	require.NoError(t, gradientImage(2, 2).WriteToHDR(filepath.Join(sub, "a.hdr")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644))

	fs, err := NewFolderSource(dir)
	require.NoError(t, err)
	require.Equal(t, 2, fs.Len())

	names := []string{}
	for {
		scene, err := fs.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 2, scene.Image.W)
		names = append(names, scene.Name)
		scene.Image.Release()
	}
	assert.Equal(t, []string{"b", "a"}, names, "sorted by full path, so the top-level file comes first")
}

func TestFolderSourceErrors(t *testing.T) {
	_, err := NewFolderSource(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.exr"), []byte("not an exr"), 0644))
	fs, err := NewFolderSource(dir)
	require.NoError(t, err)
	_, err = fs.Next()
	assert.Error(t, err)
}

func TestSliceSource(t *testing.T) {
	ss := NewSliceSource(Scene{Name: "one"}, Scene{Name: "two"})
	s, err := ss.Next()
	require.NoError(t, err)
	assert.Equal(t, "one", s.Name)
	s, _ = ss.Next()
	assert.Equal(t, "two", s.Name)
	_, err = ss.Next()
	assert.Equal(t, io.EOF, err)
}

func TestSceneName(t *testing.T) {
	assert.Equal(t, "memorial", SceneName("/data/hdr_exr/memorial.exr"))
	assert.True(t, IsSceneFile("X.EXR"))
	assert.False(t, IsSceneFile("x.png"))
}
