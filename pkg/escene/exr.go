package escene

import(
	"fmt"
	"io"
	"os"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mrjoshuak/go-openexr/exr"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
)

var(
	rgbChannels = []string{"R", "G", "B"}
)

// ReadEXR loads the R, G and B channels of a scanline OpenEXR file as
// 32-bit floats. Any other channels are ignored; a missing R, G or B
// is an ErrMissingChannel.
func ReadEXR(filename string) (eimage.Image, error) {
	f, err := exr.OpenFile(filename)
	if err != nil {
		return eimage.Image{}, fmt.Errorf("exr open '%s': %v", filename, err)
	}
	defer f.Close()

	h := f.Header(0)
	if h == nil {
		return eimage.Image{}, fmt.Errorf("exr '%s': no header found", filename)
	}

	for _, name := range rgbChannels {
		if h.Channels().Get(name) == nil {
			return eimage.Image{}, fmt.Errorf("exr '%s': channel %s: %w", filename, name, ErrMissingChannel)
		}
	}

	dw := h.DataWindow()
	width, height := int(dw.Width()), int(dw.Height())
	if err := checkFreeMemory(width, height); err != nil {
		return eimage.Image{}, fmt.Errorf("exr '%s': %w", filename, err)
	}

	fb := exr.NewFrameBuffer()
	for _, name := range rgbChannels {
		data := make([]byte, width*height*exr.PixelTypeFloat.Size())
		if err := fb.Insert(name, exr.NewSlice(exr.PixelTypeFloat, data, width, height)); err != nil {
			return eimage.Image{}, fmt.Errorf("exr '%s': framebuffer %s: %v", filename, name, err)
		}
	}

	reader, err := exr.NewScanlineReader(f)
	if err != nil {
		return eimage.Image{}, fmt.Errorf("exr '%s': reader: %v", filename, err)
	}
	reader.SetFrameBuffer(fb)
	if err := reader.ReadPixels(int(dw.Min.Y), int(dw.Max.Y)); err != nil {
		return eimage.Image{}, fmt.Errorf("exr '%s': reading pixels: %v", filename, err)
	}

	img := eimage.New(width, height)
	rs, gs, bs := fb.Get("R"), fb.Get("G"), fb.Get("B")
	for y:=0; y<height; y++ {
		for x:=0; x<width; x++ {
			img.SetRGB(x, y, float64(rs.GetFloat32(x, y)), float64(gs.GetFloat32(x, y)), float64(bs.GetFloat32(x, y)))
		}
	}

	return img, nil
}

// WriteEXR saves the image as a ZIP-compressed scanline OpenEXR file,
// with 32-bit float R, G and B channels.
func WriteEXR(img eimage.Image, filename string) error {
	h := exr.NewScanlineHeader(img.W, img.H)
	h.SetCompression(exr.CompressionZIP)
	cl := exr.NewChannelList()
	for _, name := range rgbChannels {
		cl.Add(exr.Channel{Name: name, Type: exr.PixelTypeFloat, XSampling: 1, YSampling: 1})
	}
	h.SetChannels(cl)

	return writeEXR(h, rgbChannels, img, filename)
}

// writeEXR writes the named channels; a channel's index in `names` picks
// the image channel its values come from.
func writeEXR(h *exr.Header, names []string, img eimage.Image, filename string) error {
	fb := exr.NewFrameBuffer()
	for c, name := range names {
		data := make([]byte, img.W*img.H*exr.PixelTypeFloat.Size())
		slice := exr.NewSlice(exr.PixelTypeFloat, data, img.W, img.H)
		for y:=0; y<img.H; y++ {
			for x:=0; x<img.W; x++ {
				slice.SetFloat32(x, y, float32(img.Vec3At(x, y)[c]))
			}
		}
		if err := fb.Insert(name, slice); err != nil {
			return fmt.Errorf("exr '%s': framebuffer %s: %v", filename, name, err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	defer file.Close()

	writer, err := exr.NewScanlineWriter(file, h)
	if err != nil {
		return fmt.Errorf("exr '%s': writer: %v", filename, err)
	}
	writer.SetFrameBuffer(fb)
	if err := writer.WritePixels(0, img.H-1); err != nil {
		return fmt.Errorf("exr '%s': writing pixels: %v", filename, err)
	}

	return writer.Close()
}

// ReadHDR loads a Radiance RGBE (.hdr) file.
func ReadHDR(filename string) (eimage.Image, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return eimage.Image{}, fmt.Errorf("open+r '%s': %v", filename, err)
	}
	defer reader.Close()

	// The header is enough to size the raster, so refuse before decoding
	cfg, err := rgbe.DecodeConfig(reader)
	if err != nil {
		return eimage.Image{}, fmt.Errorf("rgbe header '%s': %v", filename, err)
	}
	if err := checkFreeMemory(cfg.Width, cfg.Height); err != nil {
		return eimage.Image{}, fmt.Errorf("rgbe '%s': %w", filename, err)
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return eimage.Image{}, fmt.Errorf("rgbe rewind '%s': %v", filename, err)
	}

	m, err := rgbe.Decode(reader)
	if err != nil {
		return eimage.Image{}, fmt.Errorf("rgbe decoding '%s': %v", filename, err)
	}

	hm, ok := m.(hdr.Image)
	if !ok {
		return eimage.Image{}, fmt.Errorf("rgbe '%s': decoded %T is not an hdr.Image", filename, m)
	}

	return eimage.FromHDR(hm), nil
}
