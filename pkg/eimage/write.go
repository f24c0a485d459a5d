package eimage

// A few helper routines for golang's image libraries

import(
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/mdouchement/hdr/codec/rgbe"
)

func WritePNG(img image.Image, filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return png.Encode(writer, img)
	}
}

// WriteToHDR outputs a Radiance HDR (RGBE) file. You can load this into
// photoshop or other HDR tools.
func (img Image)WriteToHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("Image.WriteToHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		if err := rgbe.Encode(writer, img); err != nil {
			return fmt.Errorf("Image.WriteToHDR, encoding RGBE file '%s': %v", filename, err)
		}
		return nil
	}
}

// WriteToPNG writes a display version of the image, clipped to [0,1]
// and gamma encoded.
func (img Image)WriteToPNG(filename string) error {
	return WritePNG(img.ToLDR(true), filename)
}
