package escene

import(
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pbnjay/memory"

	"github.com/abworrall/hdr-roundtrip/pkg/eimage"
)

var(
	ErrMissingChannel = errors.New("required channel missing")
	ErrTooBig         = errors.New("not enough free memory for scene")
)

// A Scene is one HDR image, along with the name it is reported under.
type Scene struct {
	Name  string
	Image eimage.Image
}

// A Source hands out scenes one at a time. Next returns io.EOF once
// there are no more. The caller owns the returned image, and should
// Release it before asking for the next one.
type Source interface {
	Next() (Scene, error)
}

// {{{ FolderSource

// FolderSource streams the HDR files (.exr, .hdr) found under a set of
// files and dirs, in name order. Only one scene is ever loaded at once.
type FolderSource struct {
	Files   []string
	next    int
}

func NewFolderSource(args ...string) (*FolderSource, error) {
	fs := &FolderSource{}
	if err := fs.addFilesAndDirs(args...); err != nil {
		return nil, err
	}
	sort.Strings(fs.Files)
	return fs, nil
}

func (fs *FolderSource)addFilesAndDirs(args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := os.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := fs.addFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return err
				}
			}

		case IsSceneFile(arg):
			fs.Files = append(fs.Files, arg)
		}
	}

	return nil
}

func IsSceneFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".exr", ".hdr": return true
	}
	return false
}

func (fs *FolderSource)Len() int { return len(fs.Files) }

func (fs *FolderSource)Next() (Scene, error) {
	if fs.next >= len(fs.Files) {
		return Scene{}, io.EOF
	}
	filename := fs.Files[fs.next]
	fs.next++

	img, err := LoadFile(filename)
	if err != nil {
		return Scene{}, fmt.Errorf("loadfile %s: %v", filename, err)
	}

	return Scene{Name: SceneName(filename), Image: img}, nil
}

// SceneName is the filename, without dirs or extension
func SceneName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// }}}
// {{{ SliceSource

// SliceSource serves scenes that are already in memory.
type SliceSource struct {
	Scenes []Scene
	next   int
}

func NewSliceSource(scenes ...Scene) *SliceSource {
	return &SliceSource{Scenes: scenes}
}

func (ss *SliceSource)Next() (Scene, error) {
	if ss.next >= len(ss.Scenes) {
		return Scene{}, io.EOF
	}
	ss.next++
	return ss.Scenes[ss.next-1], nil
}

// }}}

// LoadFile reads a single HDR image, picking the decoder by extension.
func LoadFile(filename string) (eimage.Image, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".exr": return ReadEXR(filename)
	case ".hdr": return ReadHDR(filename)
	}
	return eimage.Image{}, fmt.Errorf("'%s': not a recognized HDR format", filename)
}

// Each pixel holds three float64s in the Image, plus three float32s in
// the decoder's buffers while loading.
const bytesPerPixel = 3*8 + 3*4

func checkFreeMemory(w, h int) error {
	need := uint64(w) * uint64(h) * bytesPerPixel
	if free := memory.FreeMemory(); free > 0 && need > free {
		return fmt.Errorf("%dx%d needs %dMB, %dMB free: %w", w, h, need/1024/1024, free/1024/1024, ErrTooBig)
	}
	return nil
}
