package filmstrip

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/k1LoW/errors"
	"golang.org/x/image/draw"
)

// Frame is one decoded input image of the film strip.
type Frame struct {
	index    int
	path     string
	i        *image.NRGBA
	checksum *uint32
}

// FrameFileName returns the source file name of the frame at index.
func FrameFileName(index int) string {
	return fmt.Sprintf("%04d.png", index)
}

// LoadFrame decodes the frame at index from dir.
func LoadFrame(dir string, index int) (_ *Frame, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	p := framePath(dir, index)
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open frame %s: %w", p, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame %s: %w", p, err)
	}
	return newFrame(index, p, img), nil
}

func newFrame(index int, p string, img image.Image) *Frame {
	return &Frame{
		index: index,
		path:  p,
		i:     toNRGBA(img),
	}
}

// framePath keeps a trailing separator of dir as written so that "./input/" yields
// "./input/0000.png".
func framePath(dir string, index int) string {
	if dir != "" && os.IsPathSeparator(dir[len(dir)-1]) {
		return dir + FrameFileName(index)
	}
	return filepath.Join(dir, FrameFileName(index))
}

// toNRGBA returns img as a zero-origin non-premultiplied RGBA image.
// PNG files with an alpha channel already decode to *image.NRGBA and are used as is.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return copyNRGBA(img, img.Bounds())
}

// copyNRGBA copies region r of img into a new zero-origin NRGBA image. Only opaque and
// premultiplied sources go through draw.Src; anything else is converted pixel by pixel
// so transparent pixels keep their color.
func copyNRGBA(img image.Image, r image.Rectangle) *image.NRGBA {
	n := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < r.Dy(); y++ {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			copy(n.Pix[y*n.Stride:y*n.Stride+r.Dx()*4], src.Pix[i:i+r.Dx()*4])
		}
	case *image.NRGBA64:
		for y := 0; y < r.Dy(); y++ {
			i := src.PixOffset(r.Min.X, r.Min.Y+y)
			row := n.Pix[y*n.Stride : y*n.Stride+r.Dx()*4]
			for j := range row {
				// high byte of each big-endian 16-bit sample
				row[j] = src.Pix[i+j*2]
			}
		}
	case *image.Paletted:
		pal := make([]color.NRGBA, len(src.Palette))
		for i, c := range src.Palette {
			pal[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				idx := int(src.ColorIndexAt(r.Min.X+x, r.Min.Y+y))
				if idx < len(pal) {
					n.SetNRGBA(x, y, pal[idx])
				}
			}
		}
	case *image.RGBA, *image.RGBA64, *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		draw.Draw(n, n.Bounds(), img, r.Min, draw.Src)
	default:
		for y := 0; y < r.Dy(); y++ {
			for x := 0; x < r.Dx(); x++ {
				n.SetNRGBA(x, y, color.NRGBAModel.Convert(img.At(r.Min.X+x, r.Min.Y+y)).(color.NRGBA))
			}
		}
	}
	return n
}

func (f *Frame) Index() int {
	return f.index
}

func (f *Frame) Path() string {
	return f.path
}

func (f *Frame) Width() int {
	return f.i.Bounds().Dx()
}

func (f *Frame) Height() int {
	return f.i.Bounds().Dy()
}

// Image returns the decoded pixel buffer.
func (f *Frame) Image() *image.NRGBA {
	return f.i
}

// Checksum returns a CRC-32 of the frame size and pixels.
func (f *Frame) Checksum() uint32 {
	if f == nil {
		return 0
	}
	if f.checksum == nil {
		var size [8]byte
		binary.BigEndian.PutUint32(size[:4], uint32(f.Width()))
		binary.BigEndian.PutUint32(size[4:], uint32(f.Height()))
		h := crc32.NewIEEE()
		_, _ = h.Write(size[:])
		for y := 0; y < f.Height(); y++ {
			_, _ = h.Write(f.row(y))
		}
		sum := h.Sum32()
		f.checksum = &sum
	}
	return *f.checksum
}

// Identical reports whether ff has the same size and pixels as f.
func (f *Frame) Identical(ff *Frame) bool {
	if f == nil || ff == nil {
		return false
	}
	if f.Width() != ff.Width() || f.Height() != ff.Height() {
		return false
	}
	if f.Checksum() != ff.Checksum() {
		return false
	}
	for y := 0; y < f.Height(); y++ {
		if !bytes.Equal(f.row(y), ff.row(y)) {
			return false
		}
	}
	return true
}

// row returns the pixel bytes of row y.
func (f *Frame) row(y int) []byte {
	start := y * f.i.Stride
	return f.i.Pix[start : start+f.Width()*4]
}
