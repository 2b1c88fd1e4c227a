package filmstrip

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

var (
	red   = color.NRGBA{R: 0xff, A: 0xff}
	green = color.NRGBA{G: 0xff, A: 0xff}
	blue  = color.NRGBA{B: 0xff, A: 0xff}
)

// solid returns a w x h image filled with c.
func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// pattern returns a w x h image whose pixels all differ, including semi and fully
// transparent ones.
func pattern(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: seed + uint8(x*17),
				G: seed + uint8(y*29),
				B: uint8(x * y),
				A: uint8((x + y) * 40),
			})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
}

// writeFrames writes imgs as 0000.png, 0001.png, ... into a new directory.
func writeFrames(t *testing.T, imgs ...image.Image) string {
	t.Helper()
	dir := t.TempDir()
	for i, img := range imgs {
		writePNG(t, filepath.Join(dir, FrameFileName(i)), img)
	}
	return dir
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// render draws img as text, one character per pixel. Pixels found in legend are
// drawn with their character, fully transparent ones with '.' and anything else
// with '?'.
func render(img image.Image, legend map[color.NRGBA]byte) []byte {
	b := img.Bounds()
	buf := new(bytes.Buffer)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := nrgbaAt(img, x, y)
			ch, ok := legend[c]
			switch {
			case ok:
				buf.WriteByte(ch)
			case c.A == 0:
				buf.WriteByte('.')
			default:
				buf.WriteByte('?')
			}
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
