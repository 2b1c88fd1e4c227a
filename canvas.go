package filmstrip

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/k1LoW/errors"
)

// Canvas is the output image that frames are pasted into, top to bottom.
type Canvas struct {
	i       *image.NRGBA
	yOffset int
	bands   []Band
}

// Band is the region of the canvas occupied by one frame.
type Band struct {
	Index int
	Path  string
	Rect  image.Rectangle
}

// NewCanvas allocates a fully transparent canvas as wide as the widest frame and as
// tall as all frames together.
func NewCanvas(frames []*Frame) *Canvas {
	var width, height int
	for _, f := range frames {
		width = max(width, f.Width())
		height += f.Height()
	}
	return &Canvas{
		i: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// Paste copies the pixels of f to the canvas at (0, current offset) and advances the
// offset by the height of f.
func (c *Canvas) Paste(f *Frame) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	r := image.Rect(0, c.yOffset, f.Width(), c.yOffset+f.Height())
	if !r.In(c.i.Bounds()) {
		return fmt.Errorf("frame %s (%dx%d) does not fit canvas %dx%d at offset %d", f.Path(), f.Width(), f.Height(), c.i.Bounds().Dx(), c.i.Bounds().Dy(), c.yOffset)
	}
	// Rows are copied verbatim. Compositing through draw.Src would premultiply and drop
	// the color of fully transparent pixels.
	for y := 0; y < f.Height(); y++ {
		start := c.i.PixOffset(0, c.yOffset+y)
		copy(c.i.Pix[start:start+f.Width()*4], f.row(y))
	}
	c.bands = append(c.bands, Band{
		Index: f.Index(),
		Path:  f.Path(),
		Rect:  r,
	})
	c.yOffset += f.Height()
	return nil
}

// Filled reports whether the pasted frames cover the full canvas height.
func (c *Canvas) Filled() bool {
	return c.yOffset == c.i.Bounds().Dy()
}

func (c *Canvas) Bounds() image.Rectangle {
	return c.i.Bounds()
}

// Bands returns the regions of pasted frames in paste order.
func (c *Canvas) Bands() []Band {
	return c.bands
}

// Image returns the canvas pixel buffer.
func (c *Canvas) Image() *image.NRGBA {
	return c.i
}

// Encode writes the canvas as PNG.
func (c *Canvas) Encode(w io.Writer) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	enc := &png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, c.i); err != nil {
		return fmt.Errorf("failed to encode canvas: %w", err)
	}
	return nil
}
