package filmstrip

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/k1LoW/errors"
)

// Strip is a film strip read back for display. Frame i occupies rows
// [i*FrameHeight(), (i+1)*FrameHeight()) and the full strip width.
type Strip struct {
	i      image.Image
	frames int
}

// OpenStrip decodes the film strip at path.
func OpenStrip(path string, frames int) (_ *Strip, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open film strip %s: %w", path, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode film strip %s: %w", path, err)
	}
	return NewStrip(img, frames)
}

func NewStrip(img image.Image, frames int) (_ *Strip, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	if img == nil {
		return nil, fmt.Errorf("film strip image is nil")
	}
	if frames < 1 {
		return nil, fmt.Errorf("invalid frame count: %d", frames)
	}
	if h := img.Bounds().Dy(); frames > h {
		return nil, fmt.Errorf("film strip of height %d cannot hold %d frames", h, frames)
	}
	return &Strip{
		i:      img,
		frames: frames,
	}, nil
}

func (s *Strip) Frames() int {
	return s.frames
}

// FrameHeight returns the height of a single frame. Rows left over by the integer
// division are never shown.
func (s *Strip) FrameHeight() int {
	return s.i.Bounds().Dy() / s.frames
}

// FrameIndex maps a rotation in [0, 1] to the index of the frame to show. Values
// outside the range are clamped.
func (s *Strip) FrameIndex(rotation float64) int {
	if math.IsNaN(rotation) || rotation <= 0 {
		return 0
	}
	if rotation >= 1 {
		return s.frames - 1
	}
	return int(math.Ceil(rotation * float64(s.frames-1)))
}

// Frame returns the band of frame i.
func (s *Strip) Frame(i int) (image.Image, error) {
	if i < 0 || i >= s.frames {
		return nil, fmt.Errorf("frame index out of range: %d (frames: %d)", i, s.frames)
	}
	b := s.i.Bounds()
	h := s.FrameHeight()
	r := image.Rect(b.Min.X, b.Min.Y+i*h, b.Max.X, b.Min.Y+(i+1)*h)
	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := s.i.(subImager); ok {
		return si.SubImage(r), nil
	}
	return copyNRGBA(s.i, r), nil
}

// FrameAt returns the frame shown for rotation.
func (s *Strip) FrameAt(rotation float64) (image.Image, error) {
	return s.Frame(s.FrameIndex(rotation))
}
