package filmstrip

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"
)

func TestStripFrameIndex(t *testing.T) {
	s, err := NewStrip(image.NewNRGBA(image.Rect(0, 0, 1, 256)), 256)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		rotation float64
		want     int
	}{
		{"minimum", 0, 0},
		{"maximum", 1, 255},
		{"half rounds up", 0.5, 128},
		{"just above zero", 0.001, 1},
		{"below range", -0.5, 0},
		{"above range", 1.5, 255},
		{"nan", math.NaN(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.FrameIndex(tt.rotation); got != tt.want {
				t.Errorf("FrameIndex(%v) = %d, want %d", tt.rotation, got, tt.want)
			}
		})
	}
}

func TestNewStrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 10))
	tests := []struct {
		name       string
		img        image.Image
		frames     int
		wantHeight int
		wantErr    bool
	}{
		{"even", img, 5, 2, false},
		{"remainder rows are dropped", img, 3, 3, false},
		{"one frame", img, 1, 10, false},
		{"zero frames", img, 0, 0, true},
		{"more frames than rows", img, 11, 0, true},
		{"nil image", nil, 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewStrip(tt.img, tt.frames)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewStrip() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := s.FrameHeight(); got != tt.wantHeight {
				t.Errorf("FrameHeight() = %d, want %d", got, tt.wantHeight)
			}
			if got := s.Frames(); got != tt.frames {
				t.Errorf("Frames() = %d, want %d", got, tt.frames)
			}
		})
	}
}

func TestStripFrameOutOfRange(t *testing.T) {
	s, err := NewStrip(image.NewNRGBA(image.Rect(0, 0, 2, 4)), 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range []int{-1, 4} {
		if _, err := s.Frame(i); err == nil {
			t.Errorf("Frame(%d): want error", i)
		}
	}
}

func TestStripReadsAssembledFrames(t *testing.T) {
	const count = 8
	colors := make([]color.NRGBA, count)
	imgs := make([]image.Image, count)
	for i := range count {
		colors[i] = color.NRGBA{R: uint8(i * 30), G: 0x10, B: uint8(255 - i*30), A: 0xff}
		imgs[i] = solid(3, 2, colors[i])
	}
	in := writeFrames(t, imgs...)
	a, err := New(WithInputDir(in), WithOutputDir(t.TempDir()), WithFrameCount(count))
	if err != nil {
		t.Fatal(err)
	}
	p, err := a.Assemble(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	s, err := OpenStrip(p, count)
	if err != nil {
		t.Fatal(err)
	}
	if s.FrameHeight() != 2 {
		t.Fatalf("FrameHeight() = %d, want 2", s.FrameHeight())
	}
	for i := range count {
		f, err := s.Frame(i)
		if err != nil {
			t.Fatal(err)
		}
		b := f.Bounds()
		if b.Dx() != 3 || b.Dy() != 2 {
			t.Fatalf("frame %d: got %dx%d, want 3x2", i, b.Dx(), b.Dy())
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if got := nrgbaAt(f, x, y); got != colors[i] {
					t.Fatalf("frame %d pixel (%d, %d): got %v, want %v", i, x, y, got, colors[i])
				}
			}
		}
	}

	last, err := s.FrameAt(1)
	if err != nil {
		t.Fatal(err)
	}
	if got := nrgbaAt(last, last.Bounds().Min.X, last.Bounds().Min.Y); got != colors[count-1] {
		t.Errorf("FrameAt(1): got %v, want %v", got, colors[count-1])
	}
}

func TestOpenStripMissing(t *testing.T) {
	if _, err := OpenStrip("testdata/does-not-exist.png", 1); err == nil {
		t.Error("want error")
	}
}

// plainImage hides the SubImage method of the wrapped image.
type plainImage struct {
	image.Image
}

func TestStripFrameWithoutSubImage(t *testing.T) {
	hidden := color.NRGBA{R: 18, G: 52, B: 86, A: 0}
	faint := color.NRGBA{R: 200, G: 3, B: 7, A: 2}
	paletted := image.NewPaletted(image.Rect(0, 0, 2, 4), color.Palette{red, hidden, faint})
	for x := 0; x < 2; x++ {
		paletted.SetColorIndex(x, 2, 1)
		paletted.SetColorIndex(x, 3, 2)
	}
	s, err := NewStrip(plainImage{paletted}, 2)
	if err != nil {
		t.Fatal(err)
	}
	f, err := s.Frame(1)
	if err != nil {
		t.Fatal(err)
	}
	if f.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("got bounds %v", f.Bounds())
	}
	for x := 0; x < 2; x++ {
		if got := nrgbaAt(f, x, 0); got != hidden {
			t.Errorf("pixel (%d, 0): got %v, want %v", x, got, hidden)
		}
		if got := nrgbaAt(f, x, 1); got != faint {
			t.Errorf("pixel (%d, 1): got %v, want %v", x, got, faint)
		}
	}
}
