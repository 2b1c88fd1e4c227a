package filmstrip

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/k1LoW/errors"
)

const (
	DefaultInputDir   = "./input/"
	DefaultOutputDir  = "./output/"
	DefaultFrameCount = 256
	OutputFileName    = "knob.png"
)

// Assembler stacks numbered frames vertically into a single film strip image.
type Assembler struct {
	inputDir   string
	outputDir  string
	frameCount int
	logger     *slog.Logger
}

type Option func(*Assembler) error

func WithInputDir(dir string) Option {
	return func(a *Assembler) error {
		a.inputDir = dir
		return nil
	}
}

func WithOutputDir(dir string) Option {
	return func(a *Assembler) error {
		a.outputDir = dir
		return nil
	}
}

func WithFrameCount(n int) Option {
	return func(a *Assembler) error {
		if n < 1 {
			return fmt.Errorf("invalid frame count: %d, at least one frame is required", n)
		}
		a.frameCount = n
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) error {
		a.logger = logger
		return nil
	}
}

// New creates a new Assembler. Without options it reads 256 frames from ./input/ and
// writes ./output/knob.png.
func New(opts ...Option) (_ *Assembler, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	a := &Assembler{
		inputDir:   DefaultInputDir,
		outputDir:  DefaultOutputDir,
		frameCount: DefaultFrameCount,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.logger == nil {
		a.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return a, nil
}

// OutputPath returns the path of the film strip file.
func (a *Assembler) OutputPath() string {
	if a.outputDir != "" && os.IsPathSeparator(a.outputDir[len(a.outputDir)-1]) {
		return a.outputDir + OutputFileName
	}
	return filepath.Join(a.outputDir, OutputFileName)
}

// Assemble decodes every frame, pastes them top to bottom and writes the film strip.
// Nothing is written unless all frames decode.
func (a *Assembler) Assemble(ctx context.Context) (_ string, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	frames, err := a.loadFrames(ctx)
	if err != nil {
		return "", err
	}
	c, err := a.composite(ctx, frames)
	if err != nil {
		return "", err
	}
	p, err := a.save(c)
	if err != nil {
		return "", err
	}
	a.logger.InfoContext(ctx, "assemble completed",
		slog.String("path", p),
		slog.Int("width", c.Bounds().Dx()),
		slog.Int("height", c.Bounds().Dy()),
		slog.Int("frames", len(frames)))
	return p, nil
}

func (a *Assembler) loadFrames(ctx context.Context) ([]*Frame, error) {
	a.logger.InfoContext(ctx, "decoding frames", slog.String("dir", a.inputDir), slog.Int("count", a.frameCount))
	frames := make([]*Frame, 0, a.frameCount)
	for i := range a.frameCount {
		f, err := LoadFrame(a.inputDir, i)
		if err != nil {
			return nil, err
		}
		if len(frames) > 0 && f.Identical(frames[len(frames)-1]) {
			a.logger.WarnContext(ctx, "frame is identical to the previous frame", slog.Int("index", i), slog.String("path", f.Path()))
		}
		frames = append(frames, f)
	}
	a.logger.InfoContext(ctx, "decoded frames", slog.Int("count", len(frames)))
	return frames, nil
}

func (a *Assembler) composite(ctx context.Context, frames []*Frame) (*Canvas, error) {
	c := NewCanvas(frames)
	for _, f := range frames {
		if err := c.Paste(f); err != nil {
			return nil, fmt.Errorf("failed to paste frame %s: %w", f.Path(), err)
		}
		a.logger.InfoContext(ctx, "added frame", slog.Int("index", f.Index()), slog.String("path", f.Path()))
	}
	if !c.Filled() {
		return nil, fmt.Errorf("pasted frames do not fill canvas %dx%d", c.Bounds().Dx(), c.Bounds().Dy())
	}
	return c, nil
}

func (a *Assembler) save(c *Canvas) (string, error) {
	if a.outputDir != "" {
		if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", a.outputDir, err)
		}
	}
	p := a.OutputPath()
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create output file %s: %w", p, err)
	}
	defer f.Close()
	if err := c.Encode(f); err != nil {
		return "", fmt.Errorf("failed to write output file %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file %s: %w", p, err)
	}
	return p, nil
}
