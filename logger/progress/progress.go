package progress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/k1LoW/errors"
	"github.com/mattn/go-colorable"
)

const (
	StyleLines = "lines"
	StyleDots  = "dots"
)

var (
	yellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

var _ slog.Handler = (*Handler)(nil)

// Handler renders the assembler's log records as console progress. The wrapped
// handler only decides which levels are enabled.
type Handler struct {
	handler slog.Handler
	*state
}

type state struct {
	mu      sync.Mutex
	spinner *spinner.Spinner
	stdout  io.Writer
	style   string
	prefix  []byte
}

type Option func(*state)

// WithWriter sets the console writer. The default is a colorable stdout.
func WithWriter(w io.Writer) Option {
	return func(s *state) {
		s.stdout = w
	}
}

// WithStyle sets the progress style, StyleLines or StyleDots.
func WithStyle(style string) Option {
	return func(s *state) {
		s.style = style
	}
}

func New(h slog.Handler, opts ...Option) (_ *Handler, err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	st := &state{
		stdout: colorable.NewColorableStdout(),
		style:  StyleLines,
	}
	for _, opt := range opts {
		opt(st)
	}
	switch st.style {
	case StyleLines, StyleDots:
	default:
		return nil, fmt.Errorf("unknown progress style: %q", st.style)
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(st.stdout))
	if err := s.Color("yellow"); err != nil {
		return nil, err
	}
	s.Suffix = " decoding frames"
	s.Start()
	s.Disable()
	st.spinner = s
	return &Handler{
		handler: h,
		state:   st,
	}, nil
}

// Stop stops the spinner.
func (h *Handler) Stop() {
	h.spinner.Stop()
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	return h.render(r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{handler: h.handler.WithAttrs(attrs), state: h.state}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{handler: h.handler.WithGroup(name), state: h.state}
}

func (h *Handler) render(r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r.Message == "decoding frames" {
		if !h.spinner.Enabled() {
			h.spinner.Enable()
		}
		return nil
	}
	if h.spinner.Enabled() {
		h.spinner.Disable()
		if h.style == StyleDots {
			_, _ = h.stdout.Write(h.prefix)
		}
	}
	path := stringAttr(r, "path")
	switch {
	case r.Message == "added frame":
		if h.style == StyleDots {
			return h.write(yellow("."))
		}
		return h.write(fmt.Sprintf("Add Image %s..\n", cyan(fmt.Sprintf("%q", path))))
	case r.Level == slog.LevelWarn:
		if h.style == StyleDots {
			return h.write(cyan("*"))
		}
		return h.write(fmt.Sprintf("%s %s: %s\n", yellow("WARNING:"), path, r.Message))
	case r.Message == "assemble completed":
		if h.style == StyleDots {
			return h.write("\n")
		}
		return h.write(green("Finish") + "\n")
	}
	return nil
}

func (h *Handler) write(s string) (err error) {
	defer func() {
		err = errors.WithStack(err)
	}()
	_, err = h.stdout.Write([]byte(s))
	if err != nil {
		return err
	}
	if h.style == StyleDots {
		h.prefix = append(h.prefix, s...)
	}
	return nil
}

func stringAttr(r slog.Record, key string) string {
	var v string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == key {
			v = attr.Value.String()
			return false
		}
		return true
	})
	return v
}
