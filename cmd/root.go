/*
Copyright © 2025 Ken'ichiro Oyama <k1lowxb@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/k1LoW/errors"
	"github.com/k1LoW/filmstrip"
	"github.com/k1LoW/filmstrip/config"
	"github.com/k1LoW/filmstrip/logger/progress"
	"github.com/k1LoW/filmstrip/version"
	"github.com/k1LoW/tail"
	"github.com/mattn/go-colorable"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
)

// tb keeps the latest log records for error.json.
var tb = tail.New(200)

var rootCmd = &cobra.Command{
	Use:   "filmstrip",
	Short: "filmstrip stacks numbered PNG frames into a single film strip image",
	Long: fmt.Sprintf(`filmstrip stacks numbered PNG frames into a single film strip image.

It reads %d frames (%s0000.png to %s%04d.png), stacks them top to bottom and writes %s%s.`,
		filmstrip.DefaultFrameCount, filmstrip.DefaultInputDir, filmstrip.DefaultInputDir, filmstrip.DefaultFrameCount-1,
		filmstrip.DefaultOutputDir, filmstrip.OutputFileName),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	Version:      fmt.Sprintf("%s (rev:%s)", version.Version, version.Revision),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.Color() {
			color.NoColor = true
		}
		stdout := cmd.OutOrStdout()
		if f, ok := stdout.(*os.File); ok {
			stdout = colorable.NewColorable(f)
		}
		ph, err := progress.New(
			slog.NewTextHandler(os.Stderr, nil),
			progress.WithStyle(cfg.ProgressStyle()),
			progress.WithWriter(stdout),
		)
		if err != nil {
			return err
		}
		defer ph.Stop()
		logger := slog.New(slogmulti.Fanout(
			ph,
			slog.NewJSONHandler(tb, &slog.HandlerOptions{Level: slog.LevelDebug}),
		))
		a, err := filmstrip.New(filmstrip.WithLogger(logger))
		if err != nil {
			return err
		}
		if _, err := a.Assemble(cmd.Context()); err != nil {
			return err
		}
		return nil
	},
}

type errorData struct {
	LatestLogs  []any     `json:"latest_logs"`
	StackTraces any       `json:"stack_traces"`
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"version"`
	Revision    string    `json:"revision"`
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Write stack trace log to state directory
		if err := dumpError(err, config.StateHomePath()); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}

func dumpError(err error, dir string) error {
	var latestLogs []any
	for _, line := range tb.Lines() {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			latestLogs = append(latestLogs, line)
		} else {
			latestLogs = append(latestLogs, m)
		}
	}
	d := &errorData{
		LatestLogs:  latestLogs,
		StackTraces: errors.StackTraces(err),
		CreatedAt:   time.Now(),
		Version:     version.Version,
		Revision:    version.Revision,
	}
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}
	dumpPath := filepath.Join(dir, "error.json")
	if err := os.WriteFile(dumpPath, b, 0o600); err != nil {
		return fmt.Errorf("failed to write error.json to %s: %w", dumpPath, err)
	}
	return nil
}
