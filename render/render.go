// Package render runs Csound over a score file.
package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

const DefaultBinary = "csound"

// Renderer turns a score file into audio.
type Renderer interface {
	Render(ctx context.Context, scoreFile string) error
}

// Csound renders by invoking the csound binary. The output file and format
// are taken from the score's CsOptions.
type Csound struct {
	Binary string
	Args   []string // extra arguments placed before the score file
	Logger *slog.Logger

	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewCsound(logger *slog.Logger) *Csound {
	return &Csound{
		Binary:  DefaultBinary,
		Logger:  logger,
		command: exec.CommandContext,
	}
}

func (c *Csound) Render(ctx context.Context, scoreFile string) error {
	bin := c.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	command := c.command
	if command == nil {
		command = exec.CommandContext
	}

	args := append(append([]string(nil), c.Args...), scoreFile)
	cmd := command(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if c.Logger != nil {
		c.Logger.Debug("csound finished", "score", scoreFile, "elapsed", time.Since(start), "error", err)
	}
	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("render %s: %w: %s", scoreFile, err, lastLine(stderr.String()))
		}
		return fmt.Errorf("render %s: %w", scoreFile, err)
	}
	return nil
}

// lastLine keeps error messages short; csound is verbose on stderr.
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Nop skips rendering.
type Nop struct{}

func (Nop) Render(context.Context, string) error { return nil }
