// Package logging builds the zap logger used by the command line.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configure New.
type Options struct {
	// JSON forces JSON encoding even on a terminal.
	JSON bool

	// Verbose enables debug entries.
	Verbose bool

	// Writer receives log entries. Defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger writing to opts.Writer: console encoded when the
// writer is a terminal, JSON encoded otherwise.
func New(opts Options) *zap.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	level := zap.InfoLevel
	if opts.Verbose {
		level = zap.DebugLevel
	}

	var enc zapcore.Encoder
	if !opts.JSON && IsTerminal(w) {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
