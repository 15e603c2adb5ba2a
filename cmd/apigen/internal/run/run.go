// Package run holds the flags and setup shared by the generation commands.
package run

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/apigen"
	"github.com/broady/apigen/config"
	"github.com/broady/apigen/internal/logging"
	"github.com/broady/apigen/internal/metrics"
	"github.com/broady/apigen/irdoc"
)

// Globals are bound to every command.
type Globals struct {
	Version string
}

// Flags are the options common to gen and check. Flag values override the
// config file and the environment.
type Flags struct {
	Config      string   `help:"Config file (yaml, json or toml)." short:"c" type:"path"`
	Document    string   `help:"IR document to generate from." short:"d" type:"path"`
	Language    []string `help:"Target languages (csharp, typescript, go, cli)." short:"l"`
	Output      string   `help:"Output directory." short:"o" type:"path"`
	Set         []string `help:"Config override as key=value, e.g. retry.max_retries=3." sep:"none" placeholder:"KEY=VALUE"`
	JSON        bool     `help:"Log JSON even on a terminal." name:"json"`
	Verbose     bool     `help:"Log debug entries." short:"v"`
	MetricsFile string   `help:"Write generation metrics to this file in the Prometheus text format." type:"path"`
}

// Session is a loaded run.
type Session struct {
	Config   *config.Config
	Document *irdoc.Document
	Logger   *zap.Logger
	Metrics  *metrics.Recorder
	Out      io.Writer

	metricsFile string
	version     string
}

// Setup loads the configuration and IR document named by f.
func (f *Flags) Setup(g *Globals) (*Session, error) {
	logger := logging.New(logging.Options{JSON: f.JSON, Verbose: f.Verbose, Writer: os.Stderr})

	cfg, err := config.Load(f.Config, f.overrides()...)
	if err != nil {
		return nil, err
	}
	if cfg.Document == "" {
		return nil, errors.WithHint(errors.New("no IR document"), "pass --document or set document in the config file")
	}
	doc, err := irdoc.Load(cfg.Document)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded IR document", zap.String("path", cfg.Document), zap.String("sha256", doc.Hash))

	s := &Session{
		Config:      cfg,
		Document:    doc,
		Logger:      logger,
		Out:         os.Stdout,
		metricsFile: f.MetricsFile,
	}
	if g != nil {
		s.version = g.Version
	}
	if f.MetricsFile != "" {
		s.Metrics = metrics.New()
	}
	return s, nil
}

func (f *Flags) overrides() []string {
	var out []string
	if f.Document != "" {
		out = append(out, "document="+f.Document)
	}
	for _, l := range f.Language {
		out = append(out, "languages="+l)
	}
	if f.Output != "" {
		out = append(out, "output_path="+f.Output)
	}
	return append(out, f.Set...)
}

// Options returns the generation options of the session.
func (s *Session) Options() apigen.Options {
	return apigen.Options{Logger: s.Logger, Metrics: s.Metrics, Version: s.version}
}

// Finish prints one line per target, writes the metrics file and returns
// the error of the failed targets.
func (s *Session) Finish(report *apigen.Report) error {
	defer func() { _ = s.Logger.Sync() }()
	for _, t := range report.Targets {
		if t.Err != nil {
			fmt.Fprintf(s.Out, "✗ %s: %v\n", t.Language, t.Err)
			continue
		}
		fmt.Fprintf(s.Out, "✓ %s: %d files, %d methods", t.Language, t.Units, t.Methods)
		if t.Commands > 0 {
			fmt.Fprintf(s.Out, ", %d commands", t.Commands)
		}
		fmt.Fprintf(s.Out, " (%s)\n", t.Duration.Round(time.Millisecond))
	}
	if s.metricsFile != "" {
		if err := s.Metrics.WriteToTextfile(s.metricsFile); err != nil {
			return err
		}
	}
	return report.Err()
}
