// Package apigen generates client libraries for several target languages
// from one element graph.
//
// For each requested language Generate selects the convention policy, the
// synthesis handler table and the emitter, renders every unit and writes
// it, with a lock file, below the output path. Targets run concurrently
// and fail independently.
package apigen

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/broady/apigen/cmdtree"
	"github.com/broady/apigen/config"
	"github.com/broady/apigen/convention"
	"github.com/broady/apigen/emit"
	"github.com/broady/apigen/emit/csharp"
	"github.com/broady/apigen/emit/golang"
	"github.com/broady/apigen/emit/typescript"
	"github.com/broady/apigen/internal/metrics"
	"github.com/broady/apigen/ir"
	"github.com/broady/apigen/irdoc"
	"github.com/broady/apigen/sink"
	"github.com/broady/apigen/synth"
)

// LockFile is the name of the lock file written to every target directory.
const LockFile = "apigen-lock.json"

// Options are the collaborators of a run. The zero value logs nowhere,
// records no metrics and writes below the configured output path.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Recorder

	// Sink returns the sink of a target directory, relative to the output
	// path. Defaults to a filesystem sink.
	Sink func(dir string) sink.Sink

	// Version is recorded in lock files.
	Version string
}

// Lock is the content of a lock file.
type Lock struct {
	Version             string   `json:"generatorVersion"`
	Language            string   `json:"language"`
	ClientClassName     string   `json:"clientClassName"`
	ClientNamespaceName string   `json:"clientNamespaceName"`
	DescriptionHash     string   `json:"descriptionHash"`
	UsesBackingStore    bool     `json:"usesBackingStore"`
	Serializers         []string `json:"serializers"`
	Deserializers       []string `json:"deserializers"`
}

// TargetResult is the outcome of one language.
type TargetResult struct {
	Language string

	// Dir is the target directory relative to the output path.
	Dir      string
	Units    int
	Methods  int
	Commands int
	Duration time.Duration
	Err      error
}

// Report holds the result of every target, in request order.
type Report struct {
	Targets []TargetResult
}

// Err joins the errors of the failed targets, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, t := range r.Targets {
		if t.Err != nil {
			errs = append(errs, errors.Wrapf(t.Err, "target %s", t.Language))
		}
	}
	return errors.Join(errs...)
}

// Generate renders and writes every target of cfg.
func Generate(ctx context.Context, cfg *config.Config, doc *irdoc.Document, opts Options) (*Report, error) {
	r, err := newRunner(cfg, doc, opts)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, true)
}

// Check synthesizes and renders every target of cfg without writing.
func Check(ctx context.Context, cfg *config.Config, doc *irdoc.Document, opts Options) (*Report, error) {
	r, err := newRunner(cfg, doc, opts)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, false)
}

type runner struct {
	cfg     *config.Config
	doc     *irdoc.Document
	logger  *zap.Logger
	metrics *metrics.Recorder
	sink    func(dir string) sink.Sink
	version string
}

func newRunner(cfg *config.Config, doc *irdoc.Document, opts Options) (*runner, error) {
	if cfg == nil {
		return nil, errors.New("apigen: config is required")
	}
	if doc == nil || doc.Root == nil {
		return nil, errors.New("apigen: element graph is required")
	}
	if errs := ir.Validate(doc.Root); len(errs) > 0 {
		return nil, errors.WithHint(
			errors.Wrapf(errors.Join(errs...), "element graph has %d structural errors", len(errs)),
			"the graph must be fixed upstream before generation")
	}
	r := &runner{
		cfg:     cfg,
		doc:     doc,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		sink:    opts.Sink,
		version: opts.Version,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.version == "" {
		r.version = "devel"
	}
	if r.sink == nil {
		r.sink = func(dir string) sink.Sink {
			return sink.NewFilesystem(filepath.Join(cfg.OutputPath, filepath.FromSlash(dir)), r.logger)
		}
	}
	if doc.Root.Name != cfg.ClientNamespaceName {
		r.logger.Warn("root namespace differs from the configured client namespace",
			zap.String("root", doc.Root.Name),
			zap.String("client_namespace_name", cfg.ClientNamespaceName))
	}
	return r, nil
}

func (r *runner) run(ctx context.Context, write bool) (*Report, error) {
	targets := r.cfg.Targets()
	report := &Report{Targets: make([]TargetResult, len(targets))}

	var g errgroup.Group
	limit := r.cfg.MaxDegreeOfParallelism
	if limit <= 0 {
		limit = len(targets)
	}
	g.SetLimit(limit)
	for i, lang := range targets {
		dir := ""
		if len(targets) > 1 {
			dir = lang
		}
		g.Go(func() error {
			report.Targets[i] = r.target(ctx, lang, dir, write)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *runner) target(ctx context.Context, lang, dir string, write bool) TargetResult {
	start := time.Now()
	res := TargetResult{Language: lang, Dir: dir}
	log := r.logger.With(zap.String("language", lang))
	log.Info("generating target", zap.Bool("write", write))

	res.Err = r.generate(ctx, log, &res, write)
	res.Duration = time.Since(start)
	r.metrics.Duration(lang, res.Duration)
	if res.Err != nil {
		r.metrics.Failure(lang)
		log.Error("target failed", zap.Error(res.Err), zap.Duration("duration", res.Duration))
		return res
	}
	r.metrics.Units(lang, res.Units)
	log.Info("target done",
		zap.Int("units", res.Units),
		zap.Int("methods", res.Methods),
		zap.Duration("duration", res.Duration))
	return res
}

func (r *runner) generate(ctx context.Context, log *zap.Logger, res *TargetResult, write bool) error {
	lang := res.Language
	policy, err := convention.ForLanguage(lang)
	if err != nil {
		return err
	}
	handlers := synth.DefaultHandlers()
	if lang == convention.CLI {
		handlers = cmdtree.Handlers()
	}
	sc := &synth.Context{Policy: policy, Options: r.cfg.SynthOptions(), Logger: log}
	// Command builders are synthesized twice on the command-line target:
	// once for the tree and once for rendering.
	seen := make(map[*ir.Method]bool)
	engine, err := synth.NewEngine(sc, handlers, func(m *ir.Method, err error) {
		if err == nil && !seen[m] {
			seen[m] = true
			res.Methods++
			r.metrics.Method(lang, m.Kind.String())
		}
	})
	if err != nil {
		return err
	}

	if lang == convention.CLI {
		tree, err := cmdtree.Assemble(engine, r.doc.Root)
		if err != nil {
			return errors.Wrap(err, "assemble command tree")
		}
		tree.Walk(func([]string, *cmdtree.Node) { res.Commands++ })
		log.Debug("assembled command tree", zap.Int("commands", res.Commands))
	}

	units, err := r.emitter(lang, log).Emit(ctx, engine, r.doc.Root)
	if err != nil {
		return err
	}
	res.Units = len(units)
	if !write {
		return nil
	}
	return r.write(ctx, log, res, units)
}

func (r *runner) emitter(lang string, log *zap.Logger) emit.Emitter {
	switch lang {
	case convention.CLI:
		return csharp.NewCommandLine(log)
	case convention.TypeScript:
		return typescript.New(log)
	case convention.Go:
		return golang.New(log, r.cfg.GoImportPath)
	default:
		return csharp.New(log)
	}
}

func (r *runner) write(ctx context.Context, log *zap.Logger, res *TargetResult, units []emit.Unit) error {
	out := r.sink(res.Dir)
	if r.cfg.CleanOutput {
		if c, ok := out.(sink.Cleaner); ok {
			if err := c.Clean(ctx); err != nil {
				return errors.Wrap(err, "clean output")
			}
		} else {
			log.Warn("sink cannot be cleaned; stale files are kept")
		}
	}
	for _, u := range units {
		if err := out.WriteFile(ctx, u.Path, u.Content); err != nil {
			return err
		}
		log.Debug("wrote unit", zap.String("path", u.Path), zap.Int("bytes", len(u.Content)))
	}
	lock, err := json.MarshalIndent(r.lock(res.Language), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode lock file")
	}
	return out.WriteFile(ctx, LockFile, append(lock, '\n'))
}

func (r *runner) lock(lang string) Lock {
	opts := r.cfg.SynthOptions()
	return Lock{
		Version:             r.version,
		Language:            lang,
		ClientClassName:     r.cfg.ClientClassName,
		ClientNamespaceName: r.cfg.ClientNamespaceName,
		DescriptionHash:     r.doc.Hash,
		UsesBackingStore:    r.cfg.UsesBackingStore,
		Serializers:         nonNil(opts.Serializers),
		Deserializers:       nonNil(opts.Deserializers),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
