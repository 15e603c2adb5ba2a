// Package sink writes generated units to their destination.
package sink

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Sink receives generated file content. Implementations are safe for
// concurrent use.
type Sink interface {
	// WriteFile stores content under path, which is relative and uses
	// forward slashes.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// Cleaner is implemented by sinks that can discard previous output.
type Cleaner interface {
	Clean(ctx context.Context) error
}

// Filesystem writes below a root directory.
type Filesystem struct {
	// Root is the target output directory.
	Root string

	// Mode is the permission of written files. Defaults to 0644.
	Mode os.FileMode

	// Overwrite replaces existing files. When false an existing file is an
	// error.
	Overwrite bool

	logger *zap.Logger
}

// NewFilesystem returns a sink writing below root that overwrites existing
// files.
func NewFilesystem(root string, logger *zap.Logger) *Filesystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Filesystem{Root: root, Mode: 0o644, Overwrite: true, logger: logger}
}

var (
	_ Sink    = (*Filesystem)(nil)
	_ Cleaner = (*Filesystem)(nil)
	_ Sink    = (*Memory)(nil)
	_ Cleaner = (*Memory)(nil)
)

// WriteFile writes content atomically through a temporary file in the
// destination directory.
func (s *Filesystem) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create directories")
	}
	mode := s.Mode
	if mode == 0 {
		mode = 0o644
	}

	tmp, err := os.CreateTemp(dir, ".apigen-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	discard := func() { _ = os.Remove(tmpPath) }

	_, werr := tmp.Write(content)
	cerr := tmp.Close()
	switch {
	case werr != nil:
		discard()
		return errors.Wrap(werr, "write temp file")
	case cerr != nil:
		discard()
		return errors.Wrap(cerr, "close temp file")
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		discard()
		return errors.Wrap(err, "set file mode")
	}
	if err := ctx.Err(); err != nil {
		discard()
		return err
	}

	if s.Overwrite {
		if err := os.Rename(tmpPath, full); err != nil {
			discard()
			return errors.Wrap(err, "rename temp file")
		}
	} else {
		// Link fails when the destination exists.
		err := os.Link(tmpPath, full)
		discard()
		if errors.Is(err, os.ErrExist) {
			return errors.Newf("file already exists: %q", path)
		}
		if err != nil {
			return errors.Wrap(err, "create file")
		}
	}
	s.logger.Debug("wrote unit", zap.String("path", full), zap.Int("bytes", len(content)))
	return nil
}

func (s *Filesystem) resolve(path string) (string, error) {
	root, err := filepath.Abs(s.Root)
	if err != nil {
		return "", errors.Wrap(err, "resolve root directory")
	}
	full := filepath.Join(root, filepath.FromSlash(path))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", errors.Newf("path escapes root directory: %q", path)
	}
	return full, nil
}

// Clean removes every entry below Root, keeping Root itself. A missing
// Root is not an error.
func (s *Filesystem) Clean(ctx context.Context) error {
	if strings.TrimSpace(s.Root) == "" {
		return errors.New("clean: empty root directory")
	}
	entries, err := os.ReadDir(s.Root)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "clean")
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(s.Root, e.Name())); err != nil {
			return errors.Wrapf(err, "clean %s", e.Name())
		}
	}
	s.logger.Info("cleaned output directory", zap.String("root", s.Root), zap.Int("entries", len(entries)))
	return nil
}

// Memory keeps written files in memory.
type Memory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemory returns an empty memory sink.
func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content.
func (s *Memory) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = clone(content)
	return nil
}

// Clean discards every stored file.
func (s *Memory) Clean(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
	return nil
}

// Get returns a copy of the file at path, or nil.
func (s *Memory) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return clone(content)
}

// Paths returns the stored paths in lexical order.
func (s *Memory) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.files))
	for p := range s.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Files returns a copy of every stored file.
func (s *Memory) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.files))
	for p, c := range s.files {
		out[p] = clone(c)
	}
	return out
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Prefixed writes every file of Sink below Dir.
type Prefixed struct {
	Sink Sink
	Dir  string
}

// WriteFile writes content to Dir/path.
func (p Prefixed) WriteFile(ctx context.Context, path string, content []byte) error {
	if p.Dir == "" {
		return p.Sink.WriteFile(ctx, path, content)
	}
	return p.Sink.WriteFile(ctx, p.Dir+"/"+path, content)
}

// ValidatePath reports whether path is a clean, relative, forward slash
// path that stays below the root.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return errors.New("path is empty")
	case filepath.IsAbs(path) || strings.HasPrefix(path, "/"):
		return errors.New("absolute paths not allowed")
	case len(path) >= 2 && path[1] == ':' && isLetter(path[0]):
		return errors.New("absolute paths not allowed")
	case strings.Contains(path, "\\"):
		return errors.New("backslash separators not allowed")
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return errors.Newf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
