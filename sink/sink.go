// Package sink provides output destinations for generated TypeScript.
package sink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrExists is returned by a FilesystemSink with Overwrite unset when the
// target file already exists.
var ErrExists = errors.New("file already exists")

// Status reports what a write did.
type Status int

const (
	// Written means the content was stored.
	Written Status = iota
	// Unchanged means the destination already held identical content
	// and was left untouched.
	Unchanged
)

func (s Status) String() string {
	if s == Unchanged {
		return "unchanged"
	}
	return "written"
}

// Sink receives generated file content.
// Implementations must be safe for concurrent calls.
type Sink interface {
	// WriteFile stores content under path, which is relative and
	// slash-separated; the sink decides where it lands.
	WriteFile(ctx context.Context, path string, content []byte) (Status, error)
}

// FilesystemSink writes below a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// Overwrite replaces existing files. When false, writing over an
	// existing file fails with ErrExists.
	Overwrite bool

	// SkipUnchanged leaves a file alone when it already holds the content,
	// so its modification time does not change and watchers stay quiet.
	SkipUnchanged bool
}

// NewFilesystemSink returns a sink that overwrites files under root and
// skips writes that would not change them.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root:          root,
		Mode:          0644,
		Overwrite:     true,
		SkipUnchanged: true,
	}
}

// WriteFile writes content to path within Root, creating parent directories
// as needed. The write is atomic: content goes to a temp file in the same
// directory that is then renamed over the target.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) (Status, error) {
	if err := ValidatePath(path); err != nil {
		return Written, errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return Written, err
	}

	fullPath, err := s.resolve(path)
	if err != nil {
		return Written, err
	}

	if s.SkipUnchanged {
		if existing, err := os.ReadFile(fullPath); err == nil && bytes.Equal(existing, content) {
			return Unchanged, nil
		}
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Written, errors.Wrap(err, "create output directory")
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(dir, ".tsapi-*.tmp")
	if err != nil {
		return Written, errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	// Leftovers carry the .tsapi-*.tmp prefix; removal failures are ignored.
	cleanup := func() { _ = os.Remove(tmpPath) }

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	if writeErr != nil {
		cleanup()
		return Written, errors.Wrap(writeErr, "write temp file")
	}
	if closeErr != nil {
		cleanup()
		return Written, errors.Wrap(closeErr, "close temp file")
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return Written, errors.Wrap(err, "set file mode")
	}
	if err := ctx.Err(); err != nil {
		cleanup()
		return Written, err
	}

	if s.Overwrite {
		if err := os.Rename(tmpPath, fullPath); err != nil {
			cleanup()
			return Written, errors.Wrap(err, "rename temp file")
		}
		return Written, nil
	}

	// Link fails with EEXIST if the target exists, without a stat+rename race.
	if err := os.Link(tmpPath, fullPath); err != nil {
		cleanup()
		if errors.Is(err, os.ErrExist) {
			return Written, errors.Wrapf(ErrExists, "%q", path)
		}
		return Written, errors.Wrap(err, "create file")
	}
	cleanup()
	return Written, nil
}

// resolve joins path onto Root and rejects results outside Root.
func (s *FilesystemSink) resolve(path string) (string, error) {
	fullPath := filepath.Join(s.Root, filepath.FromSlash(path))
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		return "", errors.Wrap(err, "resolve root directory")
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", errors.Wrap(err, "resolve path")
	}
	if absPath != absRoot && !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", errors.Newf("path escapes root directory: %q", path)
	}
	return fullPath, nil
}

// MemorySink keeps generated files in memory. `tsapi gen --dry-run` uses it
// to compare output without touching disk.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// WriteFile stores a copy of content under path.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) (Status, error) {
	if err := ValidatePath(path); err != nil {
		return Written, errors.Wrapf(err, "invalid path %q", path)
	}
	if err := ctx.Err(); err != nil {
		return Written, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.files[path]; ok && bytes.Equal(prev, content) {
		return Unchanged, nil
	}
	s.files[path] = bytes.Clone(content)
	return Written, nil
}

// Files returns a copy of all stored files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		result[path] = bytes.Clone(content)
	}
	return result
}

// Get returns the content stored under path, or nil.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if content, ok := s.files[path]; ok {
		return bytes.Clone(content)
	}
	return nil
}

// Reset discards all stored files.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string][]byte)
}

// ValidatePath checks that path is relative, slash-separated, clean and
// free of ".." components.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}
	// Drive letters are rejected on every OS.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}
	if strings.Contains(path, "..") {
		return errors.New("path traversal not allowed")
	}
	if strings.Contains(path, `\`) {
		return errors.New("path must use / as separator")
	}
	if cleaned := filepath.ToSlash(filepath.Clean(path)); cleaned != path {
		return errors.Newf("path is not clean (expected %q, got %q)", cleaned, path)
	}
	return nil
}
