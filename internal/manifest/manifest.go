package manifest

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"soma/pkg/logging"
	"soma/pkg/store"

	"github.com/google/uuid"
)

// Hook transforms a freshly loaded mapping.
type Hook func(data map[string]any) (map[string]any, error)

// Options controls how a manifest source is read.
type Options struct {
	// Cache enables the compiled cache under CacheDir.
	Cache bool
	// CheckMtime makes the cache valid only while it is newer than the source.
	CheckMtime bool
	CacheDir   string
	// Debug bypasses the compiled cache entirely.
	Debug bool
	// Format overrides the format derived from the extension.
	Format string
	// OnSave runs on parsed source data before it is cached.
	OnSave Hook
	// OnLoad runs on the final data, whether it came from the cache or the source.
	OnLoad Hook
}

// Manifest is a Store filled from one source file.
type Manifest struct {
	*store.Store

	key        string
	path       string
	format     string
	cachePath  string
	checkMtime bool
	fromCache  bool
}

// New wraps data in a Manifest bound to path without reading anything.
func New(path string, data map[string]any) *Manifest {
	return &Manifest{
		Store:  store.New(data),
		path:   path,
		format: FormatOf(path),
	}
}

// Load reads source into a Manifest, going through the compiled cache when
// opts allow it.
func Load(source string, opts Options) (*Manifest, error) {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: source}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("manifest source %s is a directory", source)
	}

	m := &Manifest{
		path:       source,
		format:     FormatOf(source),
		checkMtime: opts.CheckMtime,
	}
	if opts.Format != "" {
		m.format = normalizeFormat(opts.Format)
	}
	useCache := opts.Cache && !opts.Debug && opts.CacheDir != ""
	if useCache {
		m.cachePath = CachePath(opts.CacheDir, source)
	}

	var data map[string]any
	if useCache && m.validateCache() {
		data, err = ParseFile(m.cachePath)
		if err != nil {
			return nil, err
		}
		m.fromCache = true
		logging.Debug("Manifest", "Loaded %s from compiled cache %s", source, m.cachePath)
	} else {
		data, err = parseFileAs(source, m.format)
		if err != nil {
			return nil, err
		}
		if opts.OnSave != nil {
			if data, err = opts.OnSave(data); err != nil {
				return nil, err
			}
			data = normalizeMap(data)
		}
		if useCache {
			if err := DumpFile(m.cachePath, data); err != nil {
				return nil, err
			}
			logging.Debug("Manifest", "Compiled %s into %s", source, m.cachePath)
		}
	}

	if opts.OnLoad != nil {
		if data, err = opts.OnLoad(data); err != nil {
			return nil, err
		}
		data = normalizeMap(data)
	}

	m.Store = store.New(data)
	return m, nil
}

// CachePath returns the compiled cache file for source under dir.
func CachePath(dir, source string) string {
	sum := md5.Sum([]byte(source))
	return filepath.Join(dir, hex.EncodeToString(sum[:])+".json")
}

// validateCache reports whether the compiled cache can stand in for the source.
func (m *Manifest) validateCache() bool {
	src, err := os.Stat(m.path)
	if err != nil {
		return false
	}
	cache, err := os.Stat(m.cachePath)
	if err != nil {
		return false
	}
	return !m.checkMtime || cache.ModTime().After(src.ModTime())
}

// Key is the dotted config key of a manifest produced by LoadDir.
func (m *Manifest) Key() string { return m.key }

// Path is the source the manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// Format is the codec the source was read with.
func (m *Manifest) Format() string { return m.format }

// CacheFile is the compiled cache path, empty when caching was off.
func (m *Manifest) CacheFile() string { return m.cachePath }

// FromCache reports whether the data came from the compiled cache.
func (m *Manifest) FromCache() bool { return m.fromCache }

// Save writes the manifest back to its source.
func (m *Manifest) Save() error {
	return m.SaveAs(m.path)
}

// SaveAs writes the manifest to path in the format given by its extension.
func (m *Manifest) SaveAs(path string) error {
	if path == "" {
		path = m.path
	}
	if samePath(path, m.path) && FormatOf(path) != m.format {
		return ErrFormatChange
	}
	return DumpFile(path, m.All())
}

// ParseFile reads path and decodes it with the codec for its extension.
func ParseFile(path string) (map[string]any, error) {
	return parseFileAs(path, FormatOf(path))
}

func parseFileAs(path, format string) (map[string]any, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := Parse(content, format)
	if err != nil {
		var unsupported *UnsupportedFormatError
		if errors.As(err, &unsupported) {
			return nil, &UnsupportedFormatError{Format: unsupported.Format, Path: path}
		}
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}
	return data, nil
}

// DumpFile encodes data with the codec for path's extension and replaces
// path atomically.
func DumpFile(path string, data map[string]any) error {
	content, err := Dump(data, FormatOf(path))
	if err != nil {
		var unsupported *UnsupportedFormatError
		if errors.As(err, &unsupported) {
			return &UnsupportedFormatError{Format: unsupported.Format, Path: path}
		}
		return &WriteError{Path: path, Err: err}
	}
	return WriteFileAtomic(path, content, 0o644)
}

// WriteFileAtomic writes content to a temporary sibling of path and renames
// it into place, so readers never observe a partial file.
func WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	if err := os.WriteFile(tmp, content, perm); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
