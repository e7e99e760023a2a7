package manifest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"soma/pkg/logging"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"golang.org/x/sync/errgroup"
)

// Pattern selects manifest files inside a config directory.
const Pattern = "**/*.{js,json,yml,yaml,ini,toml,hcl}"

// Entry is one file of a config directory and the key it is stored under.
type Entry struct {
	Key  string
	Path string
}

// Expand maps files relative to root onto config keys: separators become
// dots and the extension is dropped, so "mail/driver.json" is "mail.driver".
// Files that do not match Pattern are skipped. Entries are sorted by key.
func Expand(root string, files []string) []Entry {
	entries := make([]Entry, 0, len(files))
	for _, rel := range files {
		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(Pattern, rel); !ok {
			continue
		}
		key := strings.TrimSuffix(rel, filepath.Ext(rel))
		key = strings.ReplaceAll(key, "/", ".")
		entries = append(entries, Entry{
			Key:  key,
			Path: filepath.Join(root, filepath.FromSlash(rel)),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Key == entries[j].Key {
			return entries[i].Path < entries[j].Path
		}
		return entries[i].Key < entries[j].Key
	})
	return entries
}

// ListDir returns every manifest file below root, relative to root, following
// symlinks.
func ListDir(ctx context.Context, root string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	conf := fastwalk.Config{Follow: true}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			info, statErr := os.Stat(p)
			if statErr != nil || info.IsDir() {
				return nil
			}
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		if ok, _ := doublestar.Match(Pattern, filepath.ToSlash(rel)); !ok {
			return nil
		}

		mu.Lock()
		files = append(files, rel)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// LoadDir loads every manifest below root. Files are parsed concurrently and
// returned in key order.
func LoadDir(ctx context.Context, root string, opts Options) ([]*Manifest, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Path: root}
		}
		return nil, err
	}
	if !info.IsDir() {
		m, err := Load(root, opts)
		if err != nil {
			return nil, err
		}
		base := filepath.Base(root)
		m.key = strings.TrimSuffix(base, filepath.Ext(base))
		return []*Manifest{m}, nil
	}

	files, err := ListDir(ctx, root)
	if err != nil {
		return nil, err
	}
	entries := Expand(root, files)
	logging.Debug("Manifest", "Found %d manifest files in %s", len(entries), root)

	results := make([]*Manifest, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := Load(entry.Path, opts)
			if err != nil {
				return err
			}
			m.key = entry.Key
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
