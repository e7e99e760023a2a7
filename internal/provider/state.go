package provider

import (
	"errors"
	"io/fs"
	"os"
	"sort"

	"soma/internal/manifest"
)

// State is the persisted installed flag of every provider identity. It is
// the only state that survives a restart.
type State struct {
	path  string
	flags map[string]bool
}

// LoadState reads the installed state from path. A missing file is an
// empty state.
func LoadState(path string) (*State, error) {
	s := &State{path: path, flags: make(map[string]bool)}

	data, err := manifest.ParseFile(path)
	if err != nil {
		var notFound *manifest.NotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	for id, v := range data {
		installed, _ := v.(bool)
		s.flags[id] = installed
	}
	return s, nil
}

// Path is the file the state is saved to.
func (s *State) Path() string {
	return s.path
}

// Installed reports whether id is flagged installed.
func (s *State) Installed(id string) bool {
	return s.flags[id]
}

// Set records the installed flag of id.
func (s *State) Set(id string, installed bool) {
	s.flags[id] = installed
}

// InstalledIDs returns every identity flagged installed, sorted.
func (s *State) InstalledIDs() []string {
	var ids []string
	for id, ok := range s.flags {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Save writes the state atomically.
func (s *State) Save() error {
	data := make(map[string]any, len(s.flags))
	for id, v := range s.flags {
		data[id] = v
	}
	return manifest.DumpFile(s.path, data)
}

// Exists reports whether the state file is present on disk.
func (s *State) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}
