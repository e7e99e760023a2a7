package container

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"soma/internal/manifest"
	"soma/pkg/logging"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
)

// SnapshotFile is the name of the compiled container inside the cache directory.
const SnapshotFile = "container.json.zst"

// Snapshot describes a built definition graph.
type Snapshot struct {
	Fingerprint string          `json:"fingerprint"`
	Entries     []SnapshotEntry `json:"entries"`
}

// SnapshotEntry is one id of the graph.
type SnapshotEntry struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Source     string `json:"source"`
	Target     string `json:"target,omitempty"`
	Extensions int    `json:"extensions,omitempty"`
}

// Describe captures the current definition graph of c.
func Describe(c *Container) *Snapshot {
	ids := c.IDs()

	c.st.mu.RLock()
	entries := make([]SnapshotEntry, 0, len(ids))
	for _, id := range ids {
		def := c.st.defs[id]
		entries = append(entries, SnapshotEntry{
			ID:         id,
			Kind:       def.Kind.String(),
			Source:     c.st.sources[id],
			Target:     def.Target,
			Extensions: len(c.st.exts[id]),
		})
	}
	c.st.mu.RUnlock()

	s := &Snapshot{Entries: entries}
	body, _ := sonic.Marshal(entries)
	sum := sha256.Sum256(body)
	s.Fingerprint = hex.EncodeToString(sum[:])
	return s
}

// WriteSnapshot compresses the graph of c into dir. The file is left alone
// when its fingerprint already matches. It returns the snapshot path.
func WriteSnapshot(dir string, c *Container) (string, error) {
	path := filepath.Join(dir, SnapshotFile)
	snap := Describe(c)

	if existing, err := ReadSnapshot(path); err == nil && existing.Fingerprint == snap.Fingerprint {
		logging.Debug("Container", "Snapshot %s is up to date", path)
		return path, nil
	}

	body, err := sonic.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return "", err
	}
	defer enc.Close()

	if err := manifest.WriteFileAtomic(path, enc.EncodeAll(body, nil), 0o644); err != nil {
		return "", err
	}
	logging.Debug("Container", "Wrote snapshot of %d definitions to %s", len(snap.Entries), path)
	return path, nil
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	body, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot %s: %w", path, err)
	}
	var s Snapshot
	if err := sonic.Unmarshal(body, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
	}
	return &s, nil
}
