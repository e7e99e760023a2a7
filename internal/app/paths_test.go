package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"soma/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstall_CreatesDirectoriesAndLink(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	a := New(Options{})
	a.RegisterPath("storage", filepath.Join(root, "var"))
	a.RegisterPath("config", filepath.Join(root, "config"))
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))

	require.NoError(t, a.Install())
	for _, name := range runtimeDirectories {
		assert.DirExists(t, a.Paths().GetString(name, ""), name)
	}

	link := a.Paths().GetString("storage.link", "")
	target, err := os.Readlink(link)
	require.NoError(t, err)
	want, err := realpath(a.Paths().GetString("storage.public", ""))
	require.NoError(t, err)
	assert.Equal(t, want, target)

	// Idempotent.
	require.NoError(t, a.Install())
}

func TestClearCache_Manifests(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	a := newTestApp(t, root, nil)
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))
	require.NoError(t, a.Install())

	manifests := a.Paths().GetString("cache.manifests", "")
	containerDir := a.Paths().GetString("cache.container", "")
	writeFile(t, filepath.Join(manifests, "a.json"), "{}")
	writeFile(t, filepath.Join(manifests, "nested", "b.json"), "{}")
	writeFile(t, filepath.Join(containerDir, "container.json.zst"), "x")

	require.NoError(t, a.ClearCache("manifests"))

	entries, err := os.ReadDir(manifests)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.FileExists(t, filepath.Join(containerDir, "container.json.zst"))
	assert.Equal(t, 1, a.Events().Fired(events.CacheClear("manifests")))
	assert.Equal(t, 1, a.Events().Fired(events.AppCacheClear))
	assert.Zero(t, a.Events().Fired(events.CacheClear("app")))
}

func TestClearCache_All(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	a := newTestApp(t, root, nil)
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))
	require.NoError(t, a.Install())

	cache := a.Paths().GetString("cache", "")
	files := []string{
		filepath.Join(a.Paths().GetString("cache.manifests", ""), "a.json"),
		filepath.Join(a.Paths().GetString("cache.container", ""), "container.json.zst"),
		filepath.Join(a.Paths().GetString("cache.public", ""), "thumb.png"),
		a.Paths().GetString("cache.config", ""),
		filepath.Join(cache, "loose.txt"),
	}
	for _, f := range files {
		writeFile(t, f, "x")
	}

	require.NoError(t, a.ClearCache(""))
	for _, f := range files {
		assert.NoFileExists(t, f)
	}
	for _, key := range []string{"cache.public", "cache.manifests", "cache.container"} {
		assert.DirExists(t, a.Paths().GetString(key, ""), key)
	}
	assert.Equal(t, 1, a.Events().Fired(events.CacheClear("app")))
	assert.Equal(t, 1, a.Events().Fired(events.AppCacheClear))
}

func TestClearCache_BeforeReady(t *testing.T) {
	a := New(Options{})
	require.NoError(t, a.ClearCache("manifests"))
	assert.Zero(t, a.Events().Fired(events.CacheClear("manifests")))
	assert.Equal(t, 1, a.Events().Fired(events.AppCacheClear))
}
