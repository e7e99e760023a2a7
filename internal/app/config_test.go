package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"soma/internal/manifest"
	"soma/internal/provider"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DirectoryKeys(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "app.json"), `{"name": "X"}`)
	writeFile(t, filepath.Join(root, "config", "mail", "driver.json"), `{"driver": "smtp"}`)
	a := newTestApp(t, root, nil)

	require.NoError(t, a.Bootstrap(context.Background(), root, ""))
	assert.Equal(t, "X", a.Config().Get("app.name", nil))
	assert.Equal(t, "smtp", a.Config().Get("mail.driver.driver", nil))
}

func TestLoadConfig_SingleFile(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	file := filepath.Join(root, "settings.toml")
	writeFile(t, file, "debug = true\n")

	a := New(Options{})
	a.RegisterPath("storage", filepath.Join(root, "storage"))
	require.NoError(t, a.RegisterConfig(context.Background(), file))
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))

	assert.Equal(t, true, a.Config().Get("settings.debug", nil))
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "etc", "app.json"), `{"name": "from-env"}`)
	testEnv(t, map[string]string{"APP_CONFIG": filepath.Join(root, "etc")})

	a := New(Options{})
	a.RegisterPath("storage", filepath.Join(root, "storage"))
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))

	assert.Equal(t, "from-env", a.Config().GetString("app.name", ""))
	assert.Len(t, a.Configs(), 1)
}

func TestLoadConfig_MissingSource(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	a := New(Options{})
	a.RegisterPath("storage", filepath.Join(root, "storage"))
	a.RegisterPath("config", filepath.Join(root, "missing"))

	err := a.Bootstrap(context.Background(), root, "")
	assert.True(t, manifest.IsNotFound(err))
}

func TestLoadConfig_CompiledCache(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	source := filepath.Join(root, "config", "app.json")
	writeFile(t, source, `{"name": "X"}`)

	first := newTestApp(t, root, nil)
	require.NoError(t, first.Bootstrap(context.Background(), root, ""))
	require.NoError(t, first.Install())
	require.NoError(t, first.LoadConfig(context.Background(), true))

	cachePath := first.Paths().GetString("cache.config", "")
	require.FileExists(t, cachePath)
	manifests, err := os.ReadDir(first.Paths().GetString("cache.manifests", ""))
	require.NoError(t, err)
	assert.Len(t, manifests, 1)

	// The compiled configuration is used as long as it exists.
	writeFile(t, source, `{"name": "Y"}`)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(source, later, later))

	cached := newTestApp(t, root, nil)
	require.NoError(t, cached.Bootstrap(context.Background(), root, ""))
	assert.Equal(t, "X", cached.Config().GetString("app.name", ""))

	// Forcing a reload goes back to the sources; the stale manifest cache
	// is ignored because the source is newer.
	require.NoError(t, cached.LoadConfig(context.Background(), true))
	assert.Equal(t, "Y", cached.Config().GetString("app.name", ""))
}

func TestLoadConfig_OptimizeOff(t *testing.T) {
	testEnv(t, map[string]string{"APP_OPTIMIZE": "false"})
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "app.json"), `{"name": "X"}`)

	a := newTestApp(t, root, nil)
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))
	require.NoError(t, a.Install())
	require.NoError(t, a.LoadConfig(context.Background(), true))

	assert.NoFileExists(t, a.Paths().GetString("cache.config", ""))
}

func TestRegisterConfig_ReloadsWhenReady(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	a := newTestApp(t, root, nil)
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))

	extra := filepath.Join(root, "extra.yaml")
	writeFile(t, extra, "level: 3\n")
	require.NoError(t, a.RegisterConfig(context.Background(), extra, extra))

	assert.Equal(t, int64(3), a.Config().Get("extra.level", nil))
	assert.Len(t, a.Configs(), 2)
}

func TestApplyConfig_Resources(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "config", "app.json"), `{
		"paths": {"themes": "/srv/themes", "uploads": {"images": "/srv/img"}},
		"urls": {"cdn": "https://cdn.example.com"},
		"aliases": {"Mailer": "mailer"},
		"definitions": {"mailer": "smtp", "mail.default": "@mailer"},
		"commands": ["mail:send"]
	}`)

	catalog := provider.NewCatalog().Command(provider.Command{
		ID:  "mail:send",
		New: func(provider.Host) *cobra.Command { return &cobra.Command{Use: "mail:send"} },
	})
	a := newTestApp(t, root, catalog)
	require.NoError(t, a.Bootstrap(context.Background(), root, ""))

	assert.Equal(t, "/srv/themes", a.Paths().GetString("themes", ""))
	assert.Equal(t, "/srv/img", a.Paths().GetString("uploads.images", ""))
	assert.Equal(t, "https://cdn.example.com", a.URLs().GetString("cdn", ""))

	for _, id := range []string{"mailer", "mail.default", "Mailer", "acme.mail.Mailer"} {
		v, err := a.Get(id)
		require.NoError(t, err, id)
		assert.Equal(t, "smtp", v, id)
	}
	assert.Equal(t, map[string]string{"Mailer": "mailer"}, a.Aliases())

	cmd, err := a.Get("mail:send")
	require.NoError(t, err)
	assert.Equal(t, "mail:send", cmd.(*cobra.Command).Use)
	require.Len(t, a.Console().Commands(), 1)

	summary := a.Export()
	assert.Equal(t, "testing", summary.Stage)
	assert.Equal(t, []string{"mail:send"}, summary.Commands)
	assert.Equal(t, "ready", summary.State)
	assert.Equal(t, "/srv/themes", summary.Paths["themes"])
}

func TestRegisterCommand(t *testing.T) {
	testEnv(t, nil)
	root := t.TempDir()
	a := newTestApp(t, root, nil)

	assert.True(t, provider.IsUnknownProvider(a.RegisterProvider("x")))
	assert.Error(t, a.RegisterCommand("unknown"))
	assert.Error(t, a.RegisterCommand(42))

	require.NoError(t, a.Bootstrap(context.Background(), root, ""))
	require.NoError(t, a.RegisterCommand(provider.Command{
		ID:  "late",
		New: func(provider.Host) *cobra.Command { return &cobra.Command{Use: "late"} },
	}))

	ok, err := a.Has("late")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, a.Commands(), 1)
}
