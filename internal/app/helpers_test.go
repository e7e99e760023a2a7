package app

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"soma/internal/container"
	"soma/internal/provider"

	"github.com/stretchr/testify/require"
)

// testEnv pins every APP_* variable so the host environment cannot leak in.
func testEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	vars := map[string]string{
		"APP_PATH":     "",
		"APP_URL":      "",
		"APP_STAGE":    "testing",
		"APP_DEBUG":    "false",
		"APP_OPTIMIZE": "true",
		"APP_CONFIG":   "",
		"APP_STORAGE":  "",
		"APP_TIMEZONE": "",
	}
	for k, v := range overrides {
		vars[k] = v
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}
}

// newTestApp returns an application rooted in root with storage and config
// directories registered.
func newTestApp(t *testing.T, root string, catalog *provider.Catalog) *Application {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	a := New(Options{Catalog: catalog, Output: io.Discard})
	a.RegisterPath("storage", filepath.Join(root, "storage"))
	a.RegisterPath("config", filepath.Join(root, "config"))
	return a
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// lifecycleProvider records every hook it runs.
type lifecycleProvider struct {
	name  string
	calls *[]string
	defs  container.Definitions
}

func (p *lifecycleProvider) Name() string { return p.name }

func (p *lifecycleProvider) Register(*container.Container) error {
	*p.calls = append(*p.calls, p.name+":register")
	return nil
}

func (p *lifecycleProvider) Boot(*container.Container) error {
	*p.calls = append(*p.calls, p.name+":boot")
	return nil
}

func (p *lifecycleProvider) Ready(*container.Container) error {
	*p.calls = append(*p.calls, p.name+":ready")
	return nil
}

func (p *lifecycleProvider) Factories() container.Definitions { return p.defs }

// installProvider takes part in the install track.
type installProvider struct {
	name     string
	installs int
	refresh  int
	fail     error
}

func (p *installProvider) Name() string { return p.name }

func (p *installProvider) Install(*container.Container) error {
	p.installs++
	return p.fail
}

func (p *installProvider) Refresh(*container.Container) error {
	p.refresh++
	return p.fail
}

func count(calls []string, call string) int {
	n := 0
	for _, c := range calls {
		if c == call {
			n++
		}
	}
	return n
}
