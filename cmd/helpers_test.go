package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"soma/internal/container"
	"soma/internal/provider"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testEnv pins every APP_* variable so the host environment cannot leak in.
func testEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_PATH":     "",
		"APP_URL":      "",
		"APP_STAGE":    "testing",
		"APP_DEBUG":    "false",
		"APP_OPTIMIZE": "false",
		"APP_CONFIG":   "",
		"APP_STORAGE":  "",
		"APP_TIMEZONE": "",
	} {
		t.Setenv(k, v)
	}
}

// newRoot creates an application root whose config/app.json holds appJSON.
func newRoot(t *testing.T, appJSON string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))
	if appJSON != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, "config", "app.json"), []byte(appJSON), 0o644))
	}
	return root
}

// execute runs args in a fresh session and returns what was written to
// stdout.
func execute(t *testing.T, catalog *provider.Catalog, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	s := newSession(catalog, &out, &errOut)
	err := s.execute(context.Background(), s.newRootCmd(), args)
	return out.String(), err
}

// mailProvider takes part in the install track.
type mailProvider struct {
	installs *int
	fail     error
}

func (p *mailProvider) Name() string { return "mail" }

func (p *mailProvider) Install(*container.Container) error {
	*p.installs++
	return p.fail
}

func (p *mailProvider) Uninstall(*container.Container) error { return nil }

func mailCatalog(installs *int, fail error) *provider.Catalog {
	c := DefaultCatalog()
	c.Provide("mail", func(provider.Host) (provider.Provider, error) {
		return &mailProvider{installs: installs, fail: fail}, nil
	})
	c.Command(provider.Command{
		ID: "mail:send",
		New: func(h provider.Host) *cobra.Command {
			return &cobra.Command{
				Use: "mail:send",
				RunE: func(cmd *cobra.Command, args []string) error {
					cmd.Printf("sent via %s\n", h.Config().GetString("mail.driver", "none"))
					return nil
				},
			}
		},
	})
	return c
}
