package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PATH", "/srv/app")
	t.Setenv("APP_STAGE", "")

	e, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/app", e.Path)
	assert.Equal(t, "production", e.Stage)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_STAGE", "staging")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("APP_OPTIMIZE", "false")
	t.Setenv("APP_TIMEZONE", "Europe/Berlin")

	e, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "staging", e.Stage)
	assert.True(t, e.Debug)
	assert.False(t, e.Optimize)
	assert.Equal(t, "Europe/Berlin", e.Timezone)
}

func TestLoad_InvalidBool(t *testing.T) {
	t.Setenv("APP_DEBUG", "maybe")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDotenv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	content := "SOMA_DOTENV_FRESH=from-file\nSOMA_DOTENV_SET=from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	t.Setenv("SOMA_DOTENV_SET", "from-process")
	t.Cleanup(func() { os.Unsetenv("SOMA_DOTENV_FRESH") })

	path, err := LoadDotenv(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)
	assert.Equal(t, "from-file", os.Getenv("SOMA_DOTENV_FRESH"))
	assert.Equal(t, "from-process", os.Getenv("SOMA_DOTENV_SET"))
}

func TestLoadDotenv_ParentDirectory(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "public")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, FileName), []byte("SOMA_DOTENV_PARENT=1\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SOMA_DOTENV_PARENT") })

	path, err := LoadDotenv(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, FileName), path)
	assert.Equal(t, "1", Get("SOMA_DOTENV_PARENT", ""))
}

func TestLoadDotenv_Missing(t *testing.T) {
	path, err := LoadDotenv(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
}
