package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"soma/pkg/logging"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// FileName is the dotenv file looked up next to the application root.
const FileName = ".env"

// Environment is the APP_* block read at bootstrap.
type Environment struct {
	Path     string `envconfig:"APP_PATH"`
	URL      string `envconfig:"APP_URL"`
	Stage    string `envconfig:"APP_STAGE" default:"production"`
	Debug    bool   `envconfig:"APP_DEBUG" default:"false"`
	Optimize bool   `envconfig:"APP_OPTIMIZE" default:"true"`
	Config   string `envconfig:"APP_CONFIG"`
	Storage  string `envconfig:"APP_STORAGE"`
	Timezone string `envconfig:"APP_TIMEZONE"`
}

// Load decodes the APP_* variables from the process environment.
func Load() (*Environment, error) {
	var e Environment
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	if e.Stage == "" {
		e.Stage = "production"
	}
	return &e, nil
}

// LoadDotenv reads the .env file from dir, or from its parent when dir has
// none, into the process environment. Variables that are already set are
// left untouched. It returns the file that was read, or "" when there was
// none.
func LoadDotenv(dir string) (string, error) {
	path := findDotenv(dir)
	if path == "" {
		return "", nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	var applied int
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return "", fmt.Errorf("failed to set %s: %w", name, err)
		}
		applied++
	}

	logging.Debug("Environment", "Loaded %d variables from %s", applied, path)
	return path, nil
}

func findDotenv(dir string) string {
	if dir == "" {
		return ""
	}
	for _, candidate := range []string{dir, filepath.Dir(dir)} {
		path := filepath.Join(candidate, FileName)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Environment", "Cannot stat %s: %v", path, err)
		}
	}
	return ""
}

// Get returns the named variable or def when it is unset.
func Get(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}
