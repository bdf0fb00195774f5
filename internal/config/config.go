package config

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"gopkg.in/yaml.v3"
)

type Config interface {
	EnvConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Session
}

// New returns a configuration backed by environment variables only.
func New() Config {
	return mainConfig{}
}

// Load reads an optional YAML file. Environment variables still take
// precedence over file values, and file values over built-in defaults.
// An empty path falls back to TRAVELS_CONFIG, and then to New().
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(configFileEnvVar)
	}
	if path == "" {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "[config Load] read %s", path)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("[config Load] %w: %s: %v", errors.ErrInvalidConfig, path, err)
	}

	return mainConfig{
		EnvVars: EnvVars{file: &fc},
		API:     API{file: &fc},
		Session: Session{file: &fc},
	}, nil
}

// FileConfig mirrors the optional YAML configuration file.
type FileConfig struct {
	AppName  string `yaml:"app_name"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`
	API      struct {
		BaseURL     string `yaml:"base_url"`
		Timeout     string `yaml:"timeout"`
		RefreshPath string `yaml:"refresh_path"`
		LoginRoute  string `yaml:"login_route"`
	} `yaml:"api"`
	Session struct {
		File       string `yaml:"file"`
		Passphrase string `yaml:"passphrase"`
	} `yaml:"session"`
}
