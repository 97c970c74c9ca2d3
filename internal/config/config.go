// Package config resolves client configuration from an optional YAML file
// overridden by environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the read surface the rest of the client consumes.
type Config interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetStateFilePath() string
	GetSealKey() string
	GetPublicPaths() []string
	GetLandingRoute() string
	GetLogLevel() string
}

const (
	apiURLEnvVar      = "ERPADMIN_API_URL"
	stateFileEnvVar   = "ERPADMIN_STATE_FILE"
	sealKeyEnvVar     = "ERPADMIN_SEAL_KEY"
	publicPathsEnvVar = "ERPADMIN_PUBLIC_PATHS"
	landingEnvVar     = "ERPADMIN_LANDING"
	logLevelEnvVar    = "ERPADMIN_LOG_LEVEL"
	appNameEnvVar     = "ERPADMIN_APP_NAME"
)

// fileConfig is the YAML overlay shape.
type fileConfig struct {
	AppName     string   `yaml:"app_name"`
	APIBaseURL  string   `yaml:"api_base_url"`
	StateFile   string   `yaml:"state_file"`
	SealKey     string   `yaml:"seal_key"`
	PublicPaths []string `yaml:"public_paths"`
	Landing     string   `yaml:"landing"`
	LogLevel    string   `yaml:"log_level"`
}

type mainConfig struct {
	file fileConfig
}

// New resolves configuration from environment variables only.
func New() Config {
	return &mainConfig{}
}

// Load resolves configuration from a YAML file, with environment variables
// taking precedence. A missing file is not an error; only an unreadable or
// malformed one is.
func Load(path string) (Config, error) {
	c := &mainConfig{}
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrap(err, "[config.Load] read config file")
	}
	if err := yaml.Unmarshal(b, &c.file); err != nil {
		return nil, errors.Wrap(err, "[config.Load] parse config file")
	}
	return c, nil
}

func (c *mainConfig) GetAppName() string {
	return c.resolve(appNameEnvVar, c.file.AppName, "ERP Admin")
}

func (c *mainConfig) GetAPIBaseURL() string {
	return c.resolve(apiURLEnvVar, c.file.APIBaseURL, "http://localhost:8000")
}

func (c *mainConfig) GetStateFilePath() string {
	return c.resolve(stateFileEnvVar, c.file.StateFile, defaultStateFile())
}

func (c *mainConfig) GetSealKey() string {
	return c.resolve(sealKeyEnvVar, c.file.SealKey, "")
}

func (c *mainConfig) GetPublicPaths() []string {
	if v := os.Getenv(publicPathsEnvVar); v != "" {
		return splitPaths(v)
	}
	return c.file.PublicPaths
}

func (c *mainConfig) GetLandingRoute() string {
	return c.resolve(landingEnvVar, c.file.Landing, "/dashboard")
}

func (c *mainConfig) GetLogLevel() string {
	return c.resolve(logLevelEnvVar, c.file.LogLevel, "info")
}

func (c *mainConfig) resolve(envVar, fileValue, defaultValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}

func splitPaths(v string) []string {
	parts := strings.Split(v, ",")
	paths := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".erpadmin/state.json"
	}
	return filepath.Join(dir, "erpadmin", "state.json")
}
