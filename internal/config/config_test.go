package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erpinterno/erpadmin/internal/config"
)

func TestConfig_Defaults(t *testing.T) {
	c := config.New()

	require.Equal(t, "ERP Admin", c.GetAppName())
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	require.Equal(t, "/dashboard", c.GetLandingRoute())
	require.Equal(t, "info", c.GetLogLevel())
	require.NotEmpty(t, c.GetStateFilePath())
	require.Empty(t, c.GetPublicPaths())
}

func TestConfig_FileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://erp.example.com/api
landing: /inicio
public_paths:
  - /health
  - /docs/*
`), 0o600))

	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://erp.example.com/api", c.GetAPIBaseURL())
	require.Equal(t, "/inicio", c.GetLandingRoute())
	require.Equal(t, []string{"/health", "/docs/*"}, c.GetPublicPaths())
	// Untouched keys keep their defaults.
	require.Equal(t, "ERP Admin", c.GetAppName())
}

func TestConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: https://file.example.com\n"), 0o600))

	t.Setenv("ERPADMIN_API_URL", "https://env.example.com")
	t.Setenv("ERPADMIN_PUBLIC_PATHS", "/health, /metrics")

	c, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "https://env.example.com", c.GetAPIBaseURL())
	require.Equal(t, []string{"/health", "/metrics"}, c.GetPublicPaths())
}

func TestConfig_MissingFileIsNotAnError(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
}

func TestConfig_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: [broken"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
