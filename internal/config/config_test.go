package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const baseTOML = `
environment = "test"

[server]
http_port = 9000
api_key = "base-key"
request_timeout = 5

[triton]
faceid_host = "triton.local"
faceid_grpc_port = 8001

[logger]
level = "debug"

[app]
name = "faceid-gateway-test"
`

func writeBaseConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(baseTOML), 0o600))
	return path
}

func TestLoadReadsBaseFile(t *testing.T) {
	path := writeBaseConfig(t)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9000, cfg.Server.HTTPPort)
	require.Equal(t, "base-key", cfg.Server.APIKey)
	require.Equal(t, "triton.local:8001", cfg.Triton.Address())
	require.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeBaseConfig(t)
	t.Setenv("SERVER__API_KEY", "env-key")
	t.Setenv("SERVER__HTTP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "env-key", cfg.Server.APIKey)
	require.Equal(t, 9100, cfg.Server.HTTPPort)
}

func TestLoadFillsDefaultsWhenUnset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`environment = "test"`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.HTTPPort)
	require.Equal(t, 20, cfg.Server.RequestTimeout)
	require.Equal(t, "info", cfg.Logger.Level)
	require.Equal(t, "faceid-gateway", cfg.App.Name)
}

func TestLoadErrorsOnMissingBaseFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestServerConfigTimeoutConvertsSeconds(t *testing.T) {
	s := ServerConfig{RequestTimeout: 30}
	require.Equal(t, int64(30), s.Timeout().Milliseconds()/1000)
}
