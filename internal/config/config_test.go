package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, ":9090", cfg.Transport.Addr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "hakari", cfg.Mongo.Database)
	assert.Equal(t, 4, cfg.Tasks.Workers)
	assert.Equal(t, "mongo", cfg.Store.Driver)
	assert.False(t, cfg.Log.Dev)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9999"
auth:
  jwt_secret: "file-secret"
store:
  driver: memory
tasks:
  workers: 2
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 2, cfg.Tasks.Workers)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("HAKARI_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("HAKARI_TASKS_WORKERS", "8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 8, cfg.Tasks.Workers)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Error(t, cfg.Validate(), "missing jwt secret")

	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())

	cfg.Store.Driver = "postgres"
	assert.Error(t, cfg.Validate())

	cfg.Store.Driver = "memory"
	cfg.Tasks.Workers = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
