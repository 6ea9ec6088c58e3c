package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultMaxUploadBytes, cfg.Storage.MaxUploadBytes)
	assert.Equal(t, "config.json", cfg.Storage.ConfigPath)
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yml := `
server:
  port: "9000"
admin:
  username: root
  password: secret
auth:
  session_ttl: 2h
storage:
  usage_scan_interval: 0s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o600))
	t.Setenv("FILEHOST_STORAGE_UPLOAD_DIR", "/srv/files")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, "secret", cfg.Admin.Password)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "/srv/files", cfg.Storage.UploadDir)
	assert.Zero(t, cfg.Storage.UsageScanInterval)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [unclosed"), 0o600))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Storage: StorageConfig{ConfigPath: "c.json", UploadDir: "u", MaxUploadBytes: 1},
			Admin:   AdminConfig{Username: "root", Password: "pw"},
			Auth:    AuthConfig{SessionTTL: time.Hour},
		}
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty admin", func(c *Config) { c.Admin.Username = " " }},
		{"empty password", func(c *Config) { c.Admin.Password = "" }},
		{"empty config path", func(c *Config) { c.Storage.ConfigPath = "" }},
		{"empty upload dir", func(c *Config) { c.Storage.UploadDir = "" }},
		{"zero upload cap", func(c *Config) { c.Storage.MaxUploadBytes = 0 }},
		{"zero ttl", func(c *Config) { c.Auth.SessionTTL = 0 }},
	}

	ok := base()
	require.NoError(t, ok.Validate())

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
