package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memFs(t *testing.T) afero.Fs {
	t.Helper()
	old := AppFs
	fs := afero.NewMemMapFs()
	AppFs = fs
	t.Cleanup(func() { AppFs = old })
	return fs
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres", cfg.Database.Provider)
	assert.Equal(t, []string{"sample"}, cfg.Generators.Scopes)
	assert.Equal(t, "ru", cfg.I18n.DefaultLanguage)
	assert.False(t, cfg.Features.FullScan)
	assert.False(t, cfg.Features.Info)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigWithoutFile(t *testing.T) {
	memFs(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/app")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "postgres://localhost/app", cfg.Database.URL)
}

func TestLoadConfigFromFile(t *testing.T) {
	fs := memFs(t)
	require.NoError(t, afero.WriteFile(fs, "/etc/restdb/config.yaml", []byte(`
server:
  addr: ":9000"
  base_path: /restdb/
  read_timeout: 5s
database:
  provider: mysql
  url: root@tcp(localhost)/app
  default_schema: app
features:
  full_scan: true
generators:
  scopes: [app, sample]
  templates: ["/etc/restdb/*.gen.yaml"]
i18n:
  default_language: en
`), 0644))

	cfg, err := LoadConfig("/etc/restdb/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "/etc/restdb/config.yaml", cfg.File)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/restdb", cfg.Server.BasePath)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "mysql", cfg.Database.Provider)
	assert.Equal(t, "app", cfg.Database.DefaultSchema)
	assert.True(t, cfg.Features.FullScan)
	assert.Equal(t, []string{"app", "sample"}, cfg.Generators.Scopes)
	assert.Equal(t, []string{"/etc/restdb/*.gen.yaml"}, cfg.Generators.Templates)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	memFs(t)
	_, err := LoadConfig("/nowhere.yaml")
	assert.Error(t, err)
}

func TestEnvironmentOverrides(t *testing.T) {
	memFs(t)
	t.Setenv("RESTDB_SERVER_ADDR", ":7000")
	t.Setenv("RESTDB_FEATURES_INFO", "true")
	t.Setenv("RESTDB_DATABASE_PROVIDER", "sqlite")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.True(t, cfg.Features.Info)
	assert.Equal(t, "sqlite", cfg.Database.Provider)
}

func TestDotEnvFiles(t *testing.T) {
	fs := memFs(t)
	t.Setenv("RESTDB_LOG_LEVEL", "warn")
	t.Setenv("DATABASE_URL", "")
	t.Cleanup(func() { os.Unsetenv("RESTDB_TELEMETRY_TYPE") })

	require.NoError(t, afero.WriteFile(fs, ".env", []byte("RESTDB_LOG_LEVEL=debug\nRESTDB_TELEMETRY_TYPE=memory\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("DATABASE_URL=file:local.db\n"), 0644))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level, ".env must not override the environment")
	assert.Equal(t, "memory", cfg.Telemetry.Type)
	assert.Equal(t, "file:local.db", cfg.Database.URL, ".env.local overrides")
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*Config){
		"provider":  func(c *Config) { c.Database.Provider = "oracle" },
		"base path": func(c *Config) { c.Server.BasePath = "restdb" },
		"scopes":    func(c *Config) { c.Generators.Scopes = nil },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	memFs(t)

	cfg := Default()
	cfg.Database.Provider = "sqlite"
	cfg.Database.URL = "file:app.db"
	cfg.Features.Info = true
	cfg.Generators.Scopes = []string{"app"}

	path, err := SaveConfig(cfg, "/work/.restdb.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/work/.restdb.yaml", path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", loaded.Database.Provider)
	assert.Equal(t, "file:app.db", loaded.Database.URL)
	assert.True(t, loaded.Features.Info)
	assert.Equal(t, []string{"app"}, loaded.Generators.Scopes)
	assert.Equal(t, cfg.Server.ReadTimeout, loaded.Server.ReadTimeout)
}
