// Package config loads restdb settings from a YAML file, RESTDB_* environment
// variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem configuration and template files are read from.
var AppFs = afero.NewOsFs()

const (
	// FileName is the config file name without extension.
	FileName = ".restdb"

	// EnvPrefix prefixes every environment override, e.g. RESTDB_SERVER_ADDR.
	EnvPrefix = "RESTDB"
)

// Config holds the application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Features   FeaturesConfig
	Generators GeneratorsConfig
	I18n       I18nConfig
	Log        LogConfig
	Telemetry  TelemetryConfig

	// File is the config file that was read, if any.
	File string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string
	BasePath     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig configures the connection.
type DatabaseConfig struct {
	Provider       string
	URL            string
	MaxConnections int
	MaxIdleTime    int // seconds
	ConnectTimeout int // seconds
	DefaultSchema  string
	ReturningKeys  bool
}

// FeaturesConfig toggles endpoints that are off by default.
type FeaturesConfig struct {
	// FullScan allows GET on a table without parameters.
	FullScan bool
	// Info enables the metadata endpoint.
	Info bool
}

// GeneratorsConfig configures query generators.
type GeneratorsConfig struct {
	Scopes    []string
	Templates []string
	Watch     bool
}

// I18nConfig configures message localization.
type I18nConfig struct {
	DefaultLanguage string
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string
	Format string
}

// TelemetryConfig selects the telemetry adapter.
type TelemetryConfig struct {
	Type string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_path", "")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("database.provider", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", 300)
	v.SetDefault("database.connect_timeout", 10)
	v.SetDefault("database.default_schema", "")
	v.SetDefault("database.returning_keys", false)
	v.SetDefault("features.full_scan", false)
	v.SetDefault("features.info", false)
	v.SetDefault("generators.scopes", []string{"sample"})
	v.SetDefault("generators.templates", []string{})
	v.SetDefault("generators.watch", false)
	v.SetDefault("i18n.default_language", "ru")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("telemetry.type", "noop")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadConfig loads configuration. When path is empty the config file is
// searched in the working directory, the home directory and
// ~/.config/restdb; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
			v.AddConfigPath(filepath.Join(home, ".config", "restdb"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := fromViper(v)
	cfg.File = v.ConfigFileUsed()
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	return cfg, cfg.Validate()
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         v.GetString("server.addr"),
			BasePath:     strings.TrimSuffix(v.GetString("server.base_path"), "/"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			Provider:       v.GetString("database.provider"),
			URL:            v.GetString("database.url"),
			MaxConnections: v.GetInt("database.max_connections"),
			MaxIdleTime:    v.GetInt("database.max_idle_time"),
			ConnectTimeout: v.GetInt("database.connect_timeout"),
			DefaultSchema:  v.GetString("database.default_schema"),
			ReturningKeys:  v.GetBool("database.returning_keys"),
		},
		Features: FeaturesConfig{
			FullScan: v.GetBool("features.full_scan"),
			Info:     v.GetBool("features.info"),
		},
		Generators: GeneratorsConfig{
			Scopes:    v.GetStringSlice("generators.scopes"),
			Templates: v.GetStringSlice("generators.templates"),
			Watch:     v.GetBool("generators.watch"),
		},
		I18n: I18nConfig{
			DefaultLanguage: v.GetString("i18n.default_language"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Telemetry: TelemetryConfig{
			Type: v.GetString("telemetry.type"),
		},
	}
}

// Default returns the built-in defaults.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Database.Provider {
	case "postgres", "postgresql", "mysql", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unsupported database provider: %s", c.Database.Provider)
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("server.base_path must start with /: %s", c.Server.BasePath)
	}
	if len(c.Generators.Scopes) == 0 {
		return errors.New("generators.scopes must name at least one scope")
	}
	return nil
}

// loadDotEnv applies .env without overriding the environment, then
// .env.local with override.
func loadDotEnv() error {
	for _, f := range []struct {
		name      string
		overwrite bool
	}{
		{".env", false},
		{".env.local", true},
	} {
		data, err := afero.ReadFile(AppFs, f.name)
		if err != nil {
			continue
		}
		env, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
		for k, val := range env {
			if _, set := os.LookupEnv(k); set && !f.overwrite {
				continue
			}
			if err := os.Setenv(k, val); err != nil {
				return err
			}
		}
	}
	return nil
}

// SaveConfig writes cfg as YAML. An empty path writes
// ~/.config/restdb/.restdb.yaml. It returns the path written.
func SaveConfig(cfg *Config, path string) (string, error) {
	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, ".config", "restdb", FileName+".yaml")
	}
	if err := AppFs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("server.base_path", cfg.Server.BasePath)
	v.Set("server.read_timeout", cfg.Server.ReadTimeout.String())
	v.Set("server.write_timeout", cfg.Server.WriteTimeout.String())
	v.Set("database.provider", cfg.Database.Provider)
	v.Set("database.url", cfg.Database.URL)
	v.Set("database.max_connections", cfg.Database.MaxConnections)
	v.Set("database.max_idle_time", cfg.Database.MaxIdleTime)
	v.Set("database.connect_timeout", cfg.Database.ConnectTimeout)
	v.Set("database.default_schema", cfg.Database.DefaultSchema)
	v.Set("database.returning_keys", cfg.Database.ReturningKeys)
	v.Set("features.full_scan", cfg.Features.FullScan)
	v.Set("features.info", cfg.Features.Info)
	v.Set("generators.scopes", cfg.Generators.Scopes)
	v.Set("generators.templates", cfg.Generators.Templates)
	v.Set("generators.watch", cfg.Generators.Watch)
	v.Set("i18n.default_language", cfg.I18n.DefaultLanguage)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("telemetry.type", cfg.Telemetry.Type)

	if err := v.WriteConfigAs(path); err != nil {
		return "", err
	}
	return path, nil
}
