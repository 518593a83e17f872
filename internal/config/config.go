// Package config loads auditlens settings from an optional YAML file, a
// .env file and AUDITLENS_* environment variables.
//
// Precedence, highest first: flags bound by the caller, environment,
// config file, defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// AUDITLENS_DATABASE_DSN.
const EnvPrefix = "AUDITLENS"

// Config is the resolved runtime configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Query    QueryConfig    `mapstructure:"query"`
	Display  DisplayConfig  `mapstructure:"display"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Queries bool   `mapstructure:"queries"`
}

type QueryConfig struct {
	// Timeout bounds each operation; zero disables the deadline.
	Timeout time.Duration `mapstructure:"timeout"`
}

type DisplayConfig struct {
	MaxRecords int `mapstructure:"max_records"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{Driver: "sqlite3", DSN: "auditlens.db"},
		Log:      LogConfig{Level: "info"},
		Query:    QueryConfig{Timeout: 30 * time.Second},
		Display:  DisplayConfig{MaxRecords: 1000},
		HTTP:     HTTPConfig{Addr: ":8080"},
	}
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. When empty, auditlens.yaml in the
	// working directory is read if present.
	File string
	// EnvFile is loaded into the process environment before env lookup.
	// A missing file is ignored. Defaults to ".env".
	EnvFile string
}

// Load resolves a Config into v. Callers bind flags to v (keys such as
// "database.dsn") before calling Load so that flags take precedence.
func Load(v *viper.Viper, opts Options) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	setDefaults(v, Defaults())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else {
		v.SetConfigName("auditlens")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("config: database.driver must be sqlite3 or pgx, got %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database.dsn is required")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	if c.Query.Timeout < 0 {
		return fmt.Errorf("config: query.timeout must not be negative, got %s", c.Query.Timeout)
	}
	if c.Display.MaxRecords <= 0 {
		return fmt.Errorf("config: display.max_records must be positive, got %d", c.Display.MaxRecords)
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.queries", d.Log.Queries)
	v.SetDefault("query.timeout", d.Query.Timeout)
	v.SetDefault("display.max_records", d.Display.MaxRecords)
	v.SetDefault("http.addr", d.HTTP.Addr)
}
