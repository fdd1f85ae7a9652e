// Package config loads the pagedata configuration file.
//
// A configuration file is YAML:
//
//	store:
//	  backend: sqlite
//	  sqlite:
//	    path: ./data/pagedata.db
//	models:
//	  - ./models/display.yaml
//	watch: true
//	server:
//	  listen: ":8080"
//	telemetry:
//	  logging:
//	    level: debug
//
// Missing sections keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/openfroyo/pagedata/pkg/telemetry"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the application configuration.
type Config struct {
	Store StoreConfig `yaml:"store"`

	// Models are display model files loaded at startup. With the memory
	// backend they are the whole store; with sqlite they are imported on top
	// of what the database already holds.
	Models []string `yaml:"models" validate:"dive,required"`

	// Watch reloads the models when they change. Memory backend only.
	Watch bool `yaml:"watch"`

	Server    ServerConfig     `yaml:"server"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// StoreConfig selects and configures the metadata store.
type StoreConfig struct {
	Backend string       `yaml:"backend" validate:"required,oneof=memory sqlite"`
	SQLite  SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	Path            string        `yaml:"path" validate:"required_if=Enabled true"`
	MaxOpenConns    int           `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" validate:"gte=0"`

	// Enabled is set from Backend during validation.
	Enabled bool `yaml:"-"`
}

// ServerConfig configures the HTTP server of the serve command.
type ServerConfig struct {
	Listen          string        `yaml:"listen" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
			SQLite: SQLiteConfig{
				Path: "./data/pagedata.db",
			},
		},
		Server: ServerConfig{
			Listen:          "localhost:8080",
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Telemetry: *telemetry.DefaultConfig(),
	}
}

// Load reads path on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data into cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return cfg.Validate()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	c.Store.SQLite.Enabled = c.Store.Backend == BackendSQLite

	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Watch && c.Store.Backend != BackendMemory {
		return fmt.Errorf("invalid config: watch requires the %s backend", BackendMemory)
	}
	if c.Watch && len(c.Models) == 0 {
		return fmt.Errorf("invalid config: watch requires at least one model file")
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("invalid telemetry config: %w", err)
	}
	return nil
}
