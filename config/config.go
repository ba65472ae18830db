// Package config loads betadash settings from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"beta-dashboard/models"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given; a missing file is fine.
const DefaultPath = "betadash.yaml"

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DataConfig struct {
	Dir      string `yaml:"dir"`       // searched for the bank-beta file
	BetaFile string `yaml:"beta_file"` // auto-discovered bank-beta file name
}

type DashboardConfig struct {
	DefaultLanguage string `yaml:"default_language"`
}

type SearchConfig struct {
	Engine string `yaml:"engine"` // "bleve" or "memory"
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Search    SearchConfig    `yaml:"search"`
	Log       LogConfig       `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "localhost:8080",
			SessionTTL:      2 * time.Hour,
			MaxUploadBytes:  1 << 20,
			ShutdownTimeout: 5 * time.Second,
		},
		Data: DataConfig{
			Dir:      ".",
			BetaFile: "beta_comparison.json",
		},
		Dashboard: DashboardConfig{DefaultLanguage: string(models.English)},
		Search:    SearchConfig{Engine: "bleve"},
		Log:       LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies environment overrides and validates.
// A missing file is only an error when mustExist is set.
func Load(path string, mustExist bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !mustExist:
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("BETADASH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("BETADASH_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("BETADASH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("BETADASH_SEARCH_ENGINE"); v != "" {
		c.Search.Engine = v
	}
}

func (c *Config) Validate() error {
	if _, ok := models.ParseLanguage(c.Dashboard.DefaultLanguage); !ok {
		return fmt.Errorf("dashboard.default_language: unsupported language %q", c.Dashboard.DefaultLanguage)
	}
	switch c.Search.Engine {
	case "bleve", "memory":
	default:
		return fmt.Errorf("search.engine: unknown engine %q", c.Search.Engine)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}
	if c.Server.SessionTTL <= 0 {
		return errors.New("server.session_ttl must be positive")
	}
	if c.Data.BetaFile == "" {
		return errors.New("data.beta_file must not be empty")
	}
	return nil
}

// DefaultLanguage is the validated dashboard language.
func (c *Config) DefaultLanguage() models.Language {
	l, _ := models.ParseLanguage(c.Dashboard.DefaultLanguage)
	return l
}

// Save writes c as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
