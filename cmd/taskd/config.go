package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taskcore/taskcore"
)

// fileConfig is the on-disk YAML shape for taskd.
type fileConfig struct {
	Listen      string `yaml:"listen"`
	Development bool   `yaml:"development"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	JWT struct {
		AccessSecret  string        `yaml:"accessSecret"`
		RefreshSecret string        `yaml:"refreshSecret"`
		AccessTTL     time.Duration `yaml:"accessTTL"`
		RefreshTTL    time.Duration `yaml:"refreshTTL"`
		Issuer        string        `yaml:"issuer"`
	} `yaml:"jwt"`

	Cache struct {
		Prefix string        `yaml:"prefix"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	Security struct {
		SecureCookies           bool `yaml:"secureCookies"`
		MaxRefreshTokensPerUser int  `yaml:"maxRefreshTokensPerUser"`
	} `yaml:"security"`

	Audit struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"audit"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

func loadConfig(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &fileConfig{
		Listen: ":8080",
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Environment overrides for values that don't belong in a file.
	if v := os.Getenv("TASKD_POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("TASKD_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("TASKD_JWT_ACCESS_SECRET"); v != "" {
		cfg.JWT.AccessSecret = v
	}
	if v := os.Getenv("TASKD_JWT_REFRESH_SECRET"); v != "" {
		cfg.JWT.RefreshSecret = v
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres.dsn is required")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis.addr is required")
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return nil, fmt.Errorf("jwt.accessSecret and jwt.refreshSecret are required")
	}

	return cfg, nil
}

// engineConfig folds the file values onto the engine defaults.
func (c *fileConfig) engineConfig() taskcore.Config {
	cfg := taskcore.DefaultConfig()

	cfg.JWT.AccessSecret = []byte(c.JWT.AccessSecret)
	cfg.JWT.RefreshSecret = []byte(c.JWT.RefreshSecret)
	if c.JWT.AccessTTL > 0 {
		cfg.JWT.AccessTTL = c.JWT.AccessTTL
	}
	if c.JWT.RefreshTTL > 0 {
		cfg.JWT.RefreshTTL = c.JWT.RefreshTTL
	}
	if c.JWT.Issuer != "" {
		cfg.JWT.Issuer = c.JWT.Issuer
	}

	if c.Cache.Prefix != "" {
		cfg.Cache.Prefix = c.Cache.Prefix
	}
	if c.Cache.TTL > 0 {
		cfg.Cache.TTL = c.Cache.TTL
	}

	cfg.Security.ProductionMode = !c.Development
	cfg.Security.RequireSecureCookies = c.Security.SecureCookies
	cfg.Security.SameSitePolicy = http.SameSiteLaxMode
	cfg.Security.MaxRefreshTokensPerUser = c.Security.MaxRefreshTokensPerUser

	cfg.Audit.Enabled = c.Audit.Enabled
	cfg.Metrics.Enabled = c.Metrics.Enabled

	return cfg
}
