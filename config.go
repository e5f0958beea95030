package taskcore

import (
	"errors"
	"net/http"
	"time"
)

// Config defines engine behavior. Instances are set up once before
// [Builder.Build] and treated as immutable afterwards.
type Config struct {
	JWT      JWTConfig
	Cache    CacheConfig
	Password PasswordConfig
	Query    QueryConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// JWTConfig holds token lifetimes and per-kind signing secrets. The two
// secrets MUST differ: a shared secret would let a refresh token be
// replayed as an access token.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Leeway        time.Duration
}

// CacheConfig controls the read-through task cache.
type CacheConfig struct {
	// Prefix namespaces all cache keys.
	Prefix string
	// TTL is the lifetime of list and stats entries. Defaults to 300s.
	TTL time.Duration
}

// PasswordConfig holds the Argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// QueryConfig controls list pagination defaults.
type QueryConfig struct {
	DefaultLimit int
}

// SecurityConfig carries transport-facing policy the engine exposes to
// its HTTP layer plus the optional session-registry cap.
type SecurityConfig struct {
	ProductionMode       bool
	RequireSecureCookies bool
	SameSitePolicy       http.SameSite

	// MaxRefreshTokensPerUser caps the per-user refresh-token list at
	// the newest N entries. Zero leaves the list unbounded.
	MaxRefreshTokensPerUser int
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the documented defaults: 15 minute access tokens,
// 7 day refresh tokens, 300 second cache TTL, page size 10.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "taskcore",
		},
		Cache: CacheConfig{
			Prefix: "tasks",
			TTL:    300 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Query: QueryConfig{
			DefaultLimit: 10,
		},
		Security: SecurityConfig{
			SameSitePolicy: http.SameSiteLaxMode,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate checks the configuration for internal consistency.
func (c Config) Validate() error {
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT TTLs must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if len(c.JWT.AccessSecret) == 0 || len(c.JWT.RefreshSecret) == 0 {
		return errors.New("JWT access and refresh secrets are required")
	}
	if string(c.JWT.AccessSecret) == string(c.JWT.RefreshSecret) {
		return errors.New("JWT access and refresh secrets must differ")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT leeway out of range")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache TTL must not be negative")
	}
	if c.Cache.Prefix == "" {
		return errors.New("cache prefix is required")
	}
	if c.Query.DefaultLimit <= 0 {
		return errors.New("default query limit must be positive")
	}
	if c.Security.MaxRefreshTokensPerUser < 0 {
		return errors.New("refresh token cap must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
