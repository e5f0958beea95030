package taskcore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/taskcore/taskcore/cache"
	"github.com/taskcore/taskcore/password"
	"github.com/taskcore/taskcore/session"
	"github.com/taskcore/taskcore/token"
)

// Builder assembles an [Engine] from its external collaborators. The
// process owns the Redis client and store connections: it connects them
// once at startup, hands them to the Builder, and releases them at
// shutdown.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users   UserStore
	tasks   TaskStore
	objects ObjectStorage

	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the task cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore sets the durable store for account records.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.users = store
	return b
}

// WithTaskStore sets the durable store for task records.
func (b *Builder) WithTaskStore(store TaskStore) *Builder {
	b.tasks = store
	return b
}

// WithObjectStorage sets the avatar object-storage collaborator.
// Optional; without it the avatar operations fail with
// [ErrStorageDisabled].
func (b *Builder) WithObjectStorage(storage ObjectStorage) *Builder {
	b.objects = storage
	return b
}

// WithAuditSink sets the sink receiving audit events. Audit must also be
// enabled in [AuditConfig].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the logger used for swallowed cache errors.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires all components, and returns a
// ready Engine. A Builder can be used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user store required")
	}
	if b.tasks == nil {
		return nil, errors.New("task store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tm, err := token.NewManager(token.Config{
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		AccessSecret:  cloneBytes(cfg.JWT.AccessSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       cfg,
		users:        b.users,
		tasks:        b.tasks,
		objects:      b.objects,
		tokens:       tm,
		passwordHash: ph,
	}

	engine.sessions = session.NewRegistry(
		&userTokenSource{users: b.users},
		cfg.Security.MaxRefreshTokensPerUser,
	)
	engine.cache = cache.New(b.redis, cfg.Cache.TTL, b.logger)
	engine.repo = newTaskRepository(engine.cache, b.tasks, cfg.Cache.Prefix, cfg.Query.DefaultLimit)
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.repo.metrics = engine.metrics

	b.built = true

	return engine, nil
}

// userTokenSource adapts the UserStore to the session registry's narrow
// persistence interface.
type userTokenSource struct {
	users UserStore
}

func (s *userTokenSource) RefreshTokens(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.RefreshTokens, nil
}

func (s *userTokenSource) SetRefreshTokens(ctx context.Context, userID string, tokens []string) error {
	return s.users.UpdateRefreshTokens(ctx, userID, tokens)
}
