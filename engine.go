package taskcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskcore/taskcore/cache"
	"github.com/taskcore/taskcore/password"
	"github.com/taskcore/taskcore/session"
	"github.com/taskcore/taskcore/token"
)

// Engine is the authorization-aware core of the task service. It owns
// identity resolution, ownership enforcement, the session registry, and
// the cache-coherent task repository. Engine methods are safe for
// concurrent use after [Builder.Build].
type Engine struct {
	config       Config
	users        UserStore
	tasks        TaskStore
	objects      ObjectStorage
	tokens       *token.Manager
	sessions     *session.Registry
	passwordHash *password.Argon2
	cache        *cache.Cache
	repo         *taskRepository
	audit        *auditDispatcher
	metrics      *Metrics
}

// Close releases engine-owned background resources. External clients
// (Redis, the durable store) are owned by the process that built them.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Config returns a copy of the engine's effective configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped due to
// dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Authenticate resolves the acting identity from a bearer access token:
// it verifies the token as the access kind and loads the user it names.
// Every failure mode collapses to [ErrUnauthenticated] except a store
// transport failure, which surfaces as [ErrUpstream].
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*User, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(accessToken, token.KindAccess)
	if err != nil {
		e.metricInc(MetricAuthFailure)
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := e.users.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			e.metricInc(MetricAuthFailure)
			return nil, fmt.Errorf("%w: user not found", ErrUnauthenticated)
		}
		return nil, err
	}

	return user, nil
}

// checkTaskAccess enforces the ownership rule: the acting identity must
// own the task or hold the admin role. Callers must have established the
// task exists first, so absence is reported before forbiddance.
func (e *Engine) checkTaskAccess(ctx context.Context, identity *User, t *Task) error {
	if identity.ID == t.OwnerID || identity.IsAdmin() {
		return nil
	}
	e.metricInc(MetricPermissionDenied)
	e.auditEmit(ctx, auditEventAccessDenied, identity.ID, t.ID, false, ErrForbidden)
	return fmt.Errorf("%w: no access to this task", ErrForbidden)
}

// validateID rejects malformed store identifiers before any store round
// trip.
func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid id", ErrInvalidInput)
	}
	return nil
}
