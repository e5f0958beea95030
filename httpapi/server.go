// Package httpapi exposes the taskcore engine over HTTP. It owns route
// registration, request decoding, the refresh-token cookie, and the
// mapping from engine sentinel errors to status codes. All identity and
// authorization decisions are delegated to the engine.
package httpapi

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/taskcore/taskcore"
	"github.com/taskcore/taskcore/middleware"
)

// Config carries the transport-level knobs.
type Config struct {
	// Logger receives request failures. Defaults to slog.Default.
	Logger *slog.Logger
	// Development relaxes error sanitization: 5xx bodies carry the
	// underlying error message instead of a generic one.
	Development bool
}

// Server is the HTTP front end for a [taskcore.Engine].
type Server struct {
	engine      *taskcore.Engine
	logger      *slog.Logger
	development bool
	mux         *http.ServeMux
}

// New builds a Server with all routes registered.
func New(engine *taskcore.Engine, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine:      engine,
		logger:      logger,
		development: cfg.Development,
		mux:         http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	guard := middleware.Guard(s.engine)

	s.mux.Handle("POST /api/users/register", s.handle(s.handleRegister))
	s.mux.Handle("POST /api/users/login", s.handle(s.handleLogin))
	s.mux.Handle("POST /api/users/refresh", s.handle(s.handleRefresh))
	s.mux.Handle("POST /api/users/logout", s.handle(s.handleLogout))

	s.mux.Handle("GET /api/users/profile", guard(s.handle(s.handleProfile)))
	s.mux.Handle("POST /api/users/avatar", guard(s.handle(s.handleUploadAvatar)))
	s.mux.Handle("DELETE /api/users/avatar", guard(s.handle(s.handleDeleteAvatar)))

	s.mux.Handle("POST /api/tasks", guard(s.handle(s.handleCreateTask)))
	s.mux.Handle("GET /api/tasks", guard(s.handle(s.handleListTasks)))
	s.mux.Handle("GET /api/tasks/stats", guard(s.handle(s.handleTaskStats)))
	s.mux.Handle("GET /api/tasks/{id}", guard(s.handle(s.handleGetTask)))
	s.mux.Handle("PUT /api/tasks/{id}", guard(s.handle(s.handleUpdateTask)))
	s.mux.Handle("DELETE /api/tasks/{id}", guard(s.handle(s.handleDeleteTask)))
}

// ServeHTTP implements http.Handler, tagging every request context with
// the client IP for audit events.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := taskcore.WithClientIP(r.Context(), clientIP(r))
	s.mux.ServeHTTP(w, r.WithContext(ctx))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// identity returns the guard-injected user. Guarded routes can rely on
// it; a miss means a routing bug, reported as 401 not a panic.
func identity(r *http.Request) (*taskcore.User, error) {
	user, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return nil, taskcore.ErrUnauthenticated
	}
	return user, nil
}
