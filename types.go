package taskcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/taskcore/taskcore/internal/audit"
)

// Role controls whether an identity may bypass ownership checks.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Status is the task lifecycle state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Avatar references a user image held in external object storage.
type Avatar struct {
	URL       string `json:"url"`
	StorageID string `json:"storageId"`
}

// User is the account record. RefreshTokens is the persisted session
// registry: an ordered sequence of opaque token strings, append-only
// except for filtered removal on logout.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Role          Role      `json:"role"`
	RefreshTokens []string  `json:"-"`
	Avatar        *Avatar   `json:"avatar,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsAdmin reports whether the user may act on resources it does not own.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Task is a tracked work item. OwnerID is immutable after creation.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	OwnerID     string     `json:"owner"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskFilter narrows task queries. OwnerID is always set by the engine;
// zero-valued fields are ignored. Search matches title and description.
type TaskFilter struct {
	OwnerID  string
	Status   Status
	Priority Priority
	Search   string
}

// UserStore is the durable-store contract for account records.
//
// Implementations return [ErrNotFound] for absent records, [ErrEmailExists]
// for duplicate emails on create, and wrap transport failures in
// [ErrUpstream].
type UserStore interface {
	CreateUser(ctx context.Context, u *User) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateRefreshTokens(ctx context.Context, userID string, tokens []string) error
	UpdateAvatar(ctx context.Context, userID string, avatar *Avatar) error
}

// TaskStore is the durable-store contract for task records and the query
// engine behind cache misses. Find applies filter, sort, skip, and limit;
// sort values are store-native column specs produced by the engine's
// allow-list. Updates replace all mutable fields (last write wins).
type TaskStore interface {
	CreateTask(ctx context.Context, t *Task) (*Task, error)
	FindTaskByID(ctx context.Context, id string) (*Task, error)
	UpdateTask(ctx context.Context, t *Task) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
	FindTasks(ctx context.Context, filter TaskFilter, sort string, skip, limit int) ([]*Task, error)
	CountTasks(ctx context.Context, filter TaskFilter) (int64, error)
	CountTasksByStatus(ctx context.Context, ownerID string) (map[Status]int64, error)
}

// StoredObject is the result of an object-storage upload.
type StoredObject struct {
	URL       string
	StorageID string
}

// ObjectStorage is the external collaborator holding binary avatar data.
// Upload must complete (or fail) before the caller proceeds; there is no
// fire-and-forget path.
type ObjectStorage interface {
	Upload(ctx context.Context, folder, contentType string, r io.Reader) (*StoredObject, error)
	Delete(ctx context.Context, storageID string) error
}

// RegisterInput is the input for [Engine.Register]. All fields are
// required.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// AuthSession is returned by Register and Login: the account plus a fresh
// access/refresh token pair. The transport is responsible for placing the
// refresh token in an HTTP-only cookie.
type AuthSession struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// CreateTaskInput is the input for [Engine.CreateTask]. Status and
// Priority default to "todo" and "medium" when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
}

// UpdateTaskInput carries a partial update; nil fields are left
// unchanged. Ownership cannot be reassigned.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
}

// ListQuery selects, orders, and paginates a user's tasks. Zero values
// take the documented defaults (page 1, limit 10, sort "-createdAt");
// an unknown Sort silently falls back to the default, never an error.
type ListQuery struct {
	Page     int
	Limit    int
	Status   Status
	Priority Priority
	Search   string
	Sort     string
}

// ListMeta describes the pagination window of a task page.
type ListMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// TaskPage is one page of list results. Cached reports whether the page
// was served from the read-through cache.
type TaskPage struct {
	Meta   ListMeta `json:"meta"`
	Tasks  []*Task  `json:"data"`
	Cached bool     `json:"-"`
}

// StatusCounts maps each task status to the number of the owner's tasks
// in that status. Statuses with no tasks are absent.
type StatusCounts map[Status]int64

// TaskStats is the aggregate view returned by [Engine.TaskStats].
type TaskStats struct {
	Counts StatusCounts
	Cached bool
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
