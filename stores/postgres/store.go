// Package postgres implements the taskcore store contracts on
// PostgreSQL via sqlx and squirrel. Absent rows map to
// taskcore.ErrNotFound, unique-email violations to
// taskcore.ErrEmailExists, and transport failures are wrapped in
// taskcore.ErrUpstream.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/taskcore/taskcore"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// sortColumns maps the engine's sort specs to ORDER BY clauses.
var sortColumns = map[string]string{
	"-createdAt": "created_at DESC",
	"createdAt":  "created_at ASC",
	"-dueDate":   "due_date DESC NULLS LAST",
	"dueDate":    "due_date ASC NULLS LAST",
}

// Store implements taskcore.UserStore and taskcore.TaskStore on a
// PostgreSQL database.
type Store struct {
	db *sqlx.DB
	sb squirrel.StatementBuilderType
}

// NewStore wraps an open sqlx handle. The caller owns the connection
// and its lifecycle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Migrate applies the embedded schema. Idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: migrate: %v", taskcore.ErrUpstream, err)
	}
	return nil
}

func wrapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return taskcore.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %v", taskcore.ErrUpstream, op, err)
}

type userRow struct {
	ID              string         `db:"id"`
	Name            string         `db:"name"`
	Email           string         `db:"email"`
	PasswordHash    string         `db:"password_hash"`
	Role            string         `db:"role"`
	RefreshTokens   pq.StringArray `db:"refresh_tokens"`
	AvatarURL       sql.NullString `db:"avatar_url"`
	AvatarStorageID sql.NullString `db:"avatar_storage_id"`
	CreatedAt       sql.NullTime   `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
}

func (r userRow) toUser() *taskcore.User {
	u := &taskcore.User{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		PasswordHash:  r.PasswordHash,
		Role:          taskcore.Role(r.Role),
		RefreshTokens: []string(r.RefreshTokens),
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
	if r.AvatarStorageID.Valid {
		u.Avatar = &taskcore.Avatar{
			URL:       r.AvatarURL.String,
			StorageID: r.AvatarStorageID.String,
		}
	}
	return u
}

const userColumns = "id, name, email, password_hash, role, refresh_tokens, avatar_url, avatar_storage_id, created_at, updated_at"

func (s *Store) CreateUser(ctx context.Context, u *taskcore.User) (*taskcore.User, error) {
	query, args, err := s.sb.
		Insert("users").
		Columns("name", "email", "password_hash", "role", "refresh_tokens").
		Values(u.Name, u.Email, u.PasswordHash, string(u.Role), pq.StringArray(u.RefreshTokens)).
		Suffix("RETURNING " + userColumns).
		ToSql()
	if err != nil {
		return nil, wrapErr("create user", err)
	}

	var row userRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, taskcore.ErrEmailExists
		}
		return nil, wrapErr("create user", err)
	}
	return row.toUser(), nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*taskcore.User, error) {
	return s.findUser(ctx, squirrel.Eq{"id": id})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*taskcore.User, error) {
	return s.findUser(ctx, squirrel.Expr("lower(email) = lower(?)", email))
}

func (s *Store) findUser(ctx context.Context, pred interface{}) (*taskcore.User, error) {
	query, args, err := s.sb.
		Select(userColumns).
		From("users").
		Where(pred).
		ToSql()
	if err != nil {
		return nil, wrapErr("find user", err)
	}

	var row userRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, wrapErr("find user", err)
	}
	return row.toUser(), nil
}

func (s *Store) UpdateRefreshTokens(ctx context.Context, userID string, tokens []string) error {
	query, args, err := s.sb.
		Update("users").
		Set("refresh_tokens", pq.StringArray(tokens)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return wrapErr("update refresh tokens", err)
	}
	return s.execOne(ctx, "update refresh tokens", query, args)
}

func (s *Store) UpdateAvatar(ctx context.Context, userID string, avatar *taskcore.Avatar) error {
	var url, storageID interface{}
	if avatar != nil {
		url, storageID = avatar.URL, avatar.StorageID
	}

	query, args, err := s.sb.
		Update("users").
		Set("avatar_url", url).
		Set("avatar_storage_id", storageID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return wrapErr("update avatar", err)
	}
	return s.execOne(ctx, "update avatar", query, args)
}

// execOne runs an exec expected to touch exactly one row; zero rows is
// reported as not found.
func (s *Store) execOne(ctx context.Context, op, query string, args []interface{}) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 0 {
		return taskcore.ErrNotFound
	}
	return nil
}

type taskRow struct {
	ID          string       `db:"id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Status      string       `db:"status"`
	Priority    string       `db:"priority"`
	DueDate     sql.NullTime `db:"due_date"`
	OwnerID     string       `db:"owner_id"`
	CreatedAt   sql.NullTime `db:"created_at"`
	UpdatedAt   sql.NullTime `db:"updated_at"`
}

func (r taskRow) toTask() *taskcore.Task {
	t := &taskcore.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      taskcore.Status(r.Status),
		Priority:    taskcore.Priority(r.Priority),
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
	if r.DueDate.Valid {
		due := r.DueDate.Time
		t.DueDate = &due
	}
	return t
}

const taskColumns = "id, title, description, status, priority, due_date, owner_id, created_at, updated_at"

func (s *Store) CreateTask(ctx context.Context, t *taskcore.Task) (*taskcore.Task, error) {
	query, args, err := s.sb.
		Insert("tasks").
		Columns("title", "description", "status", "priority", "due_date", "owner_id").
		Values(t.Title, t.Description, string(t.Status), string(t.Priority), t.DueDate, t.OwnerID).
		Suffix("RETURNING " + taskColumns).
		ToSql()
	if err != nil {
		return nil, wrapErr("create task", err)
	}

	var row taskRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, wrapErr("create task", err)
	}
	return row.toTask(), nil
}

func (s *Store) FindTaskByID(ctx context.Context, id string) (*taskcore.Task, error) {
	query, args, err := s.sb.
		Select(taskColumns).
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, wrapErr("find task", err)
	}

	var row taskRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, wrapErr("find task", err)
	}
	return row.toTask(), nil
}

func (s *Store) UpdateTask(ctx context.Context, t *taskcore.Task) (*taskcore.Task, error) {
	query, args, err := s.sb.
		Update("tasks").
		Set("title", t.Title).
		Set("description", t.Description).
		Set("status", string(t.Status)).
		Set("priority", string(t.Priority)).
		Set("due_date", t.DueDate).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": t.ID}).
		Suffix("RETURNING " + taskColumns).
		ToSql()
	if err != nil {
		return nil, wrapErr("update task", err)
	}

	var row taskRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		return nil, wrapErr("update task", err)
	}
	return row.toTask(), nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	query, args, err := s.sb.
		Delete("tasks").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return wrapErr("delete task", err)
	}
	return s.execOne(ctx, "delete task", query, args)
}

func filterPredicates(b squirrel.SelectBuilder, f taskcore.TaskFilter) squirrel.SelectBuilder {
	if f.OwnerID != "" {
		b = b.Where(squirrel.Eq{"owner_id": f.OwnerID})
	}
	if f.Status != "" {
		b = b.Where(squirrel.Eq{"status": string(f.Status)})
	}
	if f.Priority != "" {
		b = b.Where(squirrel.Eq{"priority": string(f.Priority)})
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		b = b.Where(squirrel.Or{
			squirrel.ILike{"title": like},
			squirrel.ILike{"description": like},
		})
	}
	return b
}

func (s *Store) FindTasks(ctx context.Context, filter taskcore.TaskFilter, sortSpec string, skip, limit int) ([]*taskcore.Task, error) {
	orderBy, ok := sortColumns[sortSpec]
	if !ok {
		orderBy = sortColumns["-createdAt"]
	}

	b := filterPredicates(s.sb.Select(taskColumns).From("tasks"), filter).
		OrderBy(orderBy).
		Offset(uint64(skip)).
		Limit(uint64(limit))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, wrapErr("find tasks", err)
	}

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("find tasks", err)
	}

	tasks := make([]*taskcore.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks, nil
}

func (s *Store) CountTasks(ctx context.Context, filter taskcore.TaskFilter) (int64, error) {
	query, args, err := filterPredicates(s.sb.Select("count(*)").From("tasks"), filter).ToSql()
	if err != nil {
		return 0, wrapErr("count tasks", err)
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, wrapErr("count tasks", err)
	}
	return total, nil
}

func (s *Store) CountTasksByStatus(ctx context.Context, ownerID string) (map[taskcore.Status]int64, error) {
	query, args, err := s.sb.
		Select("status", "count(*) AS total").
		From("tasks").
		Where(squirrel.Eq{"owner_id": ownerID}).
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, wrapErr("count tasks by status", err)
	}

	var rows []struct {
		Status string `db:"status"`
		Total  int64  `db:"total"`
	}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapErr("count tasks by status", err)
	}

	counts := make(map[taskcore.Status]int64, len(rows))
	for _, r := range rows {
		counts[taskcore.Status(r.Status)] = r.Total
	}
	return counts, nil
}
