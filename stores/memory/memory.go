// Package memory provides map-backed implementations of the taskcore
// store contracts. Intended for tests and examples; everything lives in
// process memory behind a single RWMutex per store.
package memory

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskcore/taskcore"
)

// Store implements taskcore.UserStore and taskcore.TaskStore in memory.
type Store struct {
	mu    sync.RWMutex
	users map[string]*taskcore.User
	tasks map[string]*taskcore.Task
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users: make(map[string]*taskcore.User),
		tasks: make(map[string]*taskcore.Task),
	}
}

func cloneUser(u *taskcore.User) *taskcore.User {
	c := *u
	c.RefreshTokens = append([]string(nil), u.RefreshTokens...)
	if u.Avatar != nil {
		av := *u.Avatar
		c.Avatar = &av
	}
	return &c
}

func cloneTask(t *taskcore.Task) *taskcore.Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

// CreateUser stores a copy of u, assigning an id and timestamps. Emails
// are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, u *taskcore.User) (*taskcore.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, taskcore.ErrEmailExists
		}
	}

	c := cloneUser(u)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.users[c.ID] = c
	return cloneUser(c), nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*taskcore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, taskcore.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*taskcore.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, taskcore.ErrNotFound
}

func (s *Store) UpdateRefreshTokens(ctx context.Context, userID string, tokens []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return taskcore.ErrNotFound
	}
	u.RefreshTokens = append([]string(nil), tokens...)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *Store) UpdateAvatar(ctx context.Context, userID string, avatar *taskcore.Avatar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return taskcore.ErrNotFound
	}
	if avatar == nil {
		u.Avatar = nil
	} else {
		av := *avatar
		u.Avatar = &av
	}
	u.UpdatedAt = time.Now()
	return nil
}

// CreateTask stores a copy of t, assigning an id and timestamps.
func (s *Store) CreateTask(ctx context.Context, t *taskcore.Task) (*taskcore.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cloneTask(t)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.tasks[c.ID] = c
	return cloneTask(c), nil
}

func (s *Store) FindTaskByID(ctx context.Context, id string) (*taskcore.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, taskcore.ErrNotFound
	}
	return cloneTask(t), nil
}

func (s *Store) UpdateTask(ctx context.Context, t *taskcore.Task) (*taskcore.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tasks[t.ID]
	if !ok {
		return nil, taskcore.ErrNotFound
	}

	c := cloneTask(t)
	c.OwnerID = existing.OwnerID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	s.tasks[c.ID] = c
	return cloneTask(c), nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return taskcore.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func matches(t *taskcore.Task, f taskcore.TaskFilter) bool {
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

func orderTasks(tasks []*taskcore.Task, spec string) {
	var less func(a, b *taskcore.Task) bool
	switch spec {
	case "createdAt":
		less = func(a, b *taskcore.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case "dueDate":
		less = func(a, b *taskcore.Task) bool { return timeOf(a.DueDate).Before(timeOf(b.DueDate)) }
	case "-dueDate":
		less = func(a, b *taskcore.Task) bool { return timeOf(b.DueDate).Before(timeOf(a.DueDate)) }
	default: // "-createdAt"
		less = func(a, b *taskcore.Task) bool { return b.CreatedAt.Before(a.CreatedAt) }
	}
	sort.SliceStable(tasks, func(i, j int) bool { return less(tasks[i], tasks[j]) })
}

func timeOf(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (s *Store) FindTasks(ctx context.Context, filter taskcore.TaskFilter, sortSpec string, skip, limit int) ([]*taskcore.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*taskcore.Task
	for _, t := range s.tasks {
		if matches(t, filter) {
			out = append(out, cloneTask(t))
		}
	}
	orderTasks(out, sortSpec)

	if skip >= len(out) {
		return []*taskcore.Task{}, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CountTasks(ctx context.Context, filter taskcore.TaskFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, t := range s.tasks {
		if matches(t, filter) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountTasksByStatus(ctx context.Context, ownerID string) (map[taskcore.Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[taskcore.Status]int64)
	for _, t := range s.tasks {
		if t.OwnerID == ownerID {
			counts[t.Status]++
		}
	}
	return counts, nil
}

// ObjectStorage is an in-memory taskcore.ObjectStorage. Objects are
// addressed as "folder/uuid" and given a fake URL.
type ObjectStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewObjectStorage returns an empty ObjectStorage.
func NewObjectStorage() *ObjectStorage {
	return &ObjectStorage{objects: make(map[string][]byte)}
}

func (o *ObjectStorage) Upload(ctx context.Context, folder, contentType string, r io.Reader) (*taskcore.StoredObject, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	id := folder + "/" + uuid.NewString()

	o.mu.Lock()
	o.objects[id] = data
	o.mu.Unlock()

	return &taskcore.StoredObject{
		URL:       "memory://" + id,
		StorageID: id,
	}, nil
}

func (o *ObjectStorage) Delete(ctx context.Context, storageID string) error {
	o.mu.Lock()
	delete(o.objects, storageID)
	o.mu.Unlock()
	return nil
}

// Len reports how many objects are held. Test helper.
func (o *ObjectStorage) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}
