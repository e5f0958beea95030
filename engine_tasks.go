package taskcore

import (
	"context"
	"fmt"
)

func validStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func validPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// CreateTask creates a task owned by the acting identity. Ownership is
// fixed at creation: there is no way to create on another user's behalf.
// The owner's stats cache is invalidated before returning.
func (e *Engine) CreateTask(ctx context.Context, identity *User, input CreateTaskInput) (*Task, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Status == "" {
		input.Status = StatusTodo
	}
	if input.Priority == "" {
		input.Priority = PriorityMedium
	}
	if !validStatus(input.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Status)
	}
	if !validPriority(input.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, input.Priority)
	}

	task, err := e.tasks.CreateTask(ctx, &Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		OwnerID:     identity.ID,
	})
	if err != nil {
		return nil, err
	}

	e.repo.InvalidateStats(ctx, identity.ID)
	e.metricInc(MetricTaskCreated)
	e.auditEmit(ctx, auditEventTaskCreated, identity.ID, task.ID, true, nil)
	return task, nil
}

// GetTask loads a single task. A malformed id is rejected without a
// store round trip; absence is reported before forbiddance so
// non-owners cannot probe which ids exist.
func (e *Engine) GetTask(ctx context.Context, identity *User, id string) (*Task, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	task, err := e.tasks.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.checkTaskAccess(ctx, identity, task); err != nil {
		return nil, err
	}

	return task, nil
}

// ListTasks serves one page of the identity's own tasks through the
// read-through cache. Listing is always scoped to the acting identity;
// there is no cross-user listing, admin included.
func (e *Engine) ListTasks(ctx context.Context, identity *User, q ListQuery) (*TaskPage, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if q.Status != "" && !validStatus(q.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, q.Status)
	}
	if q.Priority != "" && !validPriority(q.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, q.Priority)
	}

	return e.repo.ReadList(ctx, identity.ID, q)
}

// UpdateTask applies a partial update to a task the identity may mutate.
// Mutable fields are replaced wholesale (last write wins); ownership is
// immutable. The OWNER's stats cache is invalidated, which matters when
// an admin edits someone else's task.
func (e *Engine) UpdateTask(ctx context.Context, identity *User, id string, input UpdateTaskInput) (*Task, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	task, err := e.tasks.FindTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.checkTaskAccess(ctx, identity, task); err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !validStatus(*input.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *input.Status)
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !validPriority(*input.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *input.Priority)
		}
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	updated, err := e.tasks.UpdateTask(ctx, task)
	if err != nil {
		return nil, err
	}

	e.repo.InvalidateStats(ctx, task.OwnerID)
	e.metricInc(MetricTaskUpdated)
	e.auditEmit(ctx, auditEventTaskUpdated, identity.ID, task.ID, true, nil)
	return updated, nil
}

// DeleteTask removes a task the identity may mutate and invalidates the
// owner's stats cache.
func (e *Engine) DeleteTask(ctx context.Context, identity *User, id string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if err := validateID(id); err != nil {
		return err
	}

	task, err := e.tasks.FindTaskByID(ctx, id)
	if err != nil {
		return err
	}
	if err := e.checkTaskAccess(ctx, identity, task); err != nil {
		return err
	}

	ownerID := task.OwnerID
	if err := e.tasks.DeleteTask(ctx, id); err != nil {
		return err
	}

	e.repo.InvalidateStats(ctx, ownerID)
	e.metricInc(MetricTaskDeleted)
	e.auditEmit(ctx, auditEventTaskDeleted, identity.ID, id, true, nil)
	return nil
}

// TaskStats returns the identity's task counts grouped by status, via
// the read-through cache. Thanks to write-time invalidation the result
// always reflects the identity's latest completed mutation.
func (e *Engine) TaskStats(ctx context.Context, identity *User) (*TaskStats, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	counts, cached, err := e.repo.ReadStats(ctx, identity.ID)
	if err != nil {
		return nil, err
	}
	return &TaskStats{Counts: counts, Cached: cached}, nil
}
