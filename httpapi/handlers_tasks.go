package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/taskcore/taskcore"
)

type taskBody struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *taskcore.Status   `json:"status"`
	Priority    *taskcore.Priority `json:"priority"`
	DueDate     *time.Time         `json:"dueDate"`
}

type dataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	var body taskBody
	if err := decodeJSON(r, &body); err != nil {
		return err
	}

	input := taskcore.CreateTaskInput{DueDate: body.DueDate}
	if body.Title != nil {
		input.Title = *body.Title
	}
	if body.Description != nil {
		input.Description = *body.Description
	}
	if body.Status != nil {
		input.Status = *body.Status
	}
	if body.Priority != nil {
		input.Priority = *body.Priority
	}

	task, err := s.engine.CreateTask(r.Context(), user, input)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, dataResponse{Success: true, Data: task})
	return nil
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	task, err := s.engine.GetTask(r.Context(), user, r.PathValue("id"))
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: task})
	return nil
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	query := r.URL.Query()
	q := taskcore.ListQuery{
		Status:   taskcore.Status(query.Get("status")),
		Priority: taskcore.Priority(query.Get("priority")),
		Search:   query.Get("q"),
		Sort:     query.Get("sort"),
	}
	if v := query.Get("page"); v != "" {
		q.Page, _ = strconv.Atoi(v)
	}
	if v := query.Get("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}

	page, err := s.engine.ListTasks(r.Context(), user, q)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool              `json:"success"`
		Meta    taskcore.ListMeta `json:"meta"`
		Data    []*taskcore.Task  `json:"data"`
		Cached  bool              `json:"cached,omitempty"`
	}{
		Success: true,
		Meta:    page.Meta,
		Data:    page.Tasks,
		Cached:  page.Cached,
	})
	return nil
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	var body taskBody
	if err := decodeJSON(r, &body); err != nil {
		return err
	}

	task, err := s.engine.UpdateTask(r.Context(), user, r.PathValue("id"), taskcore.UpdateTaskInput{
		Title:       body.Title,
		Description: body.Description,
		Status:      body.Status,
		Priority:    body.Priority,
		DueDate:     body.DueDate,
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, dataResponse{Success: true, Data: task})
	return nil
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	if err := s.engine.DeleteTask(r.Context(), user, r.PathValue("id")); err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Task deleted successfully",
	})
	return nil
}

func (s *Server) handleTaskStats(w http.ResponseWriter, r *http.Request) error {
	user, err := identity(r)
	if err != nil {
		return err
	}

	stats, err := s.engine.TaskStats(r.Context(), user)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool                  `json:"success"`
		Stats   taskcore.StatusCounts `json:"stats"`
		Cached  bool                  `json:"cached,omitempty"`
	}{
		Success: true,
		Stats:   stats.Counts,
		Cached:  stats.Cached,
	})
	return nil
}
