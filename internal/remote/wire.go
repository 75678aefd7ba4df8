package remote

import (
	"fmt"
	"time"

	"github.com/abatilo/dash/internal/task"
)

// wireTask is a task as the API encodes it. Optional columns come back as null
// and timestamps use the database's "YYYY-MM-DD HH:MM:SS" form.
type wireTask struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	Priority       string   `json:"priority"`
	Status         string   `json:"status"`
	DueDate        *string  `json:"due_date"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
	CompletedAt    *string  `json:"completed_at"`
	EstimatedHours *float64 `json:"estimated_hours"`
	ActualHours    *float64 `json:"actual_hours"`
}

func (w wireTask) toTask() (task.Task, error) {
	t := task.Task{
		ID:       w.ID,
		Title:    w.Title,
		Priority: task.Priority(w.Priority),
		Status:   task.Status(w.Status),
	}
	if err := t.Validate(); err != nil {
		return task.Task{}, err
	}
	if w.Description != nil {
		t.Description = *w.Description
	}
	if w.EstimatedHours != nil {
		t.EstimatedHours = *w.EstimatedHours
	}
	if w.ActualHours != nil {
		t.ActualHours = *w.ActualHours
	}

	var err error
	if t.CreatedAt, err = parseTimestamp(w.CreatedAt); err != nil {
		return task.Task{}, fmt.Errorf("created_at: %w", err)
	}
	t.UpdatedAt = t.CreatedAt
	if w.UpdatedAt != "" {
		if t.UpdatedAt, err = parseTimestamp(w.UpdatedAt); err != nil {
			return task.Task{}, fmt.Errorf("updated_at: %w", err)
		}
	}
	if t.DueDate, err = parseOptional(w.DueDate); err != nil {
		return task.Task{}, fmt.Errorf("due_date: %w", err)
	}
	if t.CompletedAt, err = parseOptional(w.CompletedAt); err != nil {
		return task.Task{}, fmt.Errorf("completed_at: %w", err)
	}
	return t, nil
}

// createRequest is the body of POST /tasks.
type createRequest struct {
	Title          string   `json:"title"`
	Description    *string  `json:"description"`
	Priority       string   `json:"priority"`
	DueDate        *string  `json:"due_date"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
}

type createResponse struct {
	Message string `json:"message"`
	TaskID  int64  `json:"task_id"`
}

func newCreateRequest(d task.Draft) createRequest {
	req := createRequest{
		Title:          d.Title,
		Priority:       string(d.Priority),
		EstimatedHours: d.EstimatedHours,
	}
	if d.Description != "" {
		req.Description = &d.Description
	}
	if d.DueDate != nil {
		s := d.DueDate.Format(time.DateOnly)
		req.DueDate = &s
	}
	return req
}

// updateRequest is the body of PUT /tasks/{id}; omitted fields stay unchanged.
type updateRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Priority       *string  `json:"priority,omitempty"`
	Status         *string  `json:"status,omitempty"`
	DueDate        *string  `json:"due_date,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	ActualHours    *float64 `json:"actual_hours,omitempty"`
}

func newUpdateRequest(p task.Patch) updateRequest {
	req := updateRequest{
		Title:          p.Title,
		Description:    p.Description,
		EstimatedHours: p.EstimatedHours,
		ActualHours:    p.ActualHours,
	}
	if p.Priority != nil {
		s := string(*p.Priority)
		req.Priority = &s
	}
	if p.Status != nil {
		s := string(*p.Status)
		req.Status = &s
	}
	switch {
	case p.DueDate != nil:
		s := p.DueDate.Format(time.DateOnly)
		req.DueDate = &s
	case p.ClearDueDate:
		// The API skips null fields, so an empty string is the only way to clear.
		empty := ""
		req.DueDate = &empty
	}
	return req
}

func parseOptional(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil //nolint:nilnil // absent optional timestamp
	}
	t, err := parseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseTimestamp accepts RFC 3339, the database's space-separated form
// (always UTC) and bare dates.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.DateTime,
		"2006-01-02T15:04:05.999999999",
		time.DateOnly,
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
