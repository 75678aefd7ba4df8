package task

import (
	"strconv"
	"strings"
	"time"

	dasherrors "github.com/abatilo/dash/internal/errors"
)

// Draft holds the caller-supplied fields of a task that does not exist yet.
// Zero Priority and Status mean "unset"; EstimatedHours is a pointer so that an
// explicit zero survives defaulting.
type Draft struct {
	Title          string
	Description    string
	Priority       Priority
	Status         Status
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    float64
}

// Validate checks the draft before it is handed to a backing.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return dasherrors.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if d.Priority != "" && !IsValidPriority(d.Priority) {
		return dasherrors.ValidationError{
			Field:  "priority",
			Value:  string(d.Priority),
			Reason: "must be one of low, medium, high",
		}
	}
	if d.Status != "" && !IsValidStatus(d.Status) {
		return dasherrors.ValidationError{
			Field:  "status",
			Value:  string(d.Status),
			Reason: "must be one of pending, in_progress, completed",
		}
	}
	if d.EstimatedHours != nil && *d.EstimatedHours < 0 {
		return negativeHours("estimated_hours", *d.EstimatedHours)
	}
	if d.ActualHours < 0 {
		return negativeHours("actual_hours", d.ActualHours)
	}
	return nil
}

// WithDefaults returns a copy of the draft with unset fields filled in.
func (d Draft) WithDefaults() Draft {
	if d.Priority == "" {
		d.Priority = PriorityMedium
	}
	if d.Status == "" {
		d.Status = StatusPending
	}
	if d.EstimatedHours == nil {
		h := DefaultEstimatedHours
		d.EstimatedHours = &h
	}
	return d
}

// NewTask materializes a defaulted draft into a stored task.
func (d Draft) NewTask(id int64, now time.Time) Task {
	d = d.WithDefaults()
	t := Task{
		ID:             id,
		Title:          d.Title,
		Description:    d.Description,
		Priority:       d.Priority,
		Status:         d.Status,
		DueDate:        d.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
		EstimatedHours: *d.EstimatedHours,
		ActualHours:    d.ActualHours,
	}
	if t.Status == StatusCompleted {
		completed := now
		t.CompletedAt = &completed
	}
	return t
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Title          *string
	Description    *string
	Priority       *Priority
	Status         *Status
	DueDate        *time.Time
	ClearDueDate   bool
	EstimatedHours *float64
	ActualHours    *float64
}

// Empty reports whether the patch would change nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil && p.Status == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.EstimatedHours == nil && p.ActualHours == nil
}

// Validate checks every supplied field.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return dasherrors.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Priority != nil && !IsValidPriority(*p.Priority) {
		return dasherrors.ValidationError{
			Field:  "priority",
			Value:  string(*p.Priority),
			Reason: "must be one of low, medium, high",
		}
	}
	if p.Status != nil && !IsValidStatus(*p.Status) {
		return dasherrors.ValidationError{
			Field:  "status",
			Value:  string(*p.Status),
			Reason: "must be one of pending, in_progress, completed",
		}
	}
	if p.EstimatedHours != nil && *p.EstimatedHours < 0 {
		return negativeHours("estimated_hours", *p.EstimatedHours)
	}
	if p.ActualHours != nil && *p.ActualHours < 0 {
		return negativeHours("actual_hours", *p.ActualHours)
	}
	return nil
}

// ApplyTo merges the patch into t and stamps UpdatedAt with now.
// CompletedAt follows the status: set on entering completed, cleared on leaving it.
func (p Patch) ApplyTo(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		wasCompleted := t.IsCompleted()
		t.Status = *p.Status
		switch {
		case t.IsCompleted() && !wasCompleted:
			completed := now
			t.CompletedAt = &completed
		case !t.IsCompleted():
			t.CompletedAt = nil
		}
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = *p.ActualHours
	}
	t.UpdatedAt = now
}

func negativeHours(field string, v float64) error {
	return dasherrors.ValidationError{
		Field:  field,
		Value:  strconv.FormatFloat(v, 'f', -1, 64),
		Reason: "must not be negative",
	}
}
