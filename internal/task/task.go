package task

import (
	"strings"
	"time"

	dasherrors "github.com/abatilo/dash/internal/errors"
)

// Status represents the current state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority represents the importance level of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultEstimatedHours is applied to drafts that leave the estimate unset.
const DefaultEstimatedHours = 1.0

// PriorityOrder returns the sort order for a priority (lower = higher priority).
func PriorityOrder(p Priority) int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Task represents a tracked work item.
type Task struct {
	ID             int64      `yaml:"id"`
	Title          string     `yaml:"title"`
	Description    string     `yaml:"-"` // Stored as markdown body, not frontmatter
	Priority       Priority   `yaml:"priority"`
	Status         Status     `yaml:"status"`
	DueDate        *time.Time `yaml:"due_date,omitempty"`
	CreatedAt      time.Time  `yaml:"created_at"`
	UpdatedAt      time.Time  `yaml:"updated_at"`
	CompletedAt    *time.Time `yaml:"completed_at,omitempty"`
	EstimatedHours float64    `yaml:"estimated_hours"`
	ActualHours    float64    `yaml:"actual_hours"`
}

// IsCompleted reports whether the task is in the completed state.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// Validate checks a task read from outside the process: a decoded file or API
// payload. Status and priority must be in their enumerations and the title
// must not be empty.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return dasherrors.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !IsValidStatus(t.Status) {
		return dasherrors.ValidationError{
			Field:  "status",
			Value:  string(t.Status),
			Reason: "must be one of pending, in_progress, completed",
		}
	}
	if !IsValidPriority(t.Priority) {
		return dasherrors.ValidationError{
			Field:  "priority",
			Value:  string(t.Priority),
			Reason: "must be one of low, medium, high",
		}
	}
	return nil
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParseStatus converts user input into a Status. Matching is case-insensitive
// and accepts "in-progress" as a spelling of in_progress.
func ParseStatus(s string) (Status, error) {
	normalized := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !IsValidStatus(normalized) {
		return "", dasherrors.ValidationError{
			Field:  "status",
			Value:  s,
			Reason: "must be one of pending, in_progress, completed",
		}
	}
	return normalized, nil
}

// ParsePriority converts user input into a Priority.
func ParsePriority(s string) (Priority, error) {
	normalized := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidPriority(normalized) {
		return "", dasherrors.ValidationError{
			Field:  "priority",
			Value:  s,
			Reason: "must be one of low, medium, high",
		}
	}
	return normalized, nil
}

// ParseDate parses a due date. Both plain dates and RFC 3339 timestamps are accepted.
func ParseDate(s string) (time.Time, error) {
	formats := []string{
		time.DateOnly,
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, dasherrors.ValidationError{
		Field:  "due_date",
		Value:  s,
		Reason: "expected YYYY-MM-DD",
	}
}
