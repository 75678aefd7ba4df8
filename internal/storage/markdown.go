package storage

import (
	"bytes"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abatilo/dash/internal/task"
)

const frontmatterDelimiter = "---"

// taskFrontmatter is the YAML-serializable portion of a task.
type taskFrontmatter struct {
	ID             int64         `yaml:"id"`
	Title          string        `yaml:"title"`
	Status         task.Status   `yaml:"status"`
	Priority       task.Priority `yaml:"priority"`
	DueDate        *string       `yaml:"due_date,omitempty"`
	CreatedAt      string        `yaml:"created_at"`
	UpdatedAt      string        `yaml:"updated_at"`
	CompletedAt    *string       `yaml:"completed_at,omitempty"`
	EstimatedHours float64       `yaml:"estimated_hours"`
	ActualHours    float64       `yaml:"actual_hours"`
}

// ParseMarkdown parses a markdown file with YAML frontmatter into a Task.
func ParseMarkdown(content []byte) (*task.Task, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, &parseError{"missing YAML frontmatter"}
	}

	// Find closing delimiter
	var frontmatterEnd int
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			frontmatterEnd = i
			break
		}
	}
	if frontmatterEnd == 0 {
		return nil, &parseError{"unclosed YAML frontmatter"}
	}

	yamlContent := strings.Join(lines[1:frontmatterEnd], "\n")
	var fm taskFrontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return nil, &parseError{"invalid YAML: " + err.Error()}
	}

	createdAt, err := parseTime(fm.CreatedAt)
	if err != nil {
		return nil, &parseError{"invalid created_at: " + err.Error()}
	}
	updatedAt := createdAt
	if fm.UpdatedAt != "" {
		if updatedAt, err = parseTime(fm.UpdatedAt); err != nil {
			return nil, &parseError{"invalid updated_at: " + err.Error()}
		}
	}
	dueDate, err := parseOptionalTime(fm.DueDate)
	if err != nil {
		return nil, &parseError{"invalid due_date: " + err.Error()}
	}
	completedAt, err := parseOptionalTime(fm.CompletedAt)
	if err != nil {
		return nil, &parseError{"invalid completed_at: " + err.Error()}
	}

	// The body is the description, framed by one blank line before and one
	// newline after. Only that framing is stripped.
	var description string
	if frontmatterEnd+1 < len(lines) {
		body := strings.Join(lines[frontmatterEnd+1:], "\n")
		description = strings.TrimSuffix(strings.TrimPrefix(body, "\n"), "\n")
	}

	t := &task.Task{
		ID:             fm.ID,
		Title:          fm.Title,
		Description:    description,
		Priority:       fm.Priority,
		Status:         fm.Status,
		DueDate:        dueDate,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
		CompletedAt:    completedAt,
		EstimatedHours: fm.EstimatedHours,
		ActualHours:    fm.ActualHours,
	}
	if err = t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// SerializeMarkdown converts a Task to markdown with YAML frontmatter.
// Timestamps keep nanoseconds so updated_at ordering survives a round trip.
func SerializeMarkdown(t *task.Task) ([]byte, error) {
	fm := taskFrontmatter{
		ID:             t.ID,
		Title:          t.Title,
		Status:         t.Status,
		Priority:       t.Priority,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339Nano),
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(time.DateOnly)
		fm.DueDate = &s
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339Nano)
		fm.CompletedAt = &s
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, err
	}
	enc.Close()

	buf.WriteString(frontmatterDelimiter + "\n")

	if t.Description != "" {
		buf.WriteString("\n")
		buf.WriteString(t.Description)
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// parseError represents a parsing error.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil //nolint:nilnil // absent optional timestamp
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseTime tries to parse a time string in common formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		time.DateTime,
		time.DateOnly,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &parseError{"unrecognized time format"}
}
