//nolint:testpackage // Tests require internal access for thorough testing
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

func TestParseMarkdown(t *testing.T) {
	content := []byte(`---
id: 12
title: Test task
status: in_progress
priority: high
due_date: "2024-02-01"
created_at: 2024-01-15T10:30:00Z
updated_at: 2024-01-15T11:00:00.000000001Z
estimated_hours: 2.5
actual_hours: 1
---

This is the description.
`)

	tk, err := ParseMarkdown(content)
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}

	if tk.ID != 12 {
		t.Errorf("ID = %d, want %d", tk.ID, 12)
	}
	if tk.Title != "Test task" {
		t.Errorf("Title = %q, want %q", tk.Title, "Test task")
	}
	if tk.Status != task.StatusInProgress {
		t.Errorf("Status = %q, want %q", tk.Status, task.StatusInProgress)
	}
	if tk.Priority != task.PriorityHigh {
		t.Errorf("Priority = %q, want %q", tk.Priority, task.PriorityHigh)
	}
	if tk.DueDate == nil || tk.DueDate.Format(time.DateOnly) != "2024-02-01" {
		t.Errorf("DueDate = %v, want 2024-02-01", tk.DueDate)
	}
	if tk.UpdatedAt.Nanosecond() != 1 {
		t.Errorf("UpdatedAt lost precision: %v", tk.UpdatedAt)
	}
	if tk.EstimatedHours != 2.5 {
		t.Errorf("EstimatedHours = %v, want 2.5", tk.EstimatedHours)
	}
	if tk.Description != "This is the description." {
		t.Errorf("Description = %q, want %q", tk.Description, "This is the description.")
	}
}

func TestParseMarkdownRejectsMissingFrontmatter(t *testing.T) {
	if _, err := ParseMarkdown([]byte("just text\n")); err == nil {
		t.Error("ParseMarkdown should fail without frontmatter")
	}
	if _, err := ParseMarkdown([]byte("---\nid: 1\n")); err == nil {
		t.Error("ParseMarkdown should fail on unclosed frontmatter")
	}
}

func TestParseMarkdownRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		front string
	}{
		{"unknown status", "status", "title: Report\nstatus: done\npriority: high"},
		{"unknown priority", "priority", "title: Report\nstatus: pending\npriority: urgent"},
		{"missing status", "status", "title: Report\npriority: high"},
		{"empty title", "title", "title: \"  \"\nstatus: pending\npriority: high"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "---\nid: 1\n" + tt.front + "\ncreated_at: 2024-01-15T10:30:00Z\n---\n"
			_, err := ParseMarkdown([]byte(content))
			var verr dasherrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ParseMarkdown error = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestDescriptionWhitespaceSurvivesRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	for _, desc := range []string{"  indented\nlines  ", "trailing newline\n", "\nleading blank"} {
		original := &task.Task{
			ID:          1,
			Title:       "Notes",
			Status:      task.StatusPending,
			Priority:    task.PriorityLow,
			CreatedAt:   now,
			UpdatedAt:   now,
			Description: desc,
		}
		data, err := SerializeMarkdown(original)
		if err != nil {
			t.Fatalf("SerializeMarkdown failed: %v", err)
		}
		parsed, err := ParseMarkdown(data)
		if err != nil {
			t.Fatalf("ParseMarkdown failed: %v", err)
		}
		if parsed.Description != desc {
			t.Errorf("Round-trip Description = %q, want %q", parsed.Description, desc)
		}
	}
}

func TestSerializeMarkdown(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 30, 0, 5, time.UTC)
	due := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	original := &task.Task{
		ID:             3,
		Title:          "Test task",
		Status:         task.StatusCompleted,
		Priority:       task.PriorityHigh,
		DueDate:        &due,
		CreatedAt:      now,
		UpdatedAt:      now,
		CompletedAt:    &now,
		EstimatedHours: 1,
		Description:    "Description here",
	}

	data, err := SerializeMarkdown(original)
	if err != nil {
		t.Fatalf("SerializeMarkdown failed: %v", err)
	}

	parsed, err := ParseMarkdown(data)
	if err != nil {
		t.Fatalf("ParseMarkdown failed: %v", err)
	}

	if parsed.ID != original.ID {
		t.Errorf("Round-trip ID = %d, want %d", parsed.ID, original.ID)
	}
	if parsed.Description != original.Description {
		t.Errorf("Round-trip Description = %q, want %q", parsed.Description, original.Description)
	}
	if !parsed.UpdatedAt.Equal(original.UpdatedAt) {
		t.Errorf("Round-trip UpdatedAt = %v, want %v", parsed.UpdatedAt, original.UpdatedAt)
	}
	if parsed.CompletedAt == nil || !parsed.CompletedAt.Equal(now) {
		t.Errorf("Round-trip CompletedAt = %v, want %v", parsed.CompletedAt, now)
	}
}

func TestStoreOperations(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	basePath := filepath.Join(tmpDir, "tasks")
	store := NewStoreWithPath(basePath)

	if store.IsInitialized() {
		t.Error("Store should not be initialized yet")
	}
	if _, err := store.List(ctx); !errors.As(err, &dasherrors.NotInitializedError{}) {
		t.Errorf("List before init error = %v, want NotInitializedError", err)
	}

	if err := store.Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.Init(false); !errors.As(err, &dasherrors.AlreadyInitializedError{}) {
		t.Errorf("second Init error = %v, want AlreadyInitializedError", err)
	}

	id, err := store.Create(ctx, task.Draft{Title: "Test task", Description: "Description"}.WithDefaults())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Title != "Test task" {
		t.Errorf("Loaded title = %q, want %q", loaded.Title, "Test task")
	}

	completed := task.StatusCompleted
	if err = store.Update(ctx, id, task.Patch{Status: &completed}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	updated, _ := store.Load(id)
	if !updated.UpdatedAt.After(loaded.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, loaded.UpdatedAt)
	}

	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("List length = %d, want 1", len(tasks))
	}

	if err = store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	tasks, _ = store.List(ctx)
	if len(tasks) != 0 {
		t.Errorf("After delete, list length = %d, want 0", len(tasks))
	}

	var notFound dasherrors.TaskNotFoundError
	if err = store.Delete(ctx, id); !errors.As(err, &notFound) {
		t.Errorf("second Delete error = %v, want TaskNotFoundError", err)
	}
	if err = store.Update(ctx, id, task.Patch{Status: &completed}); !errors.As(err, &notFound) {
		t.Errorf("Update of deleted task error = %v, want TaskNotFoundError", err)
	}
}

func TestStoreNeverReusesIDsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	basePath := filepath.Join(t.TempDir(), "tasks")

	first := NewStoreWithPath(basePath)
	if err := first.Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	id1, _ := first.Create(ctx, task.Draft{Title: "one"}.WithDefaults())
	id2, _ := first.Create(ctx, task.Draft{Title: "two"}.WithDefaults())
	if err := first.Delete(ctx, id2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// A new process opening the same directory must continue after id2.
	second := NewStoreWithPath(basePath)
	id3, err := second.Create(ctx, task.Draft{Title: "three"}.WithDefaults())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id3 == id1 || id3 == id2 {
		t.Errorf("Create reused id %d", id3)
	}
}

func TestStoreListOrder(t *testing.T) {
	ctx := context.Background()
	basePath := filepath.Join(t.TempDir(), "tasks")
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(basePath, func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	})
	if err := store.Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	// Ten or more tasks exercise numeric rather than lexical ordering.
	for i := range 11 {
		if _, err := store.Create(ctx, task.Draft{Title: "task " + string(rune('a'+i))}.WithDefaults()); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tasks, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i].ID < tasks[i-1].ID {
			t.Fatalf("List out of creation order at %d: %d before %d", i, tasks[i-1].ID, tasks[i].ID)
		}
	}
}

func TestStoreListReportsCorruptFiles(t *testing.T) {
	ctx := context.Background()
	basePath := filepath.Join(t.TempDir(), "tasks")
	store := NewStoreWithPath(basePath)
	if err := store.Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(basePath, "7.md"), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := store.List(ctx)
	var corrupt CorruptTaskError
	if !errors.As(err, &corrupt) {
		t.Fatalf("List error = %v, want CorruptTaskError", err)
	}
}

func TestStoreListRejectsOutOfEnumFile(t *testing.T) {
	ctx := context.Background()
	basePath := filepath.Join(t.TempDir(), "tasks")
	store := NewStoreWithPath(basePath)
	if err := store.Init(false); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	content := "---\nid: 4\ntitle: Edited by hand\nstatus: done\npriority: urgent\ncreated_at: 2024-01-15T10:30:00Z\n---\n"
	if err := os.WriteFile(filepath.Join(basePath, "4.md"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tasks, err := store.List(ctx)
	if tasks != nil {
		t.Errorf("List returned %d tasks alongside the error", len(tasks))
	}
	var corrupt CorruptTaskError
	if !errors.As(err, &corrupt) {
		t.Fatalf("List error = %v, want CorruptTaskError", err)
	}
	if !errors.As(err, &dasherrors.ValidationError{}) {
		t.Errorf("CorruptTaskError should wrap the ValidationError, got %v", corrupt.Err)
	}
	if _, err = store.Load(4); !errors.As(err, &corrupt) {
		t.Errorf("Load error = %v, want CorruptTaskError", err)
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple path", "/Users/abatilo/myproject", "Users-abatilo-myproject"},
		{"host and port", "localhost:8000", "localhost-8000"},
		{"path with special chars", "/home/user/my.project-v2", "home-user-my-project-v2"},
		{"root path", "/", ""},
		{"trailing slash", "api.example.com/v1/", "api-example-com-v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizePath(tt.input); got != tt.want {
				t.Errorf("SanitizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLayout(t *testing.T) {
	l := Layout{Home: "/tmp/dash"}
	if got := l.TasksDir(); got != "/tmp/dash/tasks" {
		t.Errorf("TasksDir() = %q", got)
	}
	if got := l.ConfigFile(); got != "/tmp/dash/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
	a := l.SessionDir("http://localhost:8000")
	b := l.SessionDir("https://api.example.com")
	if a == b {
		t.Error("different APIs must not share a session directory")
	}
	if a != "/tmp/dash/sessions/localhost-8000" {
		t.Errorf("SessionDir() = %q", a)
	}
}

func TestDefaultHomeHonorsOverride(t *testing.T) {
	t.Setenv("DASH_HOME", "/custom/dash")
	got, err := DefaultHome()
	if err != nil {
		t.Fatalf("DefaultHome failed: %v", err)
	}
	if got != "/custom/dash" {
		t.Errorf("DefaultHome() = %q, want %q", got, "/custom/dash")
	}
}
