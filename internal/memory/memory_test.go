//nolint:testpackage // Tests require internal access for thorough testing
package memory

import (
	"context"
	"errors"
	"testing"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

func TestBackingInsertionOrder(t *testing.T) {
	ctx := context.Background()
	b := New()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := b.Create(ctx, task.Draft{Title: title}.WithDefaults()); err != nil {
			t.Fatalf("Create(%q) failed: %v", title, err)
		}
	}

	tasks, err := b.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, tk := range tasks {
		if tk.Title != want[i] {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tk.Title, want[i])
		}
	}
}

func TestBackingDeleteKeepsOrderAndNeverReusesIDs(t *testing.T) {
	ctx := context.Background()
	b := New()

	a, _ := b.Create(ctx, task.Draft{Title: "a"}.WithDefaults())
	bID, _ := b.Create(ctx, task.Draft{Title: "b"}.WithDefaults())
	c, _ := b.Create(ctx, task.Draft{Title: "c"}.WithDefaults())

	if err := b.Delete(ctx, bID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := b.Delete(ctx, c); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	d, _ := b.Create(ctx, task.Draft{Title: "d"}.WithDefaults())
	if d == bID || d == c {
		t.Errorf("Create reused deleted id %d", d)
	}

	// Updating after a delete must still find the right slot.
	title := "a2"
	if err := b.Update(ctx, a, task.Patch{Title: &title}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	tasks, _ := b.List(ctx)
	if len(tasks) != 2 || tasks[0].Title != "a2" || tasks[1].Title != "d" {
		t.Errorf("List after delete/update = %+v", tasks)
	}
}

func TestBackingNotFound(t *testing.T) {
	ctx := context.Background()
	b := New()

	var notFound dasherrors.TaskNotFoundError
	if err := b.Update(ctx, 99, task.Patch{}); !errors.As(err, &notFound) {
		t.Errorf("Update(99) error = %v, want TaskNotFoundError", err)
	}
	if err := b.Delete(ctx, 99); !errors.As(err, &notFound) {
		t.Errorf("Delete(99) error = %v, want TaskNotFoundError", err)
	}
}

func TestBackingListIsACopy(t *testing.T) {
	ctx := context.Background()
	b := New()
	_, _ = b.Create(ctx, task.Draft{Title: "original"}.WithDefaults())

	tasks, _ := b.List(ctx)
	tasks[0].Title = "mutated"

	again, _ := b.List(ctx)
	if again[0].Title != "original" {
		t.Errorf("external mutation leaked into backing: %q", again[0].Title)
	}
}

func TestNewWithSeed(t *testing.T) {
	ctx := context.Background()
	b := NewWithSeed(DemoTasks())

	seeded, err := b.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(seeded) != 3 {
		t.Fatalf("seeded %d tasks, want 3", len(seeded))
	}
	id, err := b.Create(ctx, task.Draft{Title: "new"}.WithDefaults())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id != 4 {
		t.Errorf("first id after seed = %d, want 4", id)
	}
}
