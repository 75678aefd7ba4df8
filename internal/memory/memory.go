// Package memory provides a process-local task backing. Mutations are
// synchronous and visible to the next List immediately.
package memory

import (
	"context"
	"sync"
	"time"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

// Backing keeps tasks in insertion order.
type Backing struct {
	mu    sync.RWMutex
	tasks []task.Task
	index map[int64]int
	seq   *task.Sequence
	clock *task.Clock
}

// Option configures a Backing.
type Option func(*Backing)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(b *Backing) {
		b.clock = task.NewClock(now)
	}
}

// New creates an empty Backing.
func New(opts ...Option) *Backing {
	b := &Backing{
		index: make(map[int64]int),
		seq:   task.NewSequence(0),
		clock: task.NewClock(nil),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewWithSeed creates a Backing preloaded with tasks. Seed IDs are kept and
// the sequence continues after the highest one.
func NewWithSeed(seed []task.Task, opts ...Option) *Backing {
	b := New(opts...)
	for _, t := range seed {
		b.index[t.ID] = len(b.tasks)
		b.tasks = append(b.tasks, t)
		b.seq.Observe(t.ID)
	}
	return b
}

// List returns a copy of all tasks in insertion order.
func (b *Backing) List(_ context.Context) ([]task.Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]task.Task, len(b.tasks))
	copy(out, b.tasks)
	return out, nil
}

// Create appends a new task.
func (b *Backing) Create(_ context.Context, d task.Draft) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := d.NewTask(b.seq.Next(), b.clock.Now())
	b.index[t.ID] = len(b.tasks)
	b.tasks = append(b.tasks, t)
	return t.ID, nil
}

// Update merges p into the stored task.
func (b *Backing) Update(_ context.Context, id int64, p task.Patch) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, found := b.index[id]
	if !found {
		return dasherrors.TaskNotFoundError{ID: id}
	}
	p.ApplyTo(&b.tasks[i], b.clock.Now())
	return nil
}

// Delete removes the task and reindexes the ones after it.
func (b *Backing) Delete(_ context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, found := b.index[id]
	if !found {
		return dasherrors.TaskNotFoundError{ID: id}
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	delete(b.index, id)
	for j := i; j < len(b.tasks); j++ {
		b.index[b.tasks[j].ID] = j
	}
	return nil
}
