// Package store is the single authoritative holder of the session's task
// collection. It validates input, applies defaults and keeps a read-only
// snapshot that is always reconciled from the backing after a mutation.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

// Backing is the storage capability behind a Store. In-memory, file-backed and
// remote implementations all satisfy it.
type Backing interface {
	// List returns every task in the order the source provides them.
	List(ctx context.Context) ([]task.Task, error)
	// Create stores an already validated and defaulted draft and returns its new ID.
	// A non-zero ID alongside an error means the task exists but was not fully
	// initialized.
	Create(ctx context.Context, d task.Draft) (int64, error)
	// Update applies an already validated patch; TaskNotFoundError if id is absent.
	Update(ctx context.Context, id int64, p task.Patch) error
	// Delete removes a task permanently; TaskNotFoundError if id is absent.
	Delete(ctx context.Context, id int64) error
}

// Store wraps a Backing. It is safe for concurrent use.
type Store struct {
	backing Backing
	logger  *slog.Logger

	// mutate serializes mutations so a refresh never races ahead of one.
	mutate sync.Mutex
	lists  singleflight.Group

	mu       sync.RWMutex
	snapshot []task.Task
	// gen counts completed mutations; a list that started before one must
	// not overwrite the snapshot taken after it.
	gen uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store over b.
func New(b Backing, opts ...Option) *Store {
	s := &Store{
		backing: b,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches the current collection from the backing and returns a copy.
// Concurrent calls share a single backing round trip. Cancelling ctx abandons
// this caller's wait only; the shared fetch keeps going for the others.
func (s *Store) List(ctx context.Context) ([]task.Task, error) {
	ch := s.lists.DoChan("list", func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("list coalesced with in-flight refresh")
		}
		return cloneTasks(res.Val.([]task.Task)), nil
	}
}

// fetch reads the backing and records the snapshot unless a mutation
// completed while the read was in flight.
func (s *Store) fetch(ctx context.Context) ([]task.Task, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	tasks, err := s.backing.List(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.snapshot = slices.Clone(tasks)
	}
	s.mu.Unlock()
	return tasks, nil
}

// refresh is used after a mutation. It never joins a List that may have
// started before the mutation resolved.
func (s *Store) refresh(ctx context.Context) ([]task.Task, error) {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	tasks, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return cloneTasks(tasks), nil
}

// Snapshot returns the collection as of the last List without a round trip.
func (s *Store) Snapshot() []task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.snapshot)
}

// Get refreshes the collection and returns the task with the given id.
func (s *Store) Get(ctx context.Context, id int64) (task.Task, error) {
	tasks, err := s.List(ctx)
	if err != nil {
		return task.Task{}, err
	}
	return find(tasks, id)
}

// Create validates d, applies defaults, stores it and returns the stored task.
// When the backing created the task but could not finish initializing it, the
// stored task is returned together with the backing's error.
func (s *Store) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := d.Validate(); err != nil {
		return task.Task{}, err
	}
	d = d.WithDefaults()

	s.mutate.Lock()
	defer s.mutate.Unlock()

	id, err := s.backing.Create(ctx, d)
	if err != nil && id == 0 {
		return task.Task{}, err
	}
	if err != nil {
		s.logger.Warn("task created with errors", "id", id, "error", err)
		t, refreshErr := s.reconcile(ctx, id)
		if refreshErr != nil {
			return task.Task{}, errors.Join(err, refreshErr)
		}
		return t, err
	}
	s.logger.Debug("task created", "id", id)
	return s.reconcile(ctx, id)
}

// Update merges p into the task with the given id and returns the stored result.
func (s *Store) Update(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	if err := p.Validate(); err != nil {
		return task.Task{}, err
	}

	s.mutate.Lock()
	defer s.mutate.Unlock()

	return s.update(ctx, id, p)
}

// ToggleCompletion flips a task between completed and pending. Any other status
// becomes completed. It goes through the same path as Update.
func (s *Store) ToggleCompletion(ctx context.Context, id int64) (task.Task, error) {
	s.mutate.Lock()
	defer s.mutate.Unlock()

	tasks, err := s.refresh(ctx)
	if err != nil {
		return task.Task{}, err
	}
	current, err := find(tasks, id)
	if err != nil {
		return task.Task{}, err
	}
	next := task.StatusCompleted
	if current.IsCompleted() {
		next = task.StatusPending
	}
	p := task.Patch{Status: &next}
	if err = p.Validate(); err != nil {
		return task.Task{}, err
	}
	return s.update(ctx, id, p)
}

// Delete removes the task with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mutate.Lock()
	defer s.mutate.Unlock()

	if err := s.backing.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Debug("task deleted", "id", id)
	if _, err := s.refresh(ctx); err != nil {
		return fmt.Errorf("refresh after delete: %w", err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, id int64, p task.Patch) (task.Task, error) {
	if err := s.backing.Update(ctx, id, p); err != nil {
		return task.Task{}, err
	}
	s.logger.Debug("task updated", "id", id)
	return s.reconcile(ctx, id)
}

// reconcile re-fetches the collection after a mutation and returns the task as
// the backing now reports it.
func (s *Store) reconcile(ctx context.Context, id int64) (task.Task, error) {
	tasks, err := s.refresh(ctx)
	if err != nil {
		return task.Task{}, fmt.Errorf("refresh after mutation of task %d: %w", id, err)
	}
	return find(tasks, id)
}

func find(tasks []task.Task, id int64) (task.Task, error) {
	for _, t := range tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return task.Task{}, dasherrors.TaskNotFoundError{ID: id}
}

// cloneTasks deep-copies the pointer fields so callers cannot reach into the cache.
func cloneTasks(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		if t.DueDate != nil {
			due := *t.DueDate
			t.DueDate = &due
		}
		if t.CompletedAt != nil {
			completed := *t.CompletedAt
			t.CompletedAt = &completed
		}
		out[i] = t
	}
	return out
}
