package storage

import (
	"cmp"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

const (
	fileExt  = ".md"
	metaFile = "meta.yaml"
)

// meta records the ID high-water mark so deleted IDs are never handed out again.
type meta struct {
	LastID int64 `yaml:"last_id"`
}

// Store keeps one markdown file per task under basePath.
// It satisfies store.Backing.
type Store struct {
	basePath string
	clock    *task.Clock
	mu       sync.Mutex
}

// NewStoreWithPath creates a Store with a custom base path.
func NewStoreWithPath(path string) *Store {
	return &Store{basePath: path, clock: task.NewClock(nil)}
}

// NewStoreWithClock creates a Store whose timestamps come from now.
func NewStoreWithClock(path string, now func() time.Time) *Store {
	return &Store{basePath: path, clock: task.NewClock(now)}
}

// BasePath returns the base path of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

// IsInitialized checks if the task directory exists.
func (s *Store) IsInitialized() bool {
	info, err := os.Stat(s.basePath)
	return err == nil && info.IsDir()
}

// Init creates the task directory.
func (s *Store) Init(force bool) error {
	if s.IsInitialized() && !force {
		return dasherrors.AlreadyInitializedError{}
	}
	//nolint:gosec // G301: 0755 is appropriate for a user-owned data directory
	return os.MkdirAll(s.basePath, 0o755)
}

// taskPath returns the full path for a task file.
func (s *Store) taskPath(id int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(id, 10)+fileExt)
}

// Save writes a task to disk.
func (s *Store) Save(t *task.Task) error {
	if !s.IsInitialized() {
		return dasherrors.NotInitializedError{}
	}
	content, err := SerializeMarkdown(t)
	if err != nil {
		return err
	}
	//nolint:gosec // G306: 0644 is appropriate for user-readable task files
	return os.WriteFile(s.taskPath(t.ID), content, 0o644)
}

// Load reads a task from disk.
func (s *Store) Load(id int64) (*task.Task, error) {
	if !s.IsInitialized() {
		return nil, dasherrors.NotInitializedError{}
	}
	path := s.taskPath(id)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, dasherrors.TaskNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	t, err := ParseMarkdown(content)
	if err != nil {
		return nil, CorruptTaskError{Path: path, Err: err}
	}
	return t, nil
}

// List returns all tasks in creation order.
func (s *Store) List(_ context.Context) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.allIDs()
	if err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		t, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}

	slices.SortStableFunc(tasks, func(a, b task.Task) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return tasks, nil
}

// Create writes a new task file with the next unused ID.
func (s *Store) Create(_ context.Context, d task.Draft) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.IsInitialized() {
		return 0, dasherrors.NotInitializedError{}
	}
	seq, err := s.sequence()
	if err != nil {
		return 0, err
	}

	t := d.NewTask(seq.Next(), s.clock.Now())
	if err = s.saveMeta(meta{LastID: seq.Last()}); err != nil {
		return 0, err
	}
	if err = s.Save(&t); err != nil {
		return 0, err
	}
	return t.ID, nil
}

// Update merges p into the stored task.
func (s *Store) Update(_ context.Context, id int64, p task.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.Load(id)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	// The clock only orders timestamps within this process; files may come
	// from an earlier run.
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Nanosecond)
	}
	p.ApplyTo(t, now)
	return s.Save(t)
}

// Delete removes a task file.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.IsInitialized() {
		return dasherrors.NotInitializedError{}
	}
	err := os.Remove(s.taskPath(id))
	if os.IsNotExist(err) {
		return dasherrors.TaskNotFoundError{ID: id}
	}
	return err
}

// allIDs returns the IDs of every task file in the directory.
func (s *Store) allIDs() ([]int64, error) {
	if !s.IsInitialized() {
		return nil, dasherrors.NotInitializedError{}
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(entry.Name(), fileExt), 10, 64)
		if err != nil {
			continue // Not a task file
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// sequence rebuilds the ID allocator from meta.yaml and the files on disk.
func (s *Store) sequence() (*task.Sequence, error) {
	m, err := s.loadMeta()
	if err != nil {
		return nil, err
	}
	seq := task.NewSequence(m.LastID)
	ids, err := s.allIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		seq.Observe(id)
	}
	return seq, nil
}

func (s *Store) loadMeta() (meta, error) {
	data, err := os.ReadFile(filepath.Join(s.basePath, metaFile))
	if errors.Is(err, os.ErrNotExist) {
		return meta{}, nil
	}
	if err != nil {
		return meta{}, err
	}
	var m meta
	if err = yaml.Unmarshal(data, &m); err != nil {
		return meta{}, &parseError{"invalid " + metaFile + ": " + err.Error()}
	}
	return m, nil
}

func (s *Store) saveMeta(m meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	//nolint:gosec // G306: 0644 is appropriate for user-readable metadata
	return os.WriteFile(filepath.Join(s.basePath, metaFile), data, 0o644)
}
