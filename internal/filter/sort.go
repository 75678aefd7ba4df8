package filter

import (
	"slices"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

// SortKey selects a display ordering.
type SortKey string

const (
	// SortCreated keeps the order the backing returned.
	SortCreated  SortKey = "created"
	SortPriority SortKey = "priority"
	SortDue      SortKey = "due"
)

// ParseSortKey accepts "" (created), created, priority or due.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case "", SortCreated:
		return SortCreated, nil
	case SortPriority, SortDue:
		return SortKey(s), nil
	default:
		return "", dasherrors.InvalidFilterError{Kind: "sort", Value: s}
	}
}

// Sort returns a stably sorted copy of tasks.
func Sort(tasks []task.Task, key SortKey) []task.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []task.Task{}
	}
	switch key {
	case SortPriority:
		slices.SortStableFunc(out, func(a, b task.Task) int {
			return task.PriorityOrder(a.Priority) - task.PriorityOrder(b.Priority)
		})
	case SortDue:
		// Tasks without a due date go last.
		slices.SortStableFunc(out, func(a, b task.Task) int {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			default:
				return a.DueDate.Compare(*b.DueDate)
			}
		})
	case SortCreated:
	}
	return out
}
