// Package filter derives the displayed subset of a task list from a free-text
// query and status/priority selections. Everything here is pure: inputs are
// never modified and the same arguments always give the same result.
package filter

import (
	"strings"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

// All is the selector value that disables a status or priority predicate.
const All = "all"

// StatusFilter is a task status or All.
type StatusFilter string

// PriorityFilter is a task priority or All.
type PriorityFilter string

// AllStatuses and AllPriorities disable their predicate.
const (
	AllStatuses   StatusFilter   = All
	AllPriorities PriorityFilter = All
)

// Criteria combines the three conjunctive predicates.
// The zero value matches every task.
type Criteria struct {
	Query    string
	Status   StatusFilter
	Priority PriorityFilter
}

// ParseStatusFilter accepts "", "all" or any task status.
func ParseStatusFilter(s string) (StatusFilter, error) {
	if s == "" || strings.EqualFold(s, All) {
		return AllStatuses, nil
	}
	st, err := task.ParseStatus(s)
	if err != nil {
		return "", dasherrors.InvalidFilterError{Kind: "status", Value: s}
	}
	return StatusFilter(st), nil
}

// ParsePriorityFilter accepts "", "all" or any task priority.
func ParsePriorityFilter(s string) (PriorityFilter, error) {
	if s == "" || strings.EqualFold(s, All) {
		return AllPriorities, nil
	}
	p, err := task.ParsePriority(s)
	if err != nil {
		return "", dasherrors.InvalidFilterError{Kind: "priority", Value: s}
	}
	return PriorityFilter(p), nil
}

// Matches reports whether t passes every active predicate.
func (c Criteria) Matches(t task.Task) bool {
	return c.matcher().matches(t)
}

// Apply returns the tasks matching c, preserving input order.
// The result is a new slice even when nothing is filtered out.
func Apply(tasks []task.Task, c Criteria) []task.Task {
	m := c.matcher()
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if m.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// matcher holds the case-folded query so Apply folds it once per call.
type matcher struct {
	query    string
	status   StatusFilter
	priority PriorityFilter
}

func (c Criteria) matcher() matcher {
	return matcher{
		query:    strings.ToLower(c.Query),
		status:   c.Status,
		priority: c.Priority,
	}
}

func (m matcher) matches(t task.Task) bool {
	if m.query != "" && !m.matchesQuery(t) {
		return false
	}
	if m.status != "" && m.status != AllStatuses && task.Status(m.status) != t.Status {
		return false
	}
	if m.priority != "" && m.priority != AllPriorities && task.Priority(m.priority) != t.Priority {
		return false
	}
	return true
}

func (m matcher) matchesQuery(t task.Task) bool {
	if strings.Contains(strings.ToLower(t.Title), m.query) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), m.query)
}
