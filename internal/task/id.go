package task

import (
	"sync"
	"time"
)

// Sequence hands out task IDs. IDs start at 1, only ever grow, and are never
// reused even after the task holding them is deleted.
type Sequence struct {
	mu   sync.Mutex
	last int64
}

// NewSequence creates a Sequence that continues after last.
func NewSequence(last int64) *Sequence {
	return &Sequence{last: last}
}

// Next returns a fresh ID.
func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last++
	return s.last
}

// Observe raises the high-water mark so that id will never be handed out.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}

// Last returns the highest ID handed out or observed so far.
func (s *Sequence) Last() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Clock returns UTC timestamps that strictly increase between calls, even when
// the underlying clock is coarse or steps backwards.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock wraps now. A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Now returns the next timestamp.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}
