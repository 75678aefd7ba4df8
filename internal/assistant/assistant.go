// Package assistant answers productivity questions, either through the API's
// AI endpoints or offline from canned guidance and the local task list.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/remote"
	"github.com/abatilo/dash/internal/stats"
	"github.com/abatilo/dash/internal/task"
)

// Greeting introduces the assistant.
const Greeting = "Hello! I'm your Smart Workplace Assistant. I can help you with task management, " +
	"productivity insights, and workflow optimization. How can I assist you today?"

// Reply is an answer to one query.
type Reply struct {
	Response    string `json:"response"`
	ContextUsed bool   `json:"context_used"`
}

// Assistant answers queries and offers insights.
type Assistant interface {
	Ask(ctx context.Context, query, extra string) (Reply, error)
	Insights(ctx context.Context) ([]string, error)
}

// Remote forwards to the API.
type Remote struct {
	client *remote.Client
}

// NewRemote creates an Assistant backed by the API behind c.
func NewRemote(c *remote.Client) *Remote {
	return &Remote{client: c}
}

// Ask sends query, with optional extra context, to /ai/chat.
func (r *Remote) Ask(ctx context.Context, query, extra string) (Reply, error) {
	if err := checkQuery(query); err != nil {
		return Reply{}, err
	}
	resp, err := r.client.Chat(ctx, query, extra)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Response: resp.Response, ContextUsed: resp.ContextUsed}, nil
}

// Insights fetches /ai/insights.
func (r *Remote) Insights(ctx context.Context) ([]string, error) {
	return r.client.Insights(ctx)
}

// Lister is anything that can produce the current task list.
type Lister interface {
	List(ctx context.Context) ([]task.Task, error)
}

// Local answers offline with templated guidance.
type Local struct {
	tasks Lister
	now   func() time.Time
}

// NewLocal creates an offline Assistant that reads tasks from l.
func NewLocal(l Lister) *Local {
	return &Local{tasks: l, now: time.Now}
}

var baseInsights = []string{
	"Focus on completing pending tasks to improve your completion rate",
	"Consider breaking down large tasks into smaller, manageable chunks",
	"Set realistic time estimates based on your historical performance",
	"Prioritize high-impact tasks during your most productive hours",
}

// Ask returns a templated answer that mentions the current workload.
func (l *Local) Ask(ctx context.Context, query, _ string) (Reply, error) {
	if err := checkQuery(query); err != nil {
		return Reply{}, err
	}
	tasks, err := l.tasks.List(ctx)
	if err != nil {
		return Reply{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I understand you're asking about %q. ", strings.TrimSpace(query))
	b.WriteString("Based on your current tasks and productivity patterns, I recommend focusing on " +
		"high-priority items first and breaking down complex tasks into smaller, manageable steps.")
	if len(tasks) > 0 {
		s := stats.Summarize(tasks, l.now())
		fmt.Fprintf(&b, " You have %d pending and %d in-progress tasks", s.Pending, s.InProgress)
		if s.Overdue > 0 {
			fmt.Fprintf(&b, ", and %d overdue", s.Overdue)
		}
		b.WriteString(".")
	}
	return Reply{Response: b.String(), ContextUsed: len(tasks) > 0}, nil
}

// Insights returns canned suggestions, led by any that the task list makes urgent.
func (l *Local) Insights(ctx context.Context) ([]string, error) {
	tasks, err := l.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []string
	s := stats.Summarize(tasks, l.now())
	if s.Overdue > 0 {
		out = append(out, fmt.Sprintf("You have %d overdue task(s): reschedule or finish them first", s.Overdue))
	}
	if high := countOpenHigh(tasks); high > 0 {
		out = append(out, fmt.Sprintf("%d high-priority task(s) are still open", high))
	}
	return append(out, baseInsights...), nil
}

func countOpenHigh(tasks []task.Task) int {
	n := 0
	for _, t := range tasks {
		if t.Priority == task.PriorityHigh && !t.IsCompleted() {
			n++
		}
	}
	return n
}

func checkQuery(q string) error {
	if strings.TrimSpace(q) == "" {
		return dasherrors.ValidationError{Field: "query", Reason: "must not be empty"}
	}
	return nil
}
