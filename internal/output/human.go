package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/abatilo/dash/internal/assistant"
	"github.com/abatilo/dash/internal/stats"
	"github.com/abatilo/dash/internal/task"
)

const timestampLayout = "2006-01-02 15:04"

// HumanFormatter formats output for human-readable terminal display.
type HumanFormatter struct{}

// NewHumanFormatter creates a new HumanFormatter.
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// FormatTask formats a single task for display.
func (f *HumanFormatter) FormatTask(t task.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "[%d] %s\n", t.ID, t.Title)
	fmt.Fprintf(&sb, "  Status:    %s\n", t.Status)
	fmt.Fprintf(&sb, "  Priority:  %s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(&sb, "  Due:       %s\n", t.DueDate.Format(time.DateOnly))
	}
	fmt.Fprintf(&sb, "  Hours:     %.1f estimated, %.1f actual\n", t.EstimatedHours, t.ActualHours)
	fmt.Fprintf(&sb, "  Created:   %s\n", t.CreatedAt.Format(timestampLayout))
	fmt.Fprintf(&sb, "  Updated:   %s\n", t.UpdatedAt.Format(timestampLayout))
	if t.CompletedAt != nil {
		fmt.Fprintf(&sb, "  Completed: %s\n", t.CompletedAt.Format(timestampLayout))
	}
	if t.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Description)
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatTaskList formats a list of tasks for display.
func (f *HumanFormatter) FormatTaskList(tasks []task.Task) string {
	if len(tasks) == 0 {
		return "No tasks found.\n"
	}

	var sb strings.Builder
	for _, t := range tasks {
		sb.WriteString(f.formatTaskLine(t))
	}
	return sb.String()
}

// formatTaskLine formats a single task as a compact one-liner.
func (f *HumanFormatter) formatTaskLine(t task.Task) string {
	due := ""
	if t.DueDate != nil {
		due = " (due " + t.DueDate.Format(time.DateOnly) + ")"
	}
	return fmt.Sprintf("%s %s [%d] %s%s\n", f.statusIcon(t.Status), f.priorityMark(t.Priority), t.ID, t.Title, due)
}

func (f *HumanFormatter) statusIcon(s task.Status) string {
	switch s {
	case task.StatusPending:
		return "[ ]"
	case task.StatusInProgress:
		return "[*]"
	case task.StatusCompleted:
		return "[X]"
	default:
		return "[?]"
	}
}

func (f *HumanFormatter) priorityMark(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return "P1"
	case task.PriorityMedium:
		return "P2"
	case task.PriorityLow:
		return "P3"
	default:
		return "P?"
	}
}

// FormatSummary formats the overview: headline figures, then recent tasks.
func (f *HumanFormatter) FormatSummary(s stats.Summary, recent []task.Task) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total tasks:   %d\n", s.Total)
	fmt.Fprintf(&sb, "Completed:     %d (%.1f%%)\n", s.Completed, s.CompletionRate)
	fmt.Fprintf(&sb, "In progress:   %d\n", s.InProgress)
	fmt.Fprintf(&sb, "Pending:       %d\n", s.Pending)
	fmt.Fprintf(&sb, "Overdue:       %d\n", s.Overdue)
	fmt.Fprintf(&sb, "Productivity:  %.1f/100\n", s.ProductivityScore)

	sb.WriteString("\nRecent tasks:\n")
	sb.WriteString(f.FormatTaskList(recent))
	return sb.String()
}

// FormatAnalytics formats productivity figures and the daily trend.
func (f *HumanFormatter) FormatAnalytics(a stats.Analytics) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Total tasks:          %d\n", a.Stats.TotalTasks)
	fmt.Fprintf(&sb, "Completed:            %d\n", a.Stats.CompletedTasks)
	fmt.Fprintf(&sb, "In progress:          %d\n", a.Stats.InProgressTasks)
	fmt.Fprintf(&sb, "Pending:              %d\n", a.Stats.PendingTasks)
	fmt.Fprintf(&sb, "Avg completion time:  %.1fh\n", a.Stats.AvgCompletionTime)
	fmt.Fprintf(&sb, "Productivity score:   %.1f/100\n", a.ProductivityScore)

	if len(a.Trends) == 0 {
		sb.WriteString("\nNo activity in the last 7 days.\n")
		return sb.String()
	}
	sb.WriteString("\nLast 7 days:\n")
	for _, tr := range a.Trends {
		fmt.Fprintf(&sb, "  %s  created %d, completed %d\n", tr.Date, tr.TasksCreated, tr.TasksCompleted)
	}
	return sb.String()
}

// FormatChat formats an assistant reply.
func (f *HumanFormatter) FormatChat(r assistant.Reply) string {
	return r.Response + "\n"
}

// FormatInsights formats insights as a bulleted list.
func (f *HumanFormatter) FormatInsights(insights []string) string {
	if len(insights) == 0 {
		return "No insights available.\n"
	}
	var sb strings.Builder
	for _, in := range insights {
		fmt.Fprintf(&sb, "- %s\n", in)
	}
	return sb.String()
}

// FormatError formats an error for display.
func (f *HumanFormatter) FormatError(err error) string {
	return fmt.Sprintf("Error: %s\n", err.Error())
}

// FormatMessage formats a simple message.
func (f *HumanFormatter) FormatMessage(msg string) string {
	return msg + "\n"
}
