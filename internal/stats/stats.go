// Package stats computes the overview and analytics figures from a task list.
package stats

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/abatilo/dash/internal/task"
)

const (
	trendDays       = 7
	pointsPerDay    = 5
	maxProductivity = 100
)

// Summary is what the overview shows at a glance.
type Summary struct {
	Total             int     `json:"total"`
	Pending           int     `json:"pending"`
	InProgress        int     `json:"in_progress"`
	Completed         int     `json:"completed"`
	Overdue           int     `json:"overdue"`
	CompletionRate    float64 `json:"completion_rate"`
	AvgActualHours    float64 `json:"avg_actual_hours"`
	ProductivityScore float64 `json:"productivity_score"`
}

// Counts mirrors the stats object returned by /analytics.
type Counts struct {
	TotalTasks        int     `json:"total_tasks"`
	CompletedTasks    int     `json:"completed_tasks"`
	InProgressTasks   int     `json:"in_progress_tasks"`
	PendingTasks      int     `json:"pending_tasks"`
	AvgCompletionTime float64 `json:"avg_completion_time"`
}

// Trend is one day of task activity.
type Trend struct {
	Date           string `json:"date"`
	TasksCreated   int    `json:"tasks_created"`
	TasksCompleted int    `json:"tasks_completed"`
}

// Analytics is the /analytics payload, also computed locally when offline.
type Analytics struct {
	Stats             Counts  `json:"stats"`
	Trends            []Trend `json:"trends"`
	ProductivityScore float64 `json:"productivity_score"`
}

// Analyze computes analytics the same way the API does: counts over every task,
// per-day trends for tasks created in the last seven days, and a score.
func Analyze(tasks []task.Task, now time.Time) Analytics {
	var (
		c          Counts
		hoursTotal float64
	)
	for _, t := range tasks {
		c.TotalTasks++
		switch t.Status {
		case task.StatusCompleted:
			c.CompletedTasks++
			hoursTotal += t.ActualHours
		case task.StatusInProgress:
			c.InProgressTasks++
		case task.StatusPending:
			c.PendingTasks++
		}
	}
	if c.CompletedTasks > 0 {
		c.AvgCompletionTime = hoursTotal / float64(c.CompletedTasks)
	}

	trends := trendsSince(tasks, startOfDay(now).AddDate(0, 0, -trendDays))
	return Analytics{
		Stats:             c,
		Trends:            trends,
		ProductivityScore: score(completionRate(c), len(trends)),
	}
}

// Summarize computes the overview figures at now.
func Summarize(tasks []task.Task, now time.Time) Summary {
	a := Analyze(tasks, now)
	today := now.UTC().Format(time.DateOnly)

	overdue := 0
	for _, t := range tasks {
		if t.DueDate != nil && !t.IsCompleted() && t.DueDate.Format(time.DateOnly) < today {
			overdue++
		}
	}

	return Summary{
		Total:             a.Stats.TotalTasks,
		Pending:           a.Stats.PendingTasks,
		InProgress:        a.Stats.InProgressTasks,
		Completed:         a.Stats.CompletedTasks,
		Overdue:           overdue,
		CompletionRate:    round1(completionRate(a.Stats)),
		AvgActualHours:    round1(a.Stats.AvgCompletionTime),
		ProductivityScore: a.ProductivityScore,
	}
}

// Recent returns a copy of the first n tasks.
func Recent(tasks []task.Task, n int) []task.Task {
	n = max(0, min(n, len(tasks)))
	return slices.Clone(tasks[:n])
}

func trendsSince(tasks []task.Task, cutoff time.Time) []Trend {
	byDay := make(map[string]*Trend)
	for _, t := range tasks {
		if t.CreatedAt.Before(cutoff) {
			continue
		}
		day := t.CreatedAt.UTC().Format(time.DateOnly)
		tr, ok := byDay[day]
		if !ok {
			tr = &Trend{Date: day}
			byDay[day] = tr
		}
		tr.TasksCreated++
		if t.IsCompleted() {
			tr.TasksCompleted++
		}
	}

	trends := make([]Trend, 0, len(byDay))
	for _, tr := range byDay {
		trends = append(trends, *tr)
	}
	slices.SortFunc(trends, func(a, b Trend) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return trends
}

func completionRate(c Counts) float64 {
	if c.TotalTasks == 0 {
		return 0
	}
	return float64(c.CompletedTasks) / float64(c.TotalTasks) * 100
}

func score(rate float64, activeDays int) float64 {
	return round1(math.Min(maxProductivity, rate+float64(activeDays*pointsPerDay)))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
