package output

import (
	"encoding/json"
	"time"

	"github.com/abatilo/dash/internal/assistant"
	"github.com/abatilo/dash/internal/stats"
	"github.com/abatilo/dash/internal/task"
)

// JSONFormatter formats output as JSON.
type JSONFormatter struct{}

// marshalJSON marshals a value to indented JSON with a trailing newline.
func marshalJSON(v any) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data) + "\n"
}

// NewJSONFormatter creates a new JSONFormatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// taskJSON is the JSON representation of a task, using the API's field names.
type taskJSON struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	Priority       string  `json:"priority"`
	Status         string  `json:"status"`
	DueDate        *string `json:"due_date,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
	CompletedAt    *string `json:"completed_at,omitempty"`
	EstimatedHours float64 `json:"estimated_hours"`
	ActualHours    float64 `json:"actual_hours"`
}

func toTaskJSON(t task.Task) taskJSON {
	tj := taskJSON{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		CreatedAt:      t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339Nano),
		EstimatedHours: t.EstimatedHours,
		ActualHours:    t.ActualHours,
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(time.DateOnly)
		tj.DueDate = &s
	}
	if t.CompletedAt != nil {
		s := t.CompletedAt.Format(time.RFC3339Nano)
		tj.CompletedAt = &s
	}
	return tj
}

func toTaskListJSON(tasks []task.Task) []taskJSON {
	jsonTasks := make([]taskJSON, len(tasks))
	for i, t := range tasks {
		jsonTasks[i] = toTaskJSON(t)
	}
	return jsonTasks
}

// FormatTask formats a single task as JSON.
func (f *JSONFormatter) FormatTask(t task.Task) string {
	return marshalJSON(toTaskJSON(t))
}

// FormatTaskList formats a list of tasks as JSON.
func (f *JSONFormatter) FormatTaskList(tasks []task.Task) string {
	return marshalJSON(toTaskListJSON(tasks))
}

// summaryJSON is the JSON representation of the overview.
type summaryJSON struct {
	stats.Summary
	Recent []taskJSON `json:"recent"`
}

// FormatSummary formats the overview as JSON.
func (f *JSONFormatter) FormatSummary(s stats.Summary, recent []task.Task) string {
	return marshalJSON(summaryJSON{Summary: s, Recent: toTaskListJSON(recent)})
}

// FormatAnalytics formats analytics in the same shape the API returns.
func (f *JSONFormatter) FormatAnalytics(a stats.Analytics) string {
	if a.Trends == nil {
		a.Trends = []stats.Trend{}
	}
	return marshalJSON(a)
}

// FormatChat formats an assistant reply as JSON.
func (f *JSONFormatter) FormatChat(r assistant.Reply) string {
	return marshalJSON(r)
}

// insightsJSON is the JSON representation of assistant insights.
type insightsJSON struct {
	Insights []string `json:"insights"`
}

// FormatInsights formats insights as JSON.
func (f *JSONFormatter) FormatInsights(insights []string) string {
	if insights == nil {
		insights = []string{}
	}
	return marshalJSON(insightsJSON{Insights: insights})
}

// errorJSON is the JSON representation of an error.
type errorJSON struct {
	Error string `json:"error"`
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(err error) string {
	return marshalJSON(errorJSON{Error: err.Error()})
}

// messageJSON is the JSON representation of a message.
type messageJSON struct {
	Message string `json:"message"`
}

// FormatMessage formats a simple message as JSON.
func (f *JSONFormatter) FormatMessage(msg string) string {
	return marshalJSON(messageJSON{Message: msg})
}
