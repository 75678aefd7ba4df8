package output

import (
	"github.com/abatilo/dash/internal/assistant"
	"github.com/abatilo/dash/internal/stats"
	"github.com/abatilo/dash/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(t task.Task) string
	FormatTaskList(tasks []task.Task) string
	FormatSummary(s stats.Summary, recent []task.Task) string
	FormatAnalytics(a stats.Analytics) string
	FormatChat(r assistant.Reply) string
	FormatInsights(insights []string) string
	FormatError(err error) string
	FormatMessage(msg string) string
}

// New returns the JSON formatter when asJSON is set, the human one otherwise.
func New(asJSON bool) Formatter {
	if asJSON {
		return NewJSONFormatter()
	}
	return NewHumanFormatter()
}
