package memory

import (
	"time"

	"github.com/abatilo/dash/internal/task"
)

// DemoTasks returns the sample collection the offline dashboard starts with.
func DemoTasks() []task.Task {
	day := func(d int) time.Time {
		return time.Date(2024, time.January, d, 9, 0, 0, 0, time.UTC)
	}
	completedAt := day(16)
	return []task.Task{
		{
			ID:             1,
			Title:          "Complete project proposal",
			Description:    "Draft and finalize the Q1 project proposal",
			Priority:       task.PriorityHigh,
			Status:         task.StatusInProgress,
			CreatedAt:      day(15),
			UpdatedAt:      day(15),
			EstimatedHours: 4,
		},
		{
			ID:             2,
			Title:          "Review team performance",
			Description:    "Conduct quarterly performance reviews",
			Priority:       task.PriorityMedium,
			Status:         task.StatusPending,
			CreatedAt:      day(14),
			UpdatedAt:      day(14),
			EstimatedHours: task.DefaultEstimatedHours,
		},
		{
			ID:             3,
			Title:          "Update documentation",
			Description:    "Update API documentation for new features",
			Priority:       task.PriorityLow,
			Status:         task.StatusCompleted,
			CreatedAt:      day(13),
			UpdatedAt:      completedAt,
			CompletedAt:    &completedAt,
			EstimatedHours: 2,
			ActualHours:    3,
		},
	}
}
