package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abatilo/dash/internal/filter"
	"github.com/abatilo/dash/internal/task"
)

// addCmd implements 'dash add'.
func addCmd() *cobra.Command {
	var description, priority, status, due string
	var estimate, actual float64
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a new task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			d := task.Draft{
				Title:       args[0],
				Description: description,
				ActualHours: actual,
			}
			var err error
			if priority != "" {
				if d.Priority, err = task.ParsePriority(priority); err != nil {
					printError(err)
				}
			}
			if status != "" {
				if d.Status, err = task.ParseStatus(status); err != nil {
					printError(err)
				}
			}
			if due != "" {
				dueDate, parseErr := task.ParseDate(due)
				if parseErr != nil {
					printError(parseErr)
				}
				d.DueDate = &dueDate
			}
			if cmd.Flags().Changed("estimate") {
				d.EstimatedHours = &estimate
			}

			s := getStore(loadConfig())
			t, err := s.Create(cmd.Context(), d)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority (high, medium, low; default medium)")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (pending, in_progress, completed; default pending)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&estimate, "estimate", task.DefaultEstimatedHours, "Estimated hours")
	cmd.Flags().Float64Var(&actual, "actual", 0, "Hours already spent")
	return cmd
}

// listCmd implements 'dash list'.
func listCmd() *cobra.Command {
	var query, status, priority, sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching a query and filters",
		Run: func(cmd *cobra.Command, _ []string) {
			sf, err := filter.ParseStatusFilter(status)
			if err != nil {
				printError(err)
			}
			pf, err := filter.ParsePriorityFilter(priority)
			if err != nil {
				printError(err)
			}
			key, err := filter.ParseSortKey(sortKey)
			if err != nil {
				printError(err)
			}

			s := getStore(loadConfig())
			tasks, err := s.List(cmd.Context())
			if err != nil {
				printError(err)
			}

			shown := filter.Apply(tasks, filter.Criteria{Query: query, Status: sf, Priority: pf})
			printOutput(formatter.FormatTaskList(filter.Sort(shown, key)))
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive text to find in title or description")
	cmd.Flags().StringVar(&status, "status", filter.All, "Status filter (all, pending, in_progress, completed)")
	cmd.Flags().StringVar(&priority, "priority", filter.All, "Priority filter (all, high, medium, low)")
	cmd.Flags().StringVar(&sortKey, "sort", string(filter.SortCreated), "Sort order (created, priority, due)")
	return cmd
}

// showCmd implements 'dash show'.
func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			s := getStore(loadConfig())
			t, err := s.Get(cmd.Context(), id)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// editCmd implements 'dash edit'.
func editCmd() *cobra.Command {
	var title, description, priority, status, due string
	var estimate, actual float64
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			changed := cmd.Flags().Changed

			var p task.Patch
			if changed("title") {
				p.Title = &title
			}
			if changed("description") {
				p.Description = &description
			}
			if changed("priority") {
				pr, err := task.ParsePriority(priority)
				if err != nil {
					printError(err)
				}
				p.Priority = &pr
			}
			if changed("status") {
				st, err := task.ParseStatus(status)
				if err != nil {
					printError(err)
				}
				p.Status = &st
			}
			if changed("due") {
				d, err := task.ParseDate(due)
				if err != nil {
					printError(err)
				}
				p.DueDate = &d
			}
			p.ClearDueDate = clearDue
			if changed("estimate") {
				p.EstimatedHours = &estimate
			}
			if changed("actual") {
				p.ActualHours = &actual
			}
			if p.Empty() {
				printError(NothingToUpdateError{ID: id})
			}

			s := getStore(loadConfig())
			t, err := s.Update(cmd.Context(), id, p)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority (high, medium, low)")
	cmd.Flags().StringVar(&status, "status", "", "New status (pending, in_progress, completed)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	cmd.Flags().Float64Var(&estimate, "estimate", 0, "New estimated hours")
	cmd.Flags().Float64Var(&actual, "actual", 0, "New actual hours")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

// toggleCmd implements 'dash toggle'.
func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task completed, or reopen a completed one",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			s := getStore(loadConfig())
			t, err := s.ToggleCompletion(cmd.Context(), id)
			if err != nil {
				printError(err)
			}
			printOutput(formatter.FormatTask(t))
		},
	}
}

// rmCmd implements 'dash rm'.
func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a task",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			s := getStore(loadConfig())
			if err := s.Delete(cmd.Context(), id); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage(fmt.Sprintf("Removed task %d", id)))
		},
	}
}
