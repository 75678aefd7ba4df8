package main

import "fmt"

// InvalidIDError indicates a task id argument is not a positive integer.
type InvalidIDError struct {
	Value string
}

func (e InvalidIDError) Error() string {
	return fmt.Sprintf("invalid task id: %q (must be a positive integer)", e.Value)
}

// NothingToUpdateError indicates edit was called without any field flags.
type NothingToUpdateError struct {
	ID int64
}

func (e NothingToUpdateError) Error() string {
	return fmt.Sprintf("nothing to update for task %d: pass at least one field flag", e.ID)
}
