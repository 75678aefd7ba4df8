package storage

import "fmt"

// CorruptTaskError indicates a task file exists but cannot be parsed.
type CorruptTaskError struct {
	Path string
	Err  error
}

func (e CorruptTaskError) Error() string {
	return fmt.Sprintf("corrupt task file %s: %v", e.Path, e.Err)
}

func (e CorruptTaskError) Unwrap() error {
	return e.Err
}
