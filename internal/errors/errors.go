//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import (
	"fmt"
	"net/http"
)

// NotInitializedError indicates the local task directory doesn't exist.
type NotInitializedError struct{}

func (e NotInitializedError) Error() string {
	return "dash not initialized: run 'dash init' first"
}

// AlreadyInitializedError indicates the local task directory already exists.
type AlreadyInitializedError struct{}

func (e AlreadyInitializedError) Error() string {
	return "dash already initialized"
}

// TaskNotFoundError indicates the task ID is not present in the store.
type TaskNotFoundError struct {
	ID int64
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %d", e.ID)
}

// ValidationError indicates malformed input to create or update.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// RemoteError indicates a transport or service failure during a remote call.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e RemoteError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s failed: %d %s: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Message != "":
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	default:
		return e.Op + " failed"
	}
}

// Unwrap exposes the transport error, or SessionInvalidError for a 401.
func (e RemoteError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return SessionInvalidError{Op: e.Op}
	}
	return e.Err
}

// PartialCreateError indicates a task was created but a follow-up step of the
// create failed. The task exists under ID; re-issuing the create would
// duplicate it.
type PartialCreateError struct {
	ID  int64
	Err error
}

func (e PartialCreateError) Error() string {
	return fmt.Sprintf("task %d created but its initial fields were not applied: %v", e.ID, e.Err)
}

func (e PartialCreateError) Unwrap() error {
	return e.Err
}

// SessionInvalidError indicates the backend rejected the bearer credential.
type SessionInvalidError struct {
	Op string
}

func (e SessionInvalidError) Error() string {
	return fmt.Sprintf("session invalid during %s: run 'dash login' again", e.Op)
}

// NotLoggedInError indicates a remote operation was requested without a stored session.
type NotLoggedInError struct{}

func (e NotLoggedInError) Error() string {
	return "not logged in: run 'dash login' first"
}

// InvalidFilterError indicates an unknown status or priority filter value.
type InvalidFilterError struct {
	Kind  string
	Value string
}

func (e InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s filter: %s", e.Kind, e.Value)
}
