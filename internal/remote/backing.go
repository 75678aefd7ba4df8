package remote

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/task"
)

// Backing stores tasks through the /tasks endpoints. It satisfies store.Backing.
type Backing struct {
	client *Client
}

// NewBacking creates a Backing over c.
func NewBacking(c *Client) *Backing {
	return &Backing{client: c}
}

// List returns the caller's tasks in the order the API sends them.
func (b *Backing) List(ctx context.Context) ([]task.Task, error) {
	var resp struct {
		Tasks []wireTask `json:"tasks"`
	}
	if err := b.client.Do(ctx, "list", http.MethodGet, "/tasks", nil, &resp); err != nil {
		return nil, err
	}

	tasks := make([]task.Task, 0, len(resp.Tasks))
	for _, w := range resp.Tasks {
		t, err := w.toTask()
		if err != nil {
			return nil, dasherrors.RemoteError{
				Op:      "list",
				Message: "decode task " + strconv.FormatInt(w.ID, 10),
				Err:     err,
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Create posts a new task and returns the id the API assigned. The API always
// creates tasks as pending with no hours logged, so any other initial status
// or actual hours are applied with a follow-up update. If that update fails the
// id is still returned, with a PartialCreateError.
func (b *Backing) Create(ctx context.Context, d task.Draft) (int64, error) {
	var resp createResponse
	if err := b.client.Do(ctx, "create", http.MethodPost, "/tasks", newCreateRequest(d), &resp); err != nil {
		return 0, err
	}

	var p task.Patch
	if d.Status != "" && d.Status != task.StatusPending {
		p.Status = &d.Status
	}
	if d.ActualHours > 0 {
		p.ActualHours = &d.ActualHours
	}
	if !p.Empty() {
		if err := b.Update(ctx, resp.TaskID, p); err != nil {
			return resp.TaskID, dasherrors.PartialCreateError{ID: resp.TaskID, Err: err}
		}
	}
	return resp.TaskID, nil
}

// Update sends the supplied fields of p.
func (b *Backing) Update(ctx context.Context, id int64, p task.Patch) error {
	err := b.client.Do(ctx, "update", http.MethodPut, taskPath(id), newUpdateRequest(p), nil)
	return notFound(err, id)
}

// Delete removes a task.
func (b *Backing) Delete(ctx context.Context, id int64) error {
	err := b.client.Do(ctx, "delete", http.MethodDelete, taskPath(id), nil, nil)
	return notFound(err, id)
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// notFound turns a 404 for a task path into TaskNotFoundError.
func notFound(err error, id int64) error {
	var re dasherrors.RemoteError
	if errors.As(err, &re) && re.StatusCode == http.StatusNotFound {
		return dasherrors.TaskNotFoundError{ID: id}
	}
	return err
}
