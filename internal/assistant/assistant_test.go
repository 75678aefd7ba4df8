package assistant_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/dash/internal/assistant"
	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/memory"
	"github.com/abatilo/dash/internal/remote"
	"github.com/abatilo/dash/internal/store"
	"github.com/abatilo/dash/internal/task"
)

func TestLocalAskMentionsWorkload(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.NewWithSeed(memory.DemoTasks()))
	a := assistant.NewLocal(s)

	reply, err := a.Ask(ctx, "What should I prioritize today?", "")
	require.NoError(t, err)
	assert.True(t, reply.ContextUsed)
	assert.Contains(t, reply.Response, `"What should I prioritize today?"`)
	assert.Contains(t, reply.Response, "pending")
}

func TestLocalAskWithoutTasks(t *testing.T) {
	a := assistant.NewLocal(store.New(memory.New()))

	reply, err := a.Ask(context.Background(), "hello", "")
	require.NoError(t, err)
	assert.False(t, reply.ContextUsed)
}

func TestAskRejectsEmptyQuery(t *testing.T) {
	a := assistant.NewLocal(store.New(memory.New()))

	_, err := a.Ask(context.Background(), "   ", "")
	var verr dasherrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "query", verr.Field)
}

func TestLocalInsightsLeadWithOverdue(t *testing.T) {
	ctx := context.Background()
	s := store.New(memory.New())
	past := time.Now().AddDate(0, 0, -3)
	_, err := s.Create(ctx, task.Draft{Title: "late", Priority: task.PriorityHigh, DueDate: &past})
	require.NoError(t, err)

	insights, err := assistant.NewLocal(s).Insights(ctx)
	require.NoError(t, err)
	require.Len(t, insights, 6)
	assert.Contains(t, insights[0], "1 overdue")
	assert.Contains(t, insights[1], "high-priority")
}

func TestRemoteAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "echo: " + body["query"] + "/" + body["context"], "context_used": false})
	}))
	t.Cleanup(srv.Close)

	a := assistant.NewRemote(remote.NewClient(srv.URL, remote.Credentials{AccessToken: "t"}))
	reply, err := a.Ask(context.Background(), "plan my day", "meetings at 10")
	require.NoError(t, err)
	assert.Equal(t, "echo: plan my day/meetings at 10", reply.Response)
}
