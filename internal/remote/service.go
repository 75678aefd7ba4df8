package remote

import (
	"context"
	"net/http"

	"github.com/abatilo/dash/internal/stats"
)

// ChatReply is the assistant's answer to a query.
type ChatReply struct {
	Response    string `json:"response"`
	ContextUsed bool   `json:"context_used"`
}

// Health is the API's liveness report.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Analytics fetches the server-side productivity figures.
func (c *Client) Analytics(ctx context.Context) (stats.Analytics, error) {
	var a stats.Analytics
	if err := c.Do(ctx, "analytics", http.MethodGet, "/analytics", nil, &a); err != nil {
		return stats.Analytics{}, err
	}
	return a, nil
}

// Chat asks the assistant a question. extra is optional context text.
func (c *Client) Chat(ctx context.Context, query, extra string) (ChatReply, error) {
	req := struct {
		Query   string  `json:"query"`
		Context *string `json:"context,omitempty"`
	}{Query: query}
	if extra != "" {
		req.Context = &extra
	}

	var reply ChatReply
	if err := c.Do(ctx, "chat", http.MethodPost, "/ai/chat", req, &reply); err != nil {
		return ChatReply{}, err
	}
	return reply, nil
}

// Insights fetches the assistant's productivity suggestions.
func (c *Client) Insights(ctx context.Context) ([]string, error) {
	var resp struct {
		Insights []string `json:"insights"`
	}
	if err := c.Do(ctx, "insights", http.MethodGet, "/ai/insights", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Insights, nil
}

// Health reports whether the API is up. It needs no credential.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.Do(ctx, "health", http.MethodGet, "/health", nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}
