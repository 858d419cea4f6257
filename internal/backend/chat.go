package backend

import (
	"context"
	"net/http"

	"github.com/cohortkit/go-cohortgen/pkg/agent"
	"github.com/cohortkit/go-cohortgen/pkg/dataset"
)

// SendTurn posts a conversational turn and returns the raw response body.
// Normalization of the envelope belongs to the agent package, not here.
func (c *Client) SendTurn(ctx context.Context, req agent.TurnRequest) ([]byte, error) {
	if req.ProjectID == "" {
		req.ProjectID = c.projectID
	}
	return c.doRaw(ctx, http.MethodPost, c.projectPath("chat"), nil, req)
}

// CacheStatus reports whether the backend's schema cache is ready.
func (c *Client) CacheStatus(ctx context.Context) (dataset.CacheStatus, error) {
	var status dataset.CacheStatus
	if err := c.do(ctx, http.MethodGet, c.projectPath("cache", "status"), nil, nil, &status); err != nil {
		return dataset.CacheStatus{}, err
	}
	return status, nil
}

// WarmCache asks the backend to start building its schema cache.
func (c *Client) WarmCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.projectPath("cache", "warm"), nil, nil, nil)
}
