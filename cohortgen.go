// Package cohortgen exposes the criteria / field-mapping reconciliation
// engine for clinical-cohort dashboards: backend turns are normalized and
// folded into session state, widgets are resolved from a closed component
// set, and local edits are reconciled against agent-confirmed mappings.
package cohortgen

import (
	"context"

	"github.com/cohortkit/go-cohortgen/internal/backend"
	"github.com/cohortkit/go-cohortgen/pkg/engine"
)

// Engine is the session-scoped reconciliation engine.
type Engine = engine.Engine

// TurnView is the render state produced after a backend turn.
type TurnView = engine.TurnView

// Backend is the service surface an Engine talks to.
type Backend = engine.Backend

// Option configures an Engine.
type Option = engine.Option

// WithBackend injects a custom service client.
var WithBackend = engine.WithBackend

// WithLogger injects a logger for best-effort failures.
var WithLogger = engine.WithLogger

// NewEngine constructs an engine for a project with an explicit backend.
func NewEngine(projectID string, options ...Option) (*Engine, error) {
	return engine.New(projectID, options...)
}

// Connect is the simplest entry point: it builds the REST client for the
// given base URL, constructs the engine, waits for the backend cache, and
// loads the project's field mappings.
func Connect(ctx context.Context, baseURL, projectID string, options ...Option) (*Engine, error) {
	client, err := backend.New(baseURL, projectID)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(projectID, append([]Option{engine.WithBackend(client)}, options...)...)
	if err != nil {
		return nil, err
	}
	if err := eng.WaitCacheReady(ctx); err != nil {
		return nil, err
	}
	if err := eng.LoadMappings(ctx); err != nil {
		return nil, err
	}
	return eng, nil
}
