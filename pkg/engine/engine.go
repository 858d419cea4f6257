// Package engine wires the criteria store, field-mapping registry, stage
// controller, and change tracker into one session-scoped instance. A single
// Engine is constructed per open project and passed by reference to every
// consumer; there is no ambient global state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cohortkit/go-cohortgen/pkg/agent"
	"github.com/cohortkit/go-cohortgen/pkg/changes"
	"github.com/cohortkit/go-cohortgen/pkg/criteria"
	"github.com/cohortkit/go-cohortgen/pkg/dataset"
	"github.com/cohortkit/go-cohortgen/pkg/mapping"
	"github.com/cohortkit/go-cohortgen/pkg/stage"
)

// ErrCacheTimeout reports that the backend cache did not become ready
// within the configured window. Callers surface a retry affordance.
var ErrCacheTimeout = errors.New("engine: cache readiness timed out")

// Logger is the minimal logging surface the engine writes to.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Backend is everything the engine needs from the cohort service.
type Backend interface {
	agent.Gateway
	mapping.Client
	dataset.Client

	CacheStatus(ctx context.Context) (dataset.CacheStatus, error)
	WarmCache(ctx context.Context) error
}

// Option mutates engine construction.
type Option func(*Engine)

// WithBackend injects the service client. Required.
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithLogger injects a logger for swallowed best-effort failures.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPollInterval overrides the cache-readiness poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithPollTimeout overrides the cache-readiness hard timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollTimeout = d
		}
	}
}

// Engine holds the reconciliation state for one project session.
type Engine struct {
	projectID string
	backend   Backend
	logger    Logger

	pollInterval time.Duration
	pollTimeout  time.Duration

	store    *criteria.Store
	registry *mapping.Registry
	stage    *stage.Controller
	tracker  *changes.Tracker
	browser  *dataset.Browser

	mu           sync.RWMutex
	lastResponse string
	lastPrompt   string
	loading      map[string]bool
}

// New constructs an engine for a project. A backend is required; everything
// else has defaults.
func New(projectID string, opts ...Option) (*Engine, error) {
	e := &Engine{
		projectID:    projectID,
		logger:       nopLogger{},
		pollInterval: 5 * time.Second,
		pollTimeout:  120 * time.Second,
		store:        criteria.NewStore(),
		stage:        stage.NewController(),
		tracker:      changes.NewTracker(),
		loading:      make(map[string]bool),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if e.backend == nil {
		return nil, errors.New("engine: backend is required")
	}

	registry, err := mapping.NewRegistry(e.backend)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.registry = registry

	browser, err := dataset.NewBrowser(e.backend)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	e.browser = browser
	return e, nil
}

// Registry exposes the field-mapping cache for read access.
func (e *Engine) Registry() *mapping.Registry { return e.registry }

// Criteria exposes the criterion store for read access.
func (e *Engine) Criteria() *criteria.Store { return e.store }

// Stage returns the effective disclosure stage.
func (e *Engine) Stage() int { return e.stage.Current() }

// HasPendingChanges reports whether any widget differs from its baseline.
func (e *Engine) HasPendingChanges() bool { return e.tracker.HasPending() }

// Reset drops the session view state: stage, criteria, and pending edits.
// Persisted mappings are untouched.
func (e *Engine) Reset() {
	e.stage.Reset()
	e.store.Ingest(nil)
	e.tracker.Reset(nil)
	e.mu.Lock()
	e.lastResponse = ""
	e.lastPrompt = ""
	e.mu.Unlock()
}

func (e *Engine) setLoading(key string, on bool) {
	e.mu.Lock()
	if on {
		e.loading[key] = true
	} else {
		delete(e.loading, key)
	}
	e.mu.Unlock()
}

// Loading reports whether a schema key ("table" or "table.field") has an
// in-flight request. Purely advisory; there is no cancellation behind it.
func (e *Engine) Loading(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading[key]
}
