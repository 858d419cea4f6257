package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cohortkit/go-cohortgen/pkg/dataset"
	"github.com/cohortkit/go-cohortgen/pkg/mapping"
)

// WaitCacheReady warms the backend schema cache and polls until it reports
// ready. Polling runs on a fixed interval with a hard timeout; both timers
// are released on every return path. On timeout the caller gets
// ErrCacheTimeout and may simply call WaitCacheReady again.
func (e *Engine) WaitCacheReady(ctx context.Context) error {
	if err := e.backend.WarmCache(ctx); err != nil {
		// warming is advisory; the status poll decides readiness
		e.logger.Printf("engine: cache warm request failed: %v", err)
	}

	ready, err := e.cacheReady(ctx)
	if err != nil {
		return err
	}
	if ready {
		return nil
	}

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(e.pollTimeout)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrCacheTimeout
		case <-ticker.C:
			ready, err := e.cacheReady(ctx)
			if err != nil {
				return err
			}
			if ready {
				return nil
			}
		}
	}
}

func (e *Engine) cacheReady(ctx context.Context) (bool, error) {
	status, err := e.backend.CacheStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("engine: cache status: %w", err)
	}
	return status.IsReady, nil
}

// Tables lists the browsable dataset tables.
func (e *Engine) Tables(ctx context.Context) ([]dataset.Table, error) {
	return e.browser.Tables(ctx)
}

// TableFields lists a table's filterable fields, tracking the table-level
// loading key while the request is in flight.
func (e *Engine) TableFields(ctx context.Context, table string) ([]dataset.Field, error) {
	e.setLoading(table, true)
	defer e.setLoading(table, false)
	return e.browser.TableFields(ctx, table)
}

// FieldValues samples distinct values for a field, tracking the
// "table.field" loading key.
func (e *Engine) FieldValues(ctx context.Context, table, field string, limit int) ([]string, error) {
	key := table + "." + field
	e.setLoading(key, true)
	defer e.setLoading(key, false)
	return e.browser.FieldValues(ctx, table, field, limit)
}

// LoadMappings refreshes the field-mapping cache from the backend and
// rebaselines the change tracker. Called on project open.
func (e *Engine) LoadMappings(ctx context.Context) error {
	if err := e.registry.Load(ctx, mapping.Filter{}); err != nil {
		return err
	}
	e.tracker.Reset(e.registry.Mappings())
	return nil
}
