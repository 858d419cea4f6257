package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cohortkit/go-cohortgen/pkg/agent"
	"github.com/cohortkit/go-cohortgen/pkg/mapping"
)

// ApplyChanges sends the full mapping list, with pending edits substituted,
// as the new authoritative proposal. The local diff is cleared only after
// the round trip succeeds; a failed apply keeps every pending edit.
func (e *Engine) ApplyChanges(ctx context.Context) (TurnView, error) {
	if !e.tracker.HasPending() {
		return e.View(), nil
	}

	proposal := e.tracker.BuildProposal(e.registry.Mappings())
	raw, err := e.backend.SendTurn(ctx, agent.TurnRequest{
		ProjectID:     e.projectID,
		Message:       agent.ApplyFieldMappingsMessage,
		FieldMappings: proposal,
	})
	if err != nil {
		return TurnView{}, fmt.Errorf("engine: apply changes: %w", err)
	}

	e.tracker.Clear()
	if err := e.registry.Load(ctx, mapping.Filter{}); err != nil {
		return TurnView{}, fmt.Errorf("engine: apply changes: %w", err)
	}
	e.tracker.Reset(e.registry.Mappings())

	return e.ApplyTurn(raw)
}

// ApplyFieldFilter persists a direct filter on a table field, as created
// from the schema browser. An empty value deletes the field's existing user
// mapping instead of creating an empty filter. After the mapping is durably
// saved the agent is notified best-effort: a notification failure is logged
// and swallowed, never rolled back.
func (e *Engine) ApplyFieldFilter(ctx context.Context, table, field, operator string, value any) error {
	key := table + "." + field
	e.setLoading(key, true)
	defer e.setLoading(key, false)

	if emptyValue(value) {
		removed, err := e.registry.RemoveUser(ctx, key)
		if err != nil {
			return fmt.Errorf("engine: remove filter %s: %w", key, err)
		}
		if !removed {
			return nil
		}
		e.tracker.Reset(e.registry.Mappings())
		e.notifyFilterChange(ctx, fmt.Sprintf("removed filter on %s", key))
		return nil
	}

	draft := mapping.NewDraft(table, field)
	draft.Operator = operator
	draft.Value = value
	draft.DisplayText = fmt.Sprintf("%s %s %v", key, operator, value)

	if _, err := e.registry.Create(ctx, draft); err != nil {
		return fmt.Errorf("engine: apply filter %s: %w", key, err)
	}
	e.tracker.Reset(e.registry.Mappings())
	e.notifyFilterChange(ctx, fmt.Sprintf("applied filter on %s", key))
	return nil
}

// notifyFilterChange tells the agent about a manual filter edit. The filter
// itself is already saved, so failures here must not surface.
func (e *Engine) notifyFilterChange(ctx context.Context, message string) {
	_, err := e.backend.SendTurn(ctx, agent.TurnRequest{
		ProjectID:     e.projectID,
		Message:       message,
		FieldMappings: e.registry.UserMappings(),
	})
	if err != nil {
		e.logger.Printf("engine: filter notification failed: %v", err)
	}
}

func emptyValue(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len() == 0
	}
	return false
}
