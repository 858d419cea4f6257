package engine

import (
	"context"
	"fmt"

	"github.com/cohortkit/go-cohortgen/pkg/agent"
	"github.com/cohortkit/go-cohortgen/pkg/changes"
	"github.com/cohortkit/go-cohortgen/pkg/components"
	"github.com/cohortkit/go-cohortgen/pkg/criteria"
	"github.com/cohortkit/go-cohortgen/pkg/mapping"
)

// FieldMappingView is the tier-1 rendering of one criterion entity: the
// selected "table.field" plus the ranked alternatives.
type FieldMappingView struct {
	Entity   string
	Selected string
	Options  []string
	// Mapping is the persisted record backing the selection, when one
	// exists; derived fallbacks leave it nil.
	Mapping *mapping.FieldMapping
}

// CriterionView is one criterion with as much of its resolution as the
// current stage discloses.
type CriterionView struct {
	Criterion     criteria.Criterion
	FieldMappings []FieldMappingView
	Widgets       []*components.Widget
}

// TurnView is the full render state after a backend turn.
type TurnView struct {
	ResponseText       string
	NextPrompt         string
	Stage              int
	ShowFieldMapping   bool
	ShowConceptMapping bool
	Criteria           []CriterionView
	Confirmed          []mapping.FieldMapping
	HasPendingChanges  bool
}

// ApplyTurn folds a raw backend turn into the session state and returns the
// resulting view. Empty sections of the turn leave the corresponding state
// untouched, so a partial response never wipes criteria or mappings.
func (e *Engine) ApplyTurn(raw []byte) (TurnView, error) {
	turn, err := agent.NormalizeTurn(raw)
	if err != nil {
		return TurnView{}, fmt.Errorf("engine: apply turn: %w", err)
	}

	if len(turn.Criteria) > 0 {
		e.store.Ingest(turn.Criteria)
	}
	if len(turn.FieldMappings) > 0 {
		e.registry.ReplaceAll(turn.FieldMappings)
		e.tracker.Reset(turn.FieldMappings)
	}
	e.stage.Observe(turn.Stage)

	e.mu.Lock()
	if turn.ResponseText != "" {
		e.lastResponse = turn.ResponseText
	}
	if turn.NextPrompt != "" {
		e.lastPrompt = turn.NextPrompt
	}
	e.mu.Unlock()

	return e.View(), nil
}

// Send posts a user message as a conversational turn and applies the
// response.
func (e *Engine) Send(ctx context.Context, message string) (TurnView, error) {
	raw, err := e.backend.SendTurn(ctx, agent.TurnRequest{
		ProjectID: e.projectID,
		Message:   message,
	})
	if err != nil {
		return TurnView{}, fmt.Errorf("engine: send turn: %w", err)
	}
	return e.ApplyTurn(raw)
}

// View assembles the current render state from the stores.
func (e *Engine) View() TurnView {
	e.mu.RLock()
	response, prompt := e.lastResponse, e.lastPrompt
	e.mu.RUnlock()

	view := TurnView{
		ResponseText:       response,
		NextPrompt:         prompt,
		Stage:              e.stage.Current(),
		ShowFieldMapping:   e.stage.ShowFieldMapping(),
		ShowConceptMapping: e.stage.ShowConceptMapping(),
		Confirmed:          e.registry.ConfirmedMappings(),
		HasPendingChanges:  e.tracker.HasPending(),
	}

	covered := make(map[string]bool)
	for _, criterion := range e.store.Criteria() {
		for _, dm := range criterion.EntityMappings {
			covered[dm.TableField] = true
		}
		cv := CriterionView{Criterion: criterion}
		if view.ShowFieldMapping {
			cv.FieldMappings = e.fieldMappingViews(criterion)
		}
		if view.ShowConceptMapping {
			cv.Widgets = e.conceptWidgets(criterion)
		}
		view.Criteria = append(view.Criteria, cv)
	}

	// Panel-created filters live only in the registry until the agent echoes
	// them back. Surface them as synthetic criteria so the working set stays
	// whole.
	for _, m := range e.registry.UserMappings() {
		if covered[m.Key()] {
			continue
		}
		criterion := m.ToCriterion()
		cv := CriterionView{Criterion: criterion}
		if view.ShowFieldMapping {
			persisted := m
			cv.FieldMappings = []FieldMappingView{{
				Entity:   m.FieldName,
				Selected: m.Key(),
				Options:  []string{m.Key()},
				Mapping:  &persisted,
			}}
		}
		view.Criteria = append(view.Criteria, cv)
	}
	return view
}

// fieldMappingViews builds the tier-1 rows for a criterion. Entities backed
// by a persisted mapping use it; the rest fall back to the criterion's own
// db_mappings so the tier is never empty for a resolvable criterion.
func (e *Engine) fieldMappingViews(criterion criteria.Criterion) []FieldMappingView {
	var out []FieldMappingView
	for _, entity := range criterion.EntityOrder() {
		dm, ok := criterion.EntityMappings[entity]
		if !ok || dm.TableField == "" {
			continue
		}
		row := FieldMappingView{
			Entity:   entity,
			Selected: dm.TableField,
			Options:  dm.RankedCandidates,
		}
		if len(row.Options) == 0 {
			row.Options = []string{dm.TableField}
		}
		if persisted, found := e.registry.FindUser(dm.TableField); found {
			row.Mapping = &persisted
			row.Selected = persisted.Key()
		}
		out = append(out, row)
	}
	if len(out) > 0 {
		return out
	}
	if fb, ok := e.store.DeriveFallbackMapping(criterion); ok {
		out = append(out, FieldMappingView{
			Entity:   fb.Entity,
			Selected: fb.Selected,
			Options:  fb.Options,
		})
	}
	return out
}

// conceptWidgets resolves the tier-2 value widgets, one per entity that
// carries a component spec. Widget edits flow through the change tracker
// keyed by the persisted mapping's id; widgets without a persisted mapping
// are rendered but their edits go nowhere until the field is applied.
func (e *Engine) conceptWidgets(criterion criteria.Criterion) []*components.Widget {
	var out []*components.Widget
	for _, entity := range criterion.EntityOrder() {
		dm, ok := criterion.EntityMappings[entity]
		if !ok {
			continue
		}
		widget := components.Resolve(criterion.ID, entity, dm.Component, e.onWidgetChange)
		out = append(out, widget)
	}
	return out
}

// onWidgetChange is the single write boundary from widgets into the change
// tracker. It maps (criterion, entity) back to the persisted mapping id.
func (e *Engine) onWidgetChange(criterionID, entity, operator string, value any) {
	criterion, ok := e.store.Get(criterionID)
	if !ok {
		return
	}
	dm, ok := criterion.EntityMappings[entity]
	if !ok || dm.TableField == "" {
		return
	}
	persisted, found := e.findByKey(dm.TableField)
	if !found {
		e.logger.Printf("engine: change on unmapped field %s ignored until applied", dm.TableField)
		return
	}
	e.tracker.Propose(persisted.ID, changes.Proposed{Operator: operator, Value: value})
}

func (e *Engine) findByKey(key string) (mapping.FieldMapping, bool) {
	if m, ok := e.registry.FindUser(key); ok {
		return m, true
	}
	for _, m := range e.registry.Mappings() {
		if m.Key() == key {
			return m, true
		}
	}
	return mapping.FieldMapping{}, false
}
