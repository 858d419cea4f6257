// Package changes records pending local edits to field mappings before they
// are applied. Entries are keyed by the mapping's stable id, so reordering
// or partially refreshing the rendered list never invalidates a recorded
// edit.
package changes

import (
	"reflect"
	"sort"
	"sync"

	"github.com/cohortkit/go-cohortgen/pkg/mapping"
)

// Proposed is the operator/value pair a widget currently shows for a
// mapping.
type Proposed struct {
	Operator string
	Value    any
}

type baseline struct {
	Operator string
	Value    any
}

// Tracker diffs widget state against the last loaded mapping set. A key is
// present exactly when the proposed pair differs from the original; the
// pending set is empty if and only if every rendered mapping still shows
// its original value.
type Tracker struct {
	mu        sync.RWMutex
	originals map[string]baseline
	pending   map[string]Proposed
}

// NewTracker returns a tracker with no baseline; Reset must be called with
// the current mapping set before edits are recorded.
func NewTracker() *Tracker {
	return &Tracker{
		originals: make(map[string]baseline),
		pending:   make(map[string]Proposed),
	}
}

// Reset replaces the baseline with the given mappings and drops every
// pending edit. Call it whenever the registry reloads.
func (t *Tracker) Reset(mappings []mapping.FieldMapping) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.originals = make(map[string]baseline, len(mappings))
	t.pending = make(map[string]Proposed)
	for _, m := range mappings {
		if m.ID == "" {
			continue
		}
		t.originals[m.ID] = baseline{Operator: m.Operator, Value: m.Value}
	}
}

// Propose records an edit for a mapping id. Proposing the original pair
// again removes the entry, so reverting an edit leaves no residue. Ids
// outside the baseline are ignored.
func (t *Tracker) Propose(id string, p Proposed) {
	t.mu.Lock()
	defer t.mu.Unlock()

	orig, ok := t.originals[id]
	if !ok {
		return
	}
	if p.Operator == orig.Operator && reflect.DeepEqual(p.Value, orig.Value) {
		delete(t.pending, id)
		return
	}
	t.pending[id] = p
}

// HasPending reports whether any mapping differs from its baseline.
func (t *Tracker) HasPending() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pending) > 0
}

// PendingIDs returns the ids with recorded edits, sorted for stable output.
func (t *Tracker) PendingIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProposedFor returns the recorded edit for a mapping id, if any.
func (t *Tracker) ProposedFor(id string) (Proposed, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.pending[id]
	return p, ok
}

// Clear drops all pending edits but keeps the baseline. Called after a
// successful apply round trip, never before.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(map[string]Proposed)
}

// BuildProposal returns a copy of the mapping list with pending edits
// substituted in place. Unedited entries pass through untouched; the input
// slice is never modified.
func (t *Tracker) BuildProposal(mappings []mapping.FieldMapping) []mapping.FieldMapping {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]mapping.FieldMapping, len(mappings))
	for i, m := range mappings {
		if p, ok := t.pending[m.ID]; ok {
			m.Operator = p.Operator
			m.Value = p.Value
		}
		out[i] = m
	}
	return out
}
