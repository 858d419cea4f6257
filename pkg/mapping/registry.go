package mapping

import (
	"context"
	"fmt"
	"sync"
)

// Registry is the client-side cache of persisted field mappings. It is the
// single mutable shared state of the engine: every create/update/delete
// funnels through it, and after each mutation it re-fetches the full list
// from the backend rather than patching the cache in place.
type Registry struct {
	client Client

	mu       sync.RWMutex
	mappings []FieldMapping

	// fieldMu serializes the delete-then-create replace per field so rapid
	// repeated applies on the same field cannot interleave.
	fieldMu sync.Mutex
	fields  map[string]*sync.Mutex
}

// NewRegistry constructs an empty registry backed by the given client.
func NewRegistry(client Client) (*Registry, error) {
	if client == nil {
		return nil, fmt.Errorf("mapping: client is required")
	}
	return &Registry{
		client: client,
		fields: make(map[string]*sync.Mutex),
	}, nil
}

func (r *Registry) lockField(key string) func() {
	r.fieldMu.Lock()
	mu, ok := r.fields[key]
	if !ok {
		mu = &sync.Mutex{}
		r.fields[key] = mu
	}
	r.fieldMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Load replaces the cache with the backend's current list. Used on project
// open and on forced refresh.
func (r *Registry) Load(ctx context.Context, filter Filter) error {
	mappings, err := r.client.ListFieldMappings(ctx, filter)
	if err != nil {
		return fmt.Errorf("mapping: load: %w", err)
	}
	r.replace(mappings)
	return nil
}

// ReplaceAll swaps the cached list without touching the backend. Turn
// ingestion uses it when a backend response already carries the
// authoritative mapping set.
func (r *Registry) ReplaceAll(mappings []FieldMapping) {
	r.replace(append([]FieldMapping(nil), mappings...))
}

func (r *Registry) replace(mappings []FieldMapping) {
	r.mu.Lock()
	r.mappings = mappings
	r.mu.Unlock()
}

func (r *Registry) reload(ctx context.Context) error {
	mappings, err := r.client.ListFieldMappings(ctx, Filter{})
	if err != nil {
		return fmt.Errorf("mapping: reload after write: %w", err)
	}
	r.replace(mappings)
	return nil
}

// Create persists a mapping. Any existing user-sourced mapping for the same
// (table, field) is deleted first: applying a new value replaces the old
// record instead of appending a duplicate. The delete and create are held
// under a per-field lock.
func (r *Registry) Create(ctx context.Context, m FieldMapping) (FieldMapping, error) {
	if m.TableName == "" || m.FieldName == "" {
		return FieldMapping{}, fmt.Errorf("mapping: create: table and field names are required")
	}

	unlock := r.lockField(m.Key())
	defer unlock()

	if existing, ok := r.FindUser(m.Key()); ok {
		if err := r.client.DeleteFieldMapping(ctx, existing.ID); err != nil {
			return FieldMapping{}, fmt.Errorf("mapping: replace %s: %w", m.Key(), err)
		}
	}

	created, err := r.client.CreateFieldMapping(ctx, m)
	if err != nil {
		return FieldMapping{}, fmt.Errorf("mapping: create %s: %w", m.Key(), err)
	}
	if err := r.reload(ctx); err != nil {
		return FieldMapping{}, err
	}
	return created, nil
}

// RemoveUser deletes the active user-sourced mapping for a "table.field"
// key, if one exists. It holds the same per-field lock as Create, so a
// removal cannot interleave with a replace on the same field. The returned
// bool reports whether a mapping was found and removed.
func (r *Registry) RemoveUser(ctx context.Context, key string) (bool, error) {
	unlock := r.lockField(key)
	defer unlock()

	existing, ok := r.FindUser(key)
	if !ok {
		return false, nil
	}
	if err := r.client.DeleteFieldMapping(ctx, existing.ID); err != nil {
		return false, fmt.Errorf("mapping: remove %s: %w", key, err)
	}
	return true, r.reload(ctx)
}

// Update applies a partial update to a record, typically to move it to
// agent_confirmed/applied or amend derived text.
func (r *Registry) Update(ctx context.Context, id string, patch Patch) (FieldMapping, error) {
	updated, err := r.client.UpdateFieldMapping(ctx, id, patch)
	if err != nil {
		return FieldMapping{}, fmt.Errorf("mapping: update %s: %w", id, err)
	}
	if err := r.reload(ctx); err != nil {
		return FieldMapping{}, err
	}
	return updated, nil
}

// Delete removes a record from the backend and cache. Deleting an id the
// backend no longer knows is a no-op.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.client.DeleteFieldMapping(ctx, id); err != nil {
		return fmt.Errorf("mapping: delete %s: %w", id, err)
	}
	return r.reload(ctx)
}

// Mappings returns a copy of the cached list in backend order.
func (r *Registry) Mappings() []FieldMapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]FieldMapping(nil), r.mappings...)
}

// Get looks up a cached mapping by id.
func (r *Registry) Get(id string) (FieldMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.mappings {
		if m.ID == id {
			return m, true
		}
	}
	return FieldMapping{}, false
}

// FindUser returns the active user-sourced mapping for a "table.field" key.
func (r *Registry) FindUser(key string) (FieldMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findUser(key)
}

func (r *Registry) findUser(key string) (FieldMapping, bool) {
	for _, m := range r.mappings {
		if m.Source == SourceUser && m.Key() == key {
			return m, true
		}
	}
	return FieldMapping{}, false
}

// UserMappings returns cached mappings created by the user.
func (r *Registry) UserMappings() []FieldMapping {
	return r.filter(func(m FieldMapping) bool { return m.Source == SourceUser })
}

// AgentMappings returns cached mappings produced by the agent.
func (r *Registry) AgentMappings() []FieldMapping {
	return r.filter(func(m FieldMapping) bool { return m.Source == SourceAgent })
}

// ConfirmedMappings returns mappings that belong in the confirmed panel.
func (r *Registry) ConfirmedMappings() []FieldMapping {
	return r.filter(FieldMapping.Confirmed)
}

// DraftMappings returns mappings still in draft.
func (r *Registry) DraftMappings() []FieldMapping {
	return r.filter(func(m FieldMapping) bool { return m.Status == StatusDraft })
}

func (r *Registry) filter(keep func(FieldMapping) bool) []FieldMapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []FieldMapping
	for _, m := range r.mappings {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
