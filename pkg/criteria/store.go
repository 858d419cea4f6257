package criteria

import "fmt"

// FallbackMapping is a minimal field-mapping view derived from a criterion's
// own database mapping, used when no persisted FieldMapping references the
// criterion's entities. It keeps the field-mapping tier populated for every
// resolvable criterion.
type FallbackMapping struct {
	Entity   string
	Selected string
	Options  []string
}

// Store holds the ordered working set of criteria for the current session.
// It is transient per-session view state: every backend turn that carries
// criteria replaces the whole set.
type Store struct {
	criteria []Criterion
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Ingest replaces the working set. Entries without an id get a synthetic
// stable one derived from their position, so ingesting the same list twice
// produces identical state.
func (s *Store) Ingest(raw []Criterion) {
	next := make([]Criterion, len(raw))
	for i, c := range raw {
		if c.ID == "" {
			c.ID = fmt.Sprintf("criterion-%d", i)
		}
		if c.Polarity == "" {
			c.Polarity = PolarityInclude
		}
		next[i] = c
	}
	s.criteria = next
}

// Criteria returns a copy of the working set in order.
func (s *Store) Criteria() []Criterion {
	return append([]Criterion(nil), s.criteria...)
}

// Get returns the criterion with the given id.
func (s *Store) Get(id string) (Criterion, bool) {
	for _, c := range s.criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// Len returns the number of criteria in the working set.
func (s *Store) Len() int {
	return len(s.criteria)
}

// DeriveFallbackMapping builds a field-mapping view from the criterion's
// first entity mapping: the mapped field becomes the selection and the ranked
// candidates become the options. Returns false when the criterion carries no
// entity mappings at all.
func (s *Store) DeriveFallbackMapping(c Criterion) (FallbackMapping, bool) {
	entity, m, ok := c.FirstMapping()
	if !ok {
		return FallbackMapping{}, false
	}
	options := append([]string(nil), m.RankedCandidates...)
	if len(options) == 0 && m.TableField != "" {
		options = []string{m.TableField}
	}
	return FallbackMapping{
		Entity:   entity,
		Selected: m.TableField,
		Options:  options,
	}, true
}
