// Package criteria holds the working set of patient-selection criteria the
// conversational backend extracts from natural-language input, and derives
// fallback field mappings when the backend supplies none.
package criteria

import (
	"sort"

	"github.com/cohortkit/go-cohortgen/pkg/components"
)

// Polarity says whether a criterion includes or excludes matching patients.
type Polarity string

const (
	PolarityInclude Polarity = "include"
	PolarityExclude Polarity = "exclude"
)

// DbMapping resolves one entity of a criterion to a database field. Field
// names follow the backend payload, including the literal "table.field" key.
type DbMapping struct {
	EntityClass      string           `json:"entity_class,omitempty"`
	TableField       string           `json:"table.field"`
	RankedCandidates []string         `json:"ranked_matches,omitempty"`
	MappedConcept    string           `json:"mapped_concept,omitempty"`
	MappingMethod    string           `json:"mapping_method,omitempty"`
	ConfidenceReason string           `json:"reason,omitempty"`
	TopCandidates    []string         `json:"top_candidates,omitempty"`
	Component        *components.Spec `json:"ui_component,omitempty"`
}

// Criterion is one inclusion/exclusion condition, possibly referencing
// several entities, each resolved (or resolvable) to a database field.
type Criterion struct {
	ID             string               `json:"id,omitempty"`
	Polarity       Polarity             `json:"type,omitempty"`
	Text           string               `json:"text"`
	Entities       []string             `json:"entities,omitempty"`
	EntityMappings map[string]DbMapping `json:"db_mappings,omitempty"`
	SQLCriterion   string               `json:"revised_criterion,omitempty"`
	Source         string               `json:"source,omitempty"`
	Status         string               `json:"status,omitempty"`
}

// EntityOrder returns the criterion's entities in a stable order: the
// declared entity list first (restricted to entities that actually carry a
// mapping), then any remaining mapping keys sorted. Map iteration order never
// leaks into rendering.
func (c Criterion) EntityOrder() []string {
	if len(c.EntityMappings) == 0 {
		return append([]string(nil), c.Entities...)
	}
	seen := make(map[string]bool, len(c.EntityMappings))
	var out []string
	for _, entity := range c.Entities {
		if _, ok := c.EntityMappings[entity]; ok && !seen[entity] {
			seen[entity] = true
			out = append(out, entity)
		}
	}
	var rest []string
	for entity := range c.EntityMappings {
		if !seen[entity] {
			rest = append(rest, entity)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// FirstMapping returns the first entity's mapping in EntityOrder.
func (c Criterion) FirstMapping() (string, DbMapping, bool) {
	for _, entity := range c.EntityOrder() {
		if m, ok := c.EntityMappings[entity]; ok {
			return entity, m, true
		}
	}
	return "", DbMapping{}, false
}
