// Package mapping caches persisted field mappings for a project and owns
// every mutation path against the backend. All reads see the last
// read-after-write snapshot; the registry never merges optimistically.
package mapping

import (
	"fmt"
	"strings"
	"time"

	"github.com/cohortkit/go-cohortgen/pkg/criteria"
	"github.com/google/uuid"
)

// Source identifies who produced a field mapping.
type Source string

const (
	SourceUser     Source = "user"
	SourceAgent    Source = "agent"
	SourceImported Source = "imported"
)

// Status tracks a mapping through its lifecycle. The client trusts the
// backend's value and renders accordingly; it never validates transitions.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusPendingAgent   Status = "pending_agent"
	StatusAgentConfirmed Status = "agent_confirmed"
	StatusApplied        Status = "applied"
)

// FieldMapping is a persisted binding of a criterion entity to a concrete
// table/field, operator, and value. JSON names match the backend records.
type FieldMapping struct {
	ID            string         `json:"id,omitempty"`
	TableName     string         `json:"table_name"`
	FieldName     string         `json:"field_name"`
	FieldType     string         `json:"field_type,omitempty"`
	Concept       string         `json:"concept,omitempty"`
	Operator      string         `json:"operator,omitempty"`
	Value         any            `json:"value,omitempty"`
	SQLCriterion  string         `json:"sql_criterion,omitempty"`
	DisplayText   string         `json:"display_text,omitempty"`
	Source        Source         `json:"source,omitempty"`
	Status        Status         `json:"status,omitempty"`
	FilterGroup   string         `json:"filter_group,omitempty"`
	AgentMetadata map[string]any `json:"agent_metadata,omitempty"`
	CreatedAt     *time.Time     `json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
}

// Key returns the "table.field" identity used to enforce the single active
// user mapping per field invariant.
func (m FieldMapping) Key() string {
	return m.TableName + "." + m.FieldName
}

// Confirmed reports whether the mapping belongs in the confirmed panel.
func (m FieldMapping) Confirmed() bool {
	return m.Status == StatusAgentConfirmed || m.Status == StatusApplied
}

// ToCriterion converts a persisted mapping into a synthetic criterion so
// panel-created filters and conversational criteria reconcile into one
// working set. The field name doubles as the entity; Key() becomes the bound
// table.field.
func (m FieldMapping) ToCriterion() criteria.Criterion {
	text := strings.TrimSpace(m.DisplayText)
	if text == "" {
		text = m.Key()
		if m.Operator != "" {
			text = fmt.Sprintf("%s %s %v", m.Key(), m.Operator, m.Value)
		}
	}
	return criteria.Criterion{
		ID:           m.ID,
		Polarity:     criteria.PolarityInclude,
		Text:         text,
		Entities:     []string{m.FieldName},
		SQLCriterion: m.SQLCriterion,
		Source:       string(m.Source),
		Status:       string(m.Status),
		EntityMappings: map[string]criteria.DbMapping{
			m.FieldName: {
				TableField:    m.Key(),
				MappedConcept: m.Concept,
			},
		},
	}
}

// NewDraft builds a user-sourced draft mapping for a field with a fresh
// client-assigned id. The backend replaces the id on create; the draft id
// keeps change tracking stable until then.
func NewDraft(tableName, fieldName string) FieldMapping {
	return FieldMapping{
		ID:        uuid.NewString(),
		TableName: strings.TrimSpace(tableName),
		FieldName: strings.TrimSpace(fieldName),
		Source:    SourceUser,
		Status:    StatusDraft,
	}
}
