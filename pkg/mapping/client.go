package mapping

import "context"

// Filter narrows a list call; zero value lists everything for the project.
type Filter struct {
	Status Status
	Source Source
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Operator     *string `json:"operator,omitempty"`
	Value        any     `json:"value,omitempty"`
	Status       *Status `json:"status,omitempty"`
	Concept      *string `json:"concept,omitempty"`
	SQLCriterion *string `json:"sql_criterion,omitempty"`
	DisplayText  *string `json:"display_text,omitempty"`
}

// Client is the persistence surface the registry mutates through. Delete is
// idempotent: deleting an unknown id returns nil, not an error.
type Client interface {
	ListFieldMappings(ctx context.Context, filter Filter) ([]FieldMapping, error)
	CreateFieldMapping(ctx context.Context, m FieldMapping) (FieldMapping, error)
	UpdateFieldMapping(ctx context.Context, id string, patch Patch) (FieldMapping, error)
	DeleteFieldMapping(ctx context.Context, id string) error
}
