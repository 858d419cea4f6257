// Package agent models the conversational request/response channel. Inbound
// turns arrive with criteria, field mappings, and stage at varying nesting
// depths; NormalizeTurn flattens them into a single canonical Turn.
package agent

import (
	"context"
	"encoding/json"

	"github.com/cohortkit/go-cohortgen/pkg/criteria"
	"github.com/cohortkit/go-cohortgen/pkg/mapping"
)

// ApplyFieldMappingsMessage is the sentinel message that marks an outbound
// turn as an authoritative field-mapping proposal rather than user text.
const ApplyFieldMappingsMessage = "apply field mappings"

// TurnRequest is the outbound shape of a conversational turn.
type TurnRequest struct {
	ProjectID     string                 `json:"project_id"`
	Message       string                 `json:"message"`
	Stage         *int                   `json:"stage,omitempty"`
	FieldMappings []mapping.FieldMapping `json:"field_mappings,omitempty"`
}

// TurnResponse is the raw inbound envelope. Metadata is kept opaque here;
// NormalizeTurn digs through it.
type TurnResponse struct {
	ResponseText       string          `json:"response_text"`
	UIComponents       []string        `json:"ui_components,omitempty"`
	Metadata           json.RawMessage `json:"metadata,omitempty"`
	NextPrompt         string          `json:"next_prompt,omitempty"`
	AssistantMessageID string          `json:"assistant_message_id,omitempty"`
	Timestamp          string          `json:"timestamp,omitempty"`

	Criteria      []criteria.Criterion   `json:"criteria,omitempty"`
	FieldMappings []mapping.FieldMapping `json:"field_mappings,omitempty"`
	Stage         *int                   `json:"stage,omitempty"`
}

// Turn is the canonical, fully unwrapped form of a backend turn.
type Turn struct {
	ResponseText       string
	NextPrompt         string
	AssistantMessageID string
	Criteria           []criteria.Criterion
	FieldMappings      []mapping.FieldMapping
	Stage              *int
}

// Gateway sends a turn to the conversational backend and returns the raw
// response body for normalization.
type Gateway interface {
	SendTurn(ctx context.Context, req TurnRequest) ([]byte, error)
}
