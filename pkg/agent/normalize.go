package agent

import (
	"encoding/json"
	"fmt"

	"github.com/cohortkit/go-cohortgen/pkg/criteria"
	"github.com/cohortkit/go-cohortgen/pkg/mapping"
)

// payload is the portion of an envelope that can recur at deeper levels.
// The backend sometimes retries internally and re-wraps its own response,
// so the same keys show up at the top level, under metadata, and under
// metadata.metadata.
type payload struct {
	Criteria      []criteria.Criterion   `json:"criteria"`
	FieldMappings []mapping.FieldMapping `json:"field_mappings"`
	Stage         *int                   `json:"stage"`
	Metadata      json.RawMessage        `json:"metadata"`
}

// NormalizeTurn parses a raw turn body and flattens criteria, field
// mappings, and stage from whichever nesting depth carries them. When a key
// appears at several depths the deepest non-empty occurrence wins.
func NormalizeTurn(raw []byte) (Turn, error) {
	var envelope TurnResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Turn{}, fmt.Errorf("agent: normalize turn: %w", err)
	}

	turn := Turn{
		ResponseText:       envelope.ResponseText,
		NextPrompt:         envelope.NextPrompt,
		AssistantMessageID: envelope.AssistantMessageID,
		Criteria:           envelope.Criteria,
		FieldMappings:      envelope.FieldMappings,
		Stage:              envelope.Stage,
	}

	meta := envelope.Metadata
	for depth := 0; depth < 2 && len(meta) > 0; depth++ {
		var p payload
		if err := json.Unmarshal(meta, &p); err != nil {
			// malformed metadata is not fatal; the outer fields stand
			break
		}
		if len(p.Criteria) > 0 {
			turn.Criteria = p.Criteria
		}
		if len(p.FieldMappings) > 0 {
			turn.FieldMappings = p.FieldMappings
		}
		if p.Stage != nil {
			turn.Stage = p.Stage
		}
		meta = p.Metadata
	}

	turn.sanitize()
	return turn, nil
}

func (t *Turn) sanitize() {
	t.ResponseText = SanitizeText(t.ResponseText)
	t.NextPrompt = SanitizeText(t.NextPrompt)
	for i := range t.Criteria {
		t.Criteria[i].Text = SanitizeText(t.Criteria[i].Text)
	}
	for i := range t.FieldMappings {
		t.FieldMappings[i].DisplayText = SanitizeText(t.FieldMappings[i].DisplayText)
	}
}
