package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cohortkit/go-cohortgen/pkg/mapping"
)

// ListFieldMappings fetches the project's field mappings, optionally
// narrowed by status and source.
func (c *Client) ListFieldMappings(ctx context.Context, filter mapping.Filter) ([]mapping.FieldMapping, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Source != "" {
		query.Set("source", string(filter.Source))
	}

	var payload struct {
		FieldMappings []mapping.FieldMapping `json:"field_mappings"`
	}
	if err := c.do(ctx, http.MethodGet, c.projectPath("field-mappings"), query, nil, &payload); err != nil {
		return nil, err
	}
	return payload.FieldMappings, nil
}

// CreateFieldMapping persists a mapping. The backend answers with the new id
// and a partial record carrying server-derived fields; the result is the
// input overlaid with both.
func (c *Client) CreateFieldMapping(ctx context.Context, m mapping.FieldMapping) (mapping.FieldMapping, error) {
	var payload struct {
		ID      string               `json:"id"`
		Message string               `json:"message"`
		Mapping mapping.FieldMapping `json:"mapping"`
	}
	if err := c.do(ctx, http.MethodPost, c.projectPath("field-mappings"), nil, m, &payload); err != nil {
		return mapping.FieldMapping{}, err
	}

	created := m
	created.ID = payload.ID
	overlayMapping(&created, payload.Mapping)
	return created, nil
}

// UpdateFieldMapping applies a partial update and returns the full record.
func (c *Client) UpdateFieldMapping(ctx context.Context, id string, patch mapping.Patch) (mapping.FieldMapping, error) {
	var updated mapping.FieldMapping
	if err := c.do(ctx, http.MethodPatch, c.projectPath("field-mappings", id), nil, patch, &updated); err != nil {
		return mapping.FieldMapping{}, err
	}
	return updated, nil
}

// DeleteFieldMapping removes a record. A 404 means the record is already
// gone and is treated as success.
func (c *Client) DeleteFieldMapping(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, c.projectPath("field-mappings", id), nil, nil, nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}

// overlayMapping copies non-zero fields of the partial server record over
// the locally built one.
func overlayMapping(dst *mapping.FieldMapping, src mapping.FieldMapping) {
	if src.Status != "" {
		dst.Status = src.Status
	}
	if src.Source != "" {
		dst.Source = src.Source
	}
	if src.SQLCriterion != "" {
		dst.SQLCriterion = src.SQLCriterion
	}
	if src.DisplayText != "" {
		dst.DisplayText = src.DisplayText
	}
	if src.Concept != "" {
		dst.Concept = src.Concept
	}
	if src.CreatedAt != nil {
		dst.CreatedAt = src.CreatedAt
	}
	if src.UpdatedAt != nil {
		dst.UpdatedAt = src.UpdatedAt
	}
}
