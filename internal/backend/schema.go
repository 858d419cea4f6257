package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cohortkit/go-cohortgen/pkg/dataset"
)

// Tables lists the queryable tables of the project's dataset.
func (c *Client) Tables(ctx context.Context) ([]dataset.Table, error) {
	var payload struct {
		Tables []dataset.Table `json:"tables"`
	}
	if err := c.do(ctx, http.MethodGet, c.projectPath("schema", "tables"), nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Tables, nil
}

// TableFields lists the fields of one table, unfiltered.
func (c *Client) TableFields(ctx context.Context, table string) ([]dataset.Field, error) {
	var payload struct {
		Fields []dataset.Field `json:"fields"`
	}
	if err := c.do(ctx, http.MethodGet, c.projectPath("schema", "tables", table, "fields"), nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Fields, nil
}

// FieldValues samples distinct values for a field. The endpoint answers
// with either a bare array or a {"values": [...]} wrapper; both decode.
func (c *Client) FieldValues(ctx context.Context, table, field string, limit int) ([]string, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	raw, err := c.doRaw(ctx, http.MethodGet, c.projectPath("schema", "tables", table, "fields", field, "values"), query, nil)
	if err != nil {
		return nil, err
	}

	var bare []string
	if err := json.Unmarshal(raw, &bare); err == nil {
		return bare, nil
	}
	var wrapped struct {
		Values []string `json:"values"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("backend: unexpected field values shape for %s.%s: %w", table, field, err)
	}
	return wrapped.Values, nil
}
