// Package dataset exposes the browsable database schema: tables, fields,
// and sampled field values. A bundled fallback schema keeps the browser
// usable when the live endpoints are unavailable.
package dataset

import "context"

// Table summarizes one queryable table.
type Table struct {
	TableName        string `json:"table_name"`
	TableDescription string `json:"table_description,omitempty"`
	FieldCount       int    `json:"field_count"`
}

// Field describes one column of a table. Uniqueness drives both identifier
// filtering and widget selection for categorical fields.
type Field struct {
	FieldName         string   `json:"field_name"`
	FieldType         string   `json:"field_type"`
	FieldDescription  string   `json:"field_description,omitempty"`
	UniquenessPercent float64  `json:"field_uniqueness_percent"`
	UniqueValues      int      `json:"unique_values,omitempty"`
	SampleValues      []string `json:"sample_values,omitempty"`
	MinValue          *float64 `json:"min_value,omitempty"`
	MaxValue          *float64 `json:"max_value,omitempty"`
	MeanValue         *float64 `json:"mean_value,omitempty"`
}

// CacheStatus reports whether the backend's schema cache is warm enough to
// serve table and field queries.
type CacheStatus struct {
	IsReady   bool   `json:"is_ready"`
	HasSchema bool   `json:"has_schema"`
	HasDB     bool   `json:"has_db"`
	Message   string `json:"message,omitempty"`
}

// Client fetches schema information from the live backend.
type Client interface {
	Tables(ctx context.Context) ([]Table, error)
	TableFields(ctx context.Context, table string) ([]Field, error)
	FieldValues(ctx context.Context, table, field string, limit int) ([]string, error)
}
