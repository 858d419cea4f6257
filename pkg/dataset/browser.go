package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// statusCoder is satisfied by transport errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

func isNotFound(err error) bool {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode() == 404
	}
	return false
}

// Browser serves schema queries from the live client, filtering out
// identifier-like fields, and falls back to the bundled schema when the
// live endpoint answers with a not-found class error. Other failures
// propagate unchanged.
type Browser struct {
	client   Client
	fallback *Fallback
}

// NewBrowser wraps a live client with the bundled fallback schema.
func NewBrowser(client Client) (*Browser, error) {
	if client == nil {
		return nil, fmt.Errorf("dataset: client is required")
	}
	return &Browser{client: client, fallback: NewFallback()}, nil
}

// Tables lists the browsable tables.
func (b *Browser) Tables(ctx context.Context) ([]Table, error) {
	tables, err := b.client.Tables(ctx)
	if err != nil {
		if isNotFound(err) {
			return b.fallback.Tables(ctx)
		}
		return nil, fmt.Errorf("dataset: list tables: %w", err)
	}
	return tables, nil
}

// TableFields lists a table's filterable fields. Identifier columns and
// fully unique fields are dropped: they are useless as cohort filters.
func (b *Browser) TableFields(ctx context.Context, table string) ([]Field, error) {
	fields, err := b.client.TableFields(ctx, table)
	if err != nil {
		if isNotFound(err) {
			fields, err = b.fallback.TableFields(ctx, table)
			if err != nil {
				return nil, err
			}
			return FilterFields(fields), nil
		}
		return nil, fmt.Errorf("dataset: list fields for %s: %w", table, err)
	}
	return FilterFields(fields), nil
}

// FieldValues samples distinct values for a field, up to limit.
func (b *Browser) FieldValues(ctx context.Context, table, field string, limit int) ([]string, error) {
	values, err := b.client.FieldValues(ctx, table, field, limit)
	if err != nil {
		if isNotFound(err) {
			return b.fallback.FieldValues(ctx, table, field, limit)
		}
		return nil, fmt.Errorf("dataset: values for %s.%s: %w", table, field, err)
	}
	return values, nil
}

// FilterFields removes fields that cannot meaningfully filter a cohort:
// the primary key, foreign-key columns, and fields unique per row.
func FilterFields(fields []Field) []Field {
	var out []Field
	for _, f := range fields {
		name := strings.ToLower(f.FieldName)
		if name == "id" || strings.Contains(name, "_id") {
			continue
		}
		if f.UniquenessPercent >= 100 {
			continue
		}
		out = append(out, f)
	}
	return out
}
