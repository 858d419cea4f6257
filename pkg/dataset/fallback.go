package dataset

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed fallback_schema.yaml
var fallbackSchemaYAML []byte

// Schema extension keys carried on the bundled document.
const (
	extUniquenessPercent = "x-uniqueness-percent"
	extSampleValues      = "x-sample-values"
	extUniqueValues      = "x-unique-values"
	extMeanValue         = "x-mean-value"
)

// Fallback serves schema queries from the OpenAPI document bundled with the
// binary. Each component schema is one table; its properties are fields.
type Fallback struct {
	once   sync.Once
	err    error
	tables []Table
	fields map[string][]Field
}

// NewFallback returns the bundled schema. Parsing is deferred to first use.
func NewFallback() *Fallback {
	return &Fallback{}
}

func (f *Fallback) load(ctx context.Context) error {
	f.once.Do(func() {
		loader := &openapi3.Loader{Context: ctx}
		spec, err := loader.LoadFromData(fallbackSchemaYAML)
		if err != nil {
			f.err = fmt.Errorf("dataset: parse bundled schema: %w", err)
			return
		}
		if spec.Components == nil || len(spec.Components.Schemas) == 0 {
			f.err = fmt.Errorf("dataset: bundled schema has no component schemas")
			return
		}

		f.fields = make(map[string][]Field, len(spec.Components.Schemas))
		for name, ref := range spec.Components.Schemas {
			if ref == nil || ref.Value == nil {
				continue
			}
			fields := convertFields(ref.Value)
			f.fields[name] = fields
			f.tables = append(f.tables, Table{
				TableName:        name,
				TableDescription: ref.Value.Description,
				FieldCount:       len(fields),
			})
		}
		sort.Slice(f.tables, func(i, j int) bool {
			return f.tables[i].TableName < f.tables[j].TableName
		})
	})
	return f.err
}

// Tables lists the bundled tables.
func (f *Fallback) Tables(ctx context.Context) ([]Table, error) {
	if err := f.load(ctx); err != nil {
		return nil, err
	}
	return append([]Table(nil), f.tables...), nil
}

// TableFields lists the bundled fields of a table.
func (f *Fallback) TableFields(ctx context.Context, table string) ([]Field, error) {
	if err := f.load(ctx); err != nil {
		return nil, err
	}
	fields, ok := f.fields[table]
	if !ok {
		return nil, fmt.Errorf("dataset: bundled schema has no table %q", table)
	}
	return append([]Field(nil), fields...), nil
}

// FieldValues returns the bundled sample values for a field, up to limit.
func (f *Fallback) FieldValues(ctx context.Context, table, field string, limit int) ([]string, error) {
	fields, err := f.TableFields(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, fl := range fields {
		if fl.FieldName != field {
			continue
		}
		values := fl.SampleValues
		if limit > 0 && len(values) > limit {
			values = values[:limit]
		}
		return append([]string(nil), values...), nil
	}
	return nil, fmt.Errorf("dataset: bundled schema has no field %s.%s", table, field)
}

func convertFields(schema *openapi3.Schema) []Field {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		src := ref.Value
		field := Field{
			FieldName:        name,
			FieldType:        fieldType(src),
			FieldDescription: src.Description,
			MinValue:         src.Min,
			MaxValue:         src.Max,
		}
		if v, ok := floatExtension(src.Extensions, extUniquenessPercent); ok {
			field.UniquenessPercent = v
		}
		if v, ok := floatExtension(src.Extensions, extUniqueValues); ok {
			field.UniqueValues = int(v)
		}
		if v, ok := floatExtension(src.Extensions, extMeanValue); ok {
			mean := v
			field.MeanValue = &mean
		}
		field.SampleValues = stringExtension(src.Extensions, extSampleValues)
		if len(field.SampleValues) == 0 && len(src.Enum) > 0 {
			for _, e := range src.Enum {
				field.SampleValues = append(field.SampleValues, fmt.Sprint(e))
			}
		}
		out = append(out, field)
	}
	return out
}

func fieldType(src *openapi3.Schema) string {
	var kind string
	if src.Type != nil {
		if values := src.Type.Slice(); len(values) > 0 {
			kind = values[0]
		}
	}
	switch kind {
	case "integer":
		return "int64"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "string":
		if src.Format == "date" || src.Format == "date-time" {
			return "datetime"
		}
		return "object"
	default:
		return "object"
	}
}

func floatExtension(ext map[string]any, key string) (float64, bool) {
	raw, ok := ext[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func stringExtension(ext map[string]any, key string) []string {
	raw, ok := ext[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
