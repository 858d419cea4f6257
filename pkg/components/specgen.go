package components

import "strings"

// ValueRange summarizes the observed numeric range of a field.
type ValueRange struct {
	Min  float64
	Max  float64
	Mean *float64
}

// Step picks a slider step proportional to the range width.
func (r ValueRange) Step() float64 {
	width := r.Max - r.Min
	switch {
	case width < 1:
		return 0.01
	case width < 10:
		return 0.1
	case width < 100:
		return 1
	case width < 1000:
		return 10
	default:
		return 100
	}
}

var numericOperatorOptions = []OperatorOption{
	{Value: "greater_than", Label: ">", Requires: RequiresSingleValue},
	{Value: "less_than", Label: "<", Requires: RequiresSingleValue},
	{Value: "equals", Label: "=", Requires: RequiresSingleValue},
	{Value: "greater_equal", Label: "≥", Requires: RequiresSingleValue},
	{Value: "less_equal", Label: "≤", Requires: RequiresSingleValue},
	{Value: "between", Label: "between", Requires: RequiresRange},
}

var membershipOperatorOptions = []OperatorOption{
	{Value: "in", Label: "is any of", Requires: RequiresMultipleValues},
	{Value: "not_in", Label: "is none of", Requires: RequiresMultipleValues},
}

var dateOperatorOptions = []OperatorOption{
	{Value: "before", Label: "before", Requires: RequiresSingleDate},
	{Value: "after", Label: "after", Requires: RequiresSingleDate},
	{Value: "between", Label: "between", Requires: RequiresDateRange},
	{Value: "on", Label: "on", Requires: RequiresSingleDate},
}

// SpecForField picks a component spec for a field the user selected in the
// schema browser, so panel-created filters get a widget without a backend
// round trip. The decision tree follows the backend generator: booleans get a
// toggle, dates a date-range picker, numerics a slider when a bounded range
// with enough distinct values is known (number input otherwise), and
// categorical fields a checkbox list below ten distinct values or an
// autocomplete above it.
func SpecForField(tableField, fieldType string, cardinality int, valueRange *ValueRange, values []string) Spec {
	ft := strings.ToLower(fieldType)

	base := Config{Field: tableField, Label: tableField, DataType: fieldType}

	switch {
	case ft == "bool" || ft == "boolean":
		cfg := base
		cfg.OnLabel, cfg.OffLabel = "Yes", "No"
		return Spec{
			Type:   TypeToggle,
			Config: cfg,
			OperatorOptions: []OperatorOption{
				{Value: "is_true", Label: cfg.OnLabel, Requires: RequiresSingleValue},
				{Value: "is_false", Label: cfg.OffLabel, Requires: RequiresSingleValue},
				{Value: "any", Label: "Any", Requires: RequiresSingleValue},
			},
		}

	case strings.Contains(ft, "date") || strings.Contains(ft, "time"):
		cfg := base
		cfg.Format = "2006-01-02"
		return Spec{Type: TypeDateRangePicker, Config: cfg, OperatorOptions: dateOperatorOptions}

	case strings.Contains(ft, "int") || strings.Contains(ft, "float") ||
		strings.Contains(ft, "double") || strings.Contains(ft, "numeric") ||
		strings.Contains(ft, "decimal"):
		cfg := base
		if valueRange != nil && cardinality > 20 {
			minVal, maxVal := valueRange.Min, valueRange.Max
			cfg.Min, cfg.Max = &minVal, &maxVal
			cfg.Step = valueRange.Step()
			return Spec{Type: TypeRangeSlider, Config: cfg, OperatorOptions: numericOperatorOptions}
		}
		zero := float64(0)
		cfg.Min = &zero
		if strings.Contains(ft, "float") || strings.Contains(ft, "double") {
			cfg.Step = 0.1
		} else {
			cfg.Step = 1
		}
		return Spec{Type: TypeNumberInput, Config: cfg, OperatorOptions: numericOperatorOptions}

	case cardinality > 0 && cardinality < 10:
		cfg := base
		cfg.Options = optionsFromValues(values, cardinality)
		return Spec{Type: TypeCheckboxList, Config: cfg, OperatorOptions: membershipOperatorOptions}

	default:
		cfg := base
		cfg.Searchable = true
		cfg.Options = optionsFromValues(values, 50)
		return Spec{
			Type:   TypeAutocomplete,
			Config: cfg,
			OperatorOptions: []OperatorOption{
				{Value: "equals", Label: "is", Requires: RequiresSingleValue},
				{Value: "not_equals", Label: "is not", Requires: RequiresSingleValue},
				{Value: "in", Label: "is any of", Requires: RequiresMultipleValues},
			},
		}
	}
}

func optionsFromValues(values []string, limit int) []Option {
	if limit <= 0 || limit > len(values) {
		limit = len(values)
	}
	out := make([]Option, 0, limit)
	for _, v := range values[:limit] {
		out = append(out, Option{Value: v, Label: v})
	}
	return out
}
