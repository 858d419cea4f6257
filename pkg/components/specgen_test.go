package components

import "testing"

func TestSpecForField_DecisionTree(t *testing.T) {
	rangeInfo := &ValueRange{Min: 0, Max: 110}

	cases := []struct {
		name        string
		fieldType   string
		cardinality int
		valueRange  *ValueRange
		want        Type
	}{
		{"boolean toggle", "bool", 2, nil, TypeToggle},
		{"datetime picker", "datetime64[ns]", 400, nil, TypeDateRangePicker},
		{"bounded numeric slider", "int64", 90, rangeInfo, TypeRangeSlider},
		{"sparse numeric input", "int64", 12, rangeInfo, TypeNumberInput},
		{"unbounded numeric input", "float64", 90, nil, TypeNumberInput},
		{"low cardinality checkboxes", "object", 4, nil, TypeCheckboxList},
		{"high cardinality autocomplete", "object", 250, nil, TypeAutocomplete},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := SpecForField("patient.field", tc.fieldType, tc.cardinality, tc.valueRange, nil)
			if spec.Type != tc.want {
				t.Fatalf("component type: want %q, got %q", tc.want, spec.Type)
			}
			if !Known(spec.Type) {
				t.Fatalf("generated type %q must be in the closed set", spec.Type)
			}
			if len(spec.OperatorOptions) == 0 {
				t.Fatal("generated spec must carry operator options")
			}
		})
	}
}

func TestSpecForField_SliderConfigCarriesBounds(t *testing.T) {
	spec := SpecForField("labs.bmi", "float64", 300, &ValueRange{Min: 12, Max: 62}, nil)
	if spec.Config.Min == nil || *spec.Config.Min != 12 {
		t.Fatalf("min: want 12, got %v", spec.Config.Min)
	}
	if spec.Config.Max == nil || *spec.Config.Max != 62 {
		t.Fatalf("max: want 62, got %v", spec.Config.Max)
	}
	if spec.Config.Step != 1 {
		t.Fatalf("step for width 50: want 1, got %v", spec.Config.Step)
	}
}

func TestValueRange_Step(t *testing.T) {
	cases := []struct {
		min, max float64
		want     float64
	}{
		{0, 0.5, 0.01},
		{0, 8, 0.1},
		{0, 80, 1},
		{0, 800, 10},
		{0, 8000, 100},
	}
	for _, tc := range cases {
		if got := (ValueRange{Min: tc.min, Max: tc.max}).Step(); got != tc.want {
			t.Fatalf("step for width %v: want %v, got %v", tc.max-tc.min, tc.want, got)
		}
	}
}
