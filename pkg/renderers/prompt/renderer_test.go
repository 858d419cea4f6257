package prompt

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cohortkit/go-cohortgen/pkg/components"
	"github.com/cohortkit/go-cohortgen/pkg/criteria"
	"github.com/cohortkit/go-cohortgen/pkg/engine"
)

// scriptedDriver replays canned answers and records everything printed.
type scriptedDriver struct {
	inputs       []string
	confirms     []bool
	selects      []int
	multiSelects [][]int
	infos        []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return cfg.Default, nil
	}
	out := d.inputs[0]
	d.inputs = d.inputs[1:]
	return out, nil
}

func (d *scriptedDriver) Confirm(context.Context, ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, nil
	}
	out := d.confirms[0]
	d.confirms = d.confirms[1:]
	return out, nil
}

func (d *scriptedDriver) Select(context.Context, SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, nil
	}
	out := d.selects[0]
	d.selects = d.selects[1:]
	return out, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, SelectConfig) ([]int, error) {
	if len(d.multiSelects) == 0 {
		return nil, nil
	}
	out := d.multiSelects[0]
	d.multiSelects = d.multiSelects[1:]
	return out, nil
}

func (d *scriptedDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func numericWidget(t *testing.T, changes *[][2]any) *components.Widget {
	t.Helper()
	spec := &components.Spec{
		Type: components.TypeNumberInput,
		Config: components.Config{
			Field:    "patient.age",
			Label:    "Age",
			DataType: "int64",
		},
		OperatorOptions: []components.OperatorOption{
			{Value: "greater_than", Label: "greater than", Requires: components.RequiresSingleValue},
			{Value: "between", Label: "between", Requires: components.RequiresRange},
		},
	}
	return components.Resolve("c1", "age", spec, func(_, _, operator string, value any) {
		*changes = append(*changes, [2]any{operator, value})
	})
}

func TestEditWidget_Numeric(t *testing.T) {
	var changes [][2]any
	w := numericWidget(t, &changes)

	driver := &scriptedDriver{
		selects: []int{0}, // keep greater_than
		inputs:  []string{"65"},
	}
	r := New(WithDriver(driver))

	if err := r.EditWidget(context.Background(), w); err != nil {
		t.Fatalf("EditWidget: %v", err)
	}
	if w.Operator() != "greater_than" {
		t.Fatalf("operator: %q", w.Operator())
	}
	if got, ok := w.Value().(float64); !ok || got != 65 {
		t.Fatalf("value: %v", w.Value())
	}
}

func TestEditWidget_NumericRange(t *testing.T) {
	var changes [][2]any
	w := numericWidget(t, &changes)

	driver := &scriptedDriver{
		selects: []int{1}, // between
		inputs:  []string{"40", "65"},
	}
	r := New(WithDriver(driver))

	if err := r.EditWidget(context.Background(), w); err != nil {
		t.Fatalf("EditWidget: %v", err)
	}
	if w.Operator() != "between" {
		t.Fatalf("operator: %q", w.Operator())
	}
	pair, ok := w.Value().([]any)
	if !ok || len(pair) != 2 {
		t.Fatalf("value: %v", w.Value())
	}
	if pair[0] != float64(40) || pair[1] != float64(65) {
		t.Fatalf("range: %v", pair)
	}
}

func TestEditWidget_MultiSelectEmptyMeansRemoval(t *testing.T) {
	var lastValue any
	spec := &components.Spec{
		Type: components.TypeCheckboxList,
		Config: components.Config{
			Field:        "patient.gender",
			CurrentValue: []any{"F"},
			Options: []components.Option{
				{Value: "F"}, {Value: "M"}, {Value: "Unknown"},
			},
		},
		OperatorOptions: []components.OperatorOption{
			{Value: "in", Requires: components.RequiresMultipleValues},
		},
	}
	w := components.Resolve("c1", "gender", spec, func(_, _, _ string, value any) {
		lastValue = value
	})

	driver := &scriptedDriver{multiSelects: [][]int{{}}}
	r := New(WithDriver(driver))

	if err := r.EditWidget(context.Background(), w); err != nil {
		t.Fatalf("EditWidget: %v", err)
	}
	selected, ok := lastValue.([]string)
	if !ok {
		t.Fatalf("applied value: %T", lastValue)
	}
	if len(selected) != 0 {
		t.Fatalf("empty selection must pass through empty, got %v", selected)
	}
}

func TestEditWidget_UnknownKindPrintsPlaceholder(t *testing.T) {
	spec := &components.Spec{Type: components.Type("hologram")}
	called := false
	w := components.Resolve("c1", "x", spec, func(_, _, _ string, _ any) { called = true })

	driver := &scriptedDriver{}
	r := New(WithDriver(driver))

	if err := r.EditWidget(context.Background(), w); err != nil {
		t.Fatalf("EditWidget: %v", err)
	}
	if len(driver.infos) != 1 {
		t.Fatalf("infos: %v", driver.infos)
	}
	if called {
		t.Fatal("unknown widgets must never emit changes")
	}
}

func TestRenderTurn_TiersGatedByStage(t *testing.T) {
	view := engine.TurnView{
		ResponseText:     "Found 1 criterion",
		ShowFieldMapping: true,
		Criteria: []engine.CriterionView{{
			Criterion: criteria.Criterion{ID: "c1", Text: "are female"},
			FieldMappings: []engine.FieldMappingView{{
				Entity:   "female",
				Selected: "patient.gender",
				Options:  []string{"patient.gender", "patient.self_reported_race"},
			}},
		}},
	}

	driver := &scriptedDriver{}
	r := New(WithDriver(driver))
	if err := r.RenderTurn(context.Background(), view); err != nil {
		t.Fatalf("RenderTurn: %v", err)
	}

	want := []string{
		"Found 1 criterion",
		"[1] are female",
		"    female -> patient.gender (2 candidates)",
	}
	if diff := cmp.Diff(want, driver.infos); diff != "" {
		t.Fatalf("printed lines (-want +got):\n%s", diff)
	}
}
