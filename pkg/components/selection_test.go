package components

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func categoricalWidget(t *testing.T, optionCount int, onChange ChangeFunc) *Widget {
	t.Helper()
	options := make([]Option, 0, optionCount)
	for i := 0; i < optionCount; i++ {
		v := fmt.Sprintf("value-%02d", i)
		options = append(options, Option{Value: v, Label: v})
	}
	spec := &Spec{
		Type:            TypeMultiSelectDropdown,
		Config:          Config{Field: "patient.race", Options: options},
		OperatorOptions: membershipOperatorOptions,
	}
	return Resolve("criterion-0", "race", spec, onChange)
}

func TestSelection_ShowMoreThreshold(t *testing.T) {
	sel := NewSelection(categoricalWidget(t, 8, nil))

	if got := len(sel.VisibleOptions()); got != DefaultVisibleOptions {
		t.Fatalf("visible before expansion: want %d, got %d", DefaultVisibleOptions, got)
	}
	if got := sel.HiddenCount(); got != 3 {
		t.Fatalf("hidden count: want 3, got %d", got)
	}

	sel.ShowMore()

	if got := len(sel.VisibleOptions()); got != 8 {
		t.Fatalf("visible after expansion: want 8, got %d", got)
	}
	if got := sel.HiddenCount(); got != 0 {
		t.Fatalf("hidden count after expansion: want 0, got %d", got)
	}
}

func TestSelection_SearchFilters(t *testing.T) {
	sel := NewSelection(categoricalWidget(t, 12, nil))
	sel.Search("value-1")

	want := []Option{
		{Value: "value-10", Label: "value-10"},
		{Value: "value-11", Label: "value-11"},
	}
	if diff := cmp.Diff(want, sel.VisibleOptions()); diff != "" {
		t.Fatalf("search results mismatch (-want +got):\n%s", diff)
	}
}

func TestSelection_ToggleAndApply(t *testing.T) {
	var gotOperator string
	var gotValue any
	w := categoricalWidget(t, 6, func(_, _, op string, v any) {
		gotOperator, gotValue = op, v
	})
	sel := NewSelection(w)

	sel.Toggle("value-02")
	sel.Toggle("value-04")
	sel.Toggle("value-02") // deselect again
	sel.Apply()

	if gotOperator != "in" {
		t.Fatalf("operator: want in, got %q", gotOperator)
	}
	if diff := cmp.Diff([]string{"value-04"}, gotValue); diff != "" {
		t.Fatalf("applied selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelection_EmptyApplyReportsEmptySlice(t *testing.T) {
	var gotValue any
	w := categoricalWidget(t, 6, func(_, _, _ string, v any) {
		gotValue = v
	})
	sel := NewSelection(w)

	if !sel.Empty() {
		t.Fatal("fresh selection should be empty")
	}
	sel.Apply()

	values, ok := gotValue.([]string)
	if !ok {
		t.Fatalf("applied value: want []string, got %T", gotValue)
	}
	if len(values) != 0 {
		t.Fatalf("applied value: want empty slice, got %v", values)
	}
}

func TestSelection_SeedsCurrentValue(t *testing.T) {
	w := categoricalWidget(t, 6, nil)
	w.Spec.Config.CurrentValue = []any{"value-01", "value-03"}
	w.value = w.Spec.Config.CurrentValue

	sel := NewSelection(w)

	if diff := cmp.Diff([]string{"value-01", "value-03"}, sel.Selected()); diff != "" {
		t.Fatalf("seeded selection mismatch (-want +got):\n%s", diff)
	}
}
