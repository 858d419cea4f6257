package components

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func numericSpec(min *float64) *Spec {
	return &Spec{
		Type: TypeRangeSlider,
		Config: Config{
			Field:           "patient.age",
			Min:             min,
			CurrentOperator: "greater_than",
			CurrentValue:    float64(40),
		},
		OperatorOptions: numericOperatorOptions,
	}
}

func TestResolve_DefaultOperatorComesFromSpec(t *testing.T) {
	w := Resolve("criterion-0", "age", numericSpec(nil), nil)
	if w.Kind != KindNumeric {
		t.Fatalf("kind: want %q, got %q", KindNumeric, w.Kind)
	}
	if got := w.Operator(); got != "greater_than" {
		t.Fatalf("operator: want greater_than, got %q", got)
	}
	if got := w.Value(); got != float64(40) {
		t.Fatalf("value: want 40, got %v", got)
	}
}

func TestResolve_FirstOperatorOptionWhenConfigSilent(t *testing.T) {
	spec := &Spec{Type: TypeNumberInput, OperatorOptions: numericOperatorOptions}
	w := Resolve("criterion-0", "age", spec, nil)
	if got := w.Operator(); got != "greater_than" {
		t.Fatalf("operator: want first menu entry greater_than, got %q", got)
	}
}

func TestResolve_UnknownTagBecomesPlaceholder(t *testing.T) {
	spec := &Spec{Type: Type("hologram_picker")}
	called := false
	w := Resolve("criterion-0", "age", spec, func(string, string, string, any) {
		called = true
	})
	if w.Kind != KindUnknown {
		t.Fatalf("kind: want %q, got %q", KindUnknown, w.Kind)
	}
	if w.PlaceholderText() == "" {
		t.Fatal("expected diagnostic placeholder text")
	}
	w.SetOperator("between")
	w.SetValue(12)
	if called {
		t.Fatal("placeholder widget must not emit changes")
	}
}

func TestResolve_NilSpecIsTextInput(t *testing.T) {
	w := Resolve("criterion-0", "note", nil, nil)
	if w.Kind != KindText {
		t.Fatalf("kind: want %q, got %q", KindText, w.Kind)
	}
}

func TestSetOperator_ScalarToPairSeedsConfiguredMin(t *testing.T) {
	min := float64(18)
	w := Resolve("criterion-0", "age", numericSpec(&min), nil)

	w.SetOperator("between")

	want := []any{float64(18), float64(40)}
	if diff := cmp.Diff(want, w.Value()); diff != "" {
		t.Fatalf("pair value mismatch (-want +got):\n%s", diff)
	}
}

func TestSetOperator_ScalarToPairSeedsZeroWithoutMin(t *testing.T) {
	w := Resolve("criterion-0", "age", numericSpec(nil), nil)

	w.SetOperator("between")

	want := []any{float64(0), float64(40)}
	if diff := cmp.Diff(want, w.Value()); diff != "" {
		t.Fatalf("pair value mismatch (-want +got):\n%s", diff)
	}
}

// The numeric round trip is lossy: switching a pair down to a scalar keeps
// only the first bound, so coming back to a range re-seeds the lower bound
// from the config and the discarded bound is gone.
func TestSetOperator_PairRoundTripIsLossy(t *testing.T) {
	min := float64(0)
	w := Resolve("criterion-0", "age", numericSpec(&min), nil)

	w.SetOperator("between")
	w.SetRange(float64(10), float64(20))
	w.SetOperator("less_than")

	if got := w.Value(); got != float64(10) {
		t.Fatalf("scalar after pair: want first element 10, got %v", got)
	}

	w.SetOperator("between")

	want := []any{float64(0), float64(10)}
	if diff := cmp.Diff(want, w.Value()); diff != "" {
		t.Fatalf("round trip must not restore [10,20] (-want +got):\n%s", diff)
	}
}

func TestSetOperator_PairToPairKeepsValue(t *testing.T) {
	w := Resolve("criterion-0", "visit", &Spec{
		Type:            TypeDateRangePicker,
		OperatorOptions: dateOperatorOptions,
		Config:          Config{CurrentOperator: "between", CurrentValue: []any{"2020-01-01", "2020-12-31"}},
	}, nil)

	w.SetOperator("between")

	want := []any{"2020-01-01", "2020-12-31"}
	if diff := cmp.Diff(want, w.Value()); diff != "" {
		t.Fatalf("pair value mismatch (-want +got):\n%s", diff)
	}
}

func TestWidget_EmitsExactlyOneCallbackPerChange(t *testing.T) {
	type change struct {
		criterion, entity, operator string
		value                       any
	}
	var got []change
	w := Resolve("criterion-3", "age", numericSpec(nil), func(c, e, op string, v any) {
		got = append(got, change{c, e, op, v})
	})

	w.SetValue(float64(55))
	w.SetOperator("less_equal")

	want := []change{
		{"criterion-3", "age", "greater_than", float64(55)},
		{"criterion-3", "age", "less_equal", float64(55)},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(change{})); diff != "" {
		t.Fatalf("callback sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSetOperator_OutsideMenuIsIgnored(t *testing.T) {
	w := Resolve("criterion-0", "age", numericSpec(nil), nil)
	w.SetOperator("regex_match")
	if got := w.Operator(); got != "greater_than" {
		t.Fatalf("operator: want unchanged greater_than, got %q", got)
	}
}
