package components

import (
	"fmt"
)

// ChangeFunc receives every operator/value edit a widget produces. It is the
// single write boundary out of the component layer: widgets never touch the
// network or any shared store themselves.
type ChangeFunc func(criterionID, entity, operator string, value any)

// Widget is the resolved, self-contained input state for one entity of one
// criterion. It owns the current operator and value and reports every change
// through exactly one callback.
type Widget struct {
	CriterionID string
	Entity      string
	Spec        Spec
	Kind        Kind

	operator string
	value    any
	onChange ChangeFunc
}

// Resolve maps a spec to a concrete widget. A nil spec resolves to a plain
// text input; an unrecognized tag resolves to the unknown placeholder.
func Resolve(criterionID, entity string, spec *Spec, onChange ChangeFunc) *Widget {
	w := &Widget{
		CriterionID: criterionID,
		Entity:      entity,
		onChange:    onChange,
	}
	if spec == nil {
		w.Kind = KindText
		w.Spec = Spec{Type: TypeTextInput}
		return w
	}
	w.Spec = *spec
	kind, ok := knownTypes[spec.Type]
	if !ok {
		w.Kind = KindUnknown
		return w
	}
	w.Kind = kind
	w.operator = spec.DefaultOperator()
	w.value = spec.Config.CurrentValue
	return w
}

// Operator returns the widget's current operator.
func (w *Widget) Operator() string { return w.operator }

// Value returns the widget's current value.
func (w *Widget) Value() any { return w.value }

// Editable reports whether the widget accepts edits. The unknown placeholder
// does not.
func (w *Widget) Editable() bool { return w.Kind != KindUnknown }

// PlaceholderText describes an unrecognized component tag for diagnostic
// rendering. Empty for known kinds.
func (w *Widget) PlaceholderText() string {
	if w.Kind != KindUnknown {
		return ""
	}
	return fmt.Sprintf("unsupported component type %q for %s", string(w.Spec.Type), w.Entity)
}

// SetOperator switches the current operator, converting the value shape when
// the operator family changes. Scalar to pair seeds the pair with the
// configured minimum (or zero) as the lower bound and the old scalar as the
// upper bound; pair to scalar keeps the pair's first element. The conversion
// is lossy: the discarded bound is not recoverable.
func (w *Widget) SetOperator(operator string) {
	if !w.Editable() {
		return
	}
	prev, hadPrev := w.Spec.OperatorOption(w.operator)
	next, ok := w.Spec.OperatorOption(operator)
	if !ok {
		// Operators outside the menu are accepted verbatim for specs that
		// ship without operator options (plain text inputs).
		if len(w.Spec.OperatorOptions) > 0 {
			return
		}
		w.operator = operator
		w.emit()
		return
	}

	switch {
	case next.WantsRange() && (!hadPrev || !prev.WantsRange()):
		w.value = []any{w.configuredMin(), w.value}
	case !next.WantsRange() && hadPrev && prev.WantsRange():
		if pair, ok := w.value.([]any); ok && len(pair) > 0 {
			w.value = pair[0]
		}
	}
	w.operator = next.Value
	w.emit()
}

// SetValue replaces the current value and reports the change.
func (w *Widget) SetValue(value any) {
	if !w.Editable() {
		return
	}
	w.value = value
	w.emit()
}

// SetRange replaces the current value with an ordered pair. Intended for
// range-family operators; the bounds are kept as given, not sorted.
func (w *Widget) SetRange(low, high any) {
	if !w.Editable() {
		return
	}
	w.value = []any{low, high}
	w.emit()
}

func (w *Widget) configuredMin() any {
	if w.Spec.Config.Min != nil {
		return *w.Spec.Config.Min
	}
	return float64(0)
}

func (w *Widget) emit() {
	if w.onChange == nil {
		return
	}
	w.onChange(w.CriterionID, w.Entity, w.operator, w.value)
}
