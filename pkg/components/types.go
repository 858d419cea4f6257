// Package components resolves semantic widget-type tags produced by the
// conversational backend into concrete input behaviors. The tag set is closed:
// every known tag maps to one behavior class, and anything else resolves to an
// explicit diagnostic placeholder instead of an error.
package components

import "strings"

// Type is the semantic widget-type tag carried by a UI component spec.
type Type string

// Built-in component type tags emitted by the backend generator.
const (
	TypeRangeSlider         Type = "range_slider"
	TypeNumberInput         Type = "number_input"
	TypeDropdown            Type = "dropdown"
	TypeDropdownSingle      Type = "dropdown_single"
	TypeMultiSelect         Type = "multiselect"
	TypeMultiSelectDropdown Type = "multiselect_dropdown"
	TypeAutocomplete        Type = "autocomplete"
	TypeDateRange           Type = "date_range"
	TypeDateRangePicker     Type = "date_range_picker"
	TypeToggle              Type = "toggle"
	TypeCheckboxList        Type = "checkbox_list"
	TypeTextInput           Type = "text_input"
)

var knownTypes = map[Type]Kind{
	TypeRangeSlider:         KindNumeric,
	TypeNumberInput:         KindNumeric,
	TypeDropdown:            KindSingleChoice,
	TypeDropdownSingle:      KindSingleChoice,
	TypeMultiSelect:         KindMultiChoice,
	TypeMultiSelectDropdown: KindMultiChoice,
	TypeAutocomplete:        KindSearch,
	TypeDateRange:           KindDateRange,
	TypeDateRangePicker:     KindDateRange,
	TypeToggle:              KindToggle,
	TypeCheckboxList:        KindCheckboxList,
	TypeTextInput:           KindText,
}

// Known reports whether the tag belongs to the closed component type set.
func Known(t Type) bool {
	_, ok := knownTypes[t]
	return ok
}

// Kind is the behavior class a component type resolves to. Several tags share
// a class (e.g. dropdown and dropdown_single) because they differ only in
// presentation, not in the operator/value contract.
type Kind string

const (
	KindNumeric      Kind = "numeric"
	KindSingleChoice Kind = "single_choice"
	KindMultiChoice  Kind = "multi_choice"
	KindSearch       Kind = "search"
	KindDateRange    Kind = "date_range"
	KindToggle       Kind = "toggle"
	KindCheckboxList Kind = "checkbox_list"
	KindText         Kind = "text"
	// KindUnknown is the explicit fallback arm for unrecognized tags. It
	// renders a diagnostic placeholder and accepts no edits.
	KindUnknown Kind = "unknown"
)

// Requires values describe the value shape an operator expects.
const (
	RequiresSingleValue    = "single_value"
	RequiresRange          = "range"
	RequiresMultipleValues = "multiple_values"
	RequiresSingleDate     = "single_date"
	RequiresDateRange      = "date_range"
)

// OperatorOption is one entry of a spec's operator menu.
type OperatorOption struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Requires    string `json:"requires,omitempty"`
}

// WantsRange reports whether the operator expects an ordered pair value.
func (o OperatorOption) WantsRange() bool {
	return o.Requires == RequiresRange || o.Requires == RequiresDateRange
}

// Option is a selectable value for choice-style components.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// Config carries the per-component configuration emitted by the backend. Only
// the fields relevant to a component's kind are populated; the rest stay at
// their zero values.
type Config struct {
	Field           string         `json:"field,omitempty"`
	Label           string         `json:"label,omitempty"`
	DataType        string         `json:"data_type,omitempty"`
	Unit            string         `json:"unit,omitempty"`
	Min             *float64       `json:"min,omitempty"`
	Max             *float64       `json:"max,omitempty"`
	Step            float64        `json:"step,omitempty"`
	Placeholder     string         `json:"placeholder,omitempty"`
	CurrentOperator string         `json:"current_operator,omitempty"`
	CurrentValue    any            `json:"current_value,omitempty"`
	Options         []Option       `json:"options,omitempty"`
	Searchable      bool           `json:"searchable,omitempty"`
	AllowClear      bool           `json:"allow_clear,omitempty"`
	OnLabel         string         `json:"on_label,omitempty"`
	OffLabel        string         `json:"off_label,omitempty"`
	Format          string         `json:"format,omitempty"`
	Marks           map[string]any `json:"marks,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Spec is the component specification attached to an entity's database
// mapping by the backend's UI generation step.
type Spec struct {
	Type            Type             `json:"type"`
	Config          Config           `json:"config"`
	OperatorOptions []OperatorOption `json:"operator_options,omitempty"`
}

// DefaultOperator returns the operator a freshly resolved widget starts with:
// the config's current operator when present, otherwise the first entry of
// the operator menu.
func (s Spec) DefaultOperator() string {
	if op := strings.TrimSpace(s.Config.CurrentOperator); op != "" {
		return op
	}
	if len(s.OperatorOptions) > 0 {
		return s.OperatorOptions[0].Value
	}
	return ""
}

// OperatorOption looks up an operator menu entry by value.
func (s Spec) OperatorOption(value string) (OperatorOption, bool) {
	for _, opt := range s.OperatorOptions {
		if opt.Value == value {
			return opt, true
		}
	}
	return OperatorOption{}, false
}

// OptionValues flattens the configured options into their raw values.
func (s Spec) OptionValues() []string {
	if len(s.Config.Options) == 0 {
		return nil
	}
	values := make([]string, 0, len(s.Config.Options))
	for _, opt := range s.Config.Options {
		values = append(values, opt.Value)
	}
	return values
}
