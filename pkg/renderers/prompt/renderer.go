// Package prompt renders a turn view as an interactive terminal session:
// criterion tiers become printed sections, concept widgets become prompts,
// and every edit flows back through the widget's own setters.
package prompt

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cohortkit/go-cohortgen/pkg/components"
	"github.com/cohortkit/go-cohortgen/pkg/engine"
)

// Option mutates renderer construction.
type Option func(*Renderer)

// WithDriver swaps the prompt driver. Tests inject a scripted fake here.
func WithDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// Renderer drives a terminal session over a TurnView.
type Renderer struct {
	driver PromptDriver
}

// Driver exposes the underlying prompt driver for flows that need raw
// prompts next to widget editing, like the schema-browser filter builder.
func (r *Renderer) Driver() PromptDriver { return r.driver }

// New constructs a renderer backed by the interactive survey driver.
func New(options ...Option) *Renderer {
	r := &Renderer{driver: newSurveyDriver()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// RenderTurn walks the view tier by tier. Widgets are offered for editing
// only when the concept tier is disclosed.
func (r *Renderer) RenderTurn(ctx context.Context, view engine.TurnView) error {
	if view.ResponseText != "" {
		if err := r.driver.Info(ctx, view.ResponseText); err != nil {
			return err
		}
	}

	for i, cv := range view.Criteria {
		header := fmt.Sprintf("[%d] %s", i+1, cv.Criterion.Text)
		if cv.Criterion.Polarity != "" {
			header += fmt.Sprintf(" (%s)", cv.Criterion.Polarity)
		}
		if err := r.driver.Info(ctx, header); err != nil {
			return err
		}

		if view.ShowFieldMapping {
			for _, row := range cv.FieldMappings {
				line := fmt.Sprintf("    %s -> %s", row.Entity, row.Selected)
				if len(row.Options) > 1 {
					line += fmt.Sprintf(" (%d candidates)", len(row.Options))
				}
				if err := r.driver.Info(ctx, line); err != nil {
					return err
				}
			}
		}

		if view.ShowConceptMapping {
			for _, widget := range cv.Widgets {
				if err := r.EditWidget(ctx, widget); err != nil {
					return err
				}
			}
		}
	}

	if len(view.Confirmed) > 0 {
		if err := r.driver.Info(ctx, "Confirmed filters:"); err != nil {
			return err
		}
		for _, m := range view.Confirmed {
			text := m.DisplayText
			if text == "" {
				text = fmt.Sprintf("%s %s %v", m.Key(), m.Operator, m.Value)
			}
			if err := r.driver.Info(ctx, "    "+text); err != nil {
				return err
			}
		}
	}

	if view.NextPrompt != "" {
		if err := r.driver.Info(ctx, view.NextPrompt); err != nil {
			return err
		}
	}
	return nil
}

// EditWidget prompts for a widget's operator and value according to its
// kind and writes the result back through the widget's setters.
func (r *Renderer) EditWidget(ctx context.Context, w *components.Widget) error {
	switch w.Kind {
	case components.KindUnknown:
		return r.driver.Info(ctx, "    "+w.PlaceholderText())
	case components.KindToggle:
		return r.editToggle(ctx, w)
	case components.KindNumeric:
		return r.editNumeric(ctx, w)
	case components.KindSingleChoice:
		return r.editSingleChoice(ctx, w)
	case components.KindMultiChoice, components.KindCheckboxList, components.KindSearch:
		return r.editSelection(ctx, w)
	case components.KindDateRange:
		return r.editDateRange(ctx, w)
	default:
		return r.editText(ctx, w)
	}
}

func (r *Renderer) label(w *components.Widget) string {
	if w.Spec.Config.Label != "" {
		return w.Spec.Config.Label
	}
	if w.Spec.Config.Field != "" {
		return w.Spec.Config.Field
	}
	return w.Entity
}

func (r *Renderer) editToggle(ctx context.Context, w *components.Widget) error {
	current, _ := w.Value().(bool)
	on, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: r.label(w) + "?",
		Default: current,
	})
	if err != nil {
		return err
	}
	w.SetValue(on)
	return nil
}

func (r *Renderer) editNumeric(ctx context.Context, w *components.Widget) error {
	if err := r.pickOperator(ctx, w); err != nil {
		return err
	}

	option, _ := w.Spec.OperatorOption(w.Operator())
	if option.WantsRange() {
		low, err := r.numberInput(ctx, r.label(w)+" from", w.Spec.Config.Min)
		if err != nil {
			return err
		}
		high, err := r.numberInput(ctx, r.label(w)+" to", w.Spec.Config.Max)
		if err != nil {
			return err
		}
		w.SetRange(low, high)
		return nil
	}

	value, err := r.numberInput(ctx, r.label(w), nil)
	if err != nil {
		return err
	}
	w.SetValue(value)
	return nil
}

func (r *Renderer) pickOperator(ctx context.Context, w *components.Widget) error {
	options := w.Spec.OperatorOptions
	if len(options) == 0 {
		return nil
	}
	labels := make([]string, len(options))
	defaultIndex := 0
	for i, option := range options {
		labels[i] = option.Label
		if labels[i] == "" {
			labels[i] = option.Value
		}
		if option.Value == w.Operator() {
			defaultIndex = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      "Operator for " + r.label(w),
		Options:      labels,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(options) {
		w.SetOperator(options[idx].Value)
	}
	return nil
}

func (r *Renderer) numberInput(ctx context.Context, message string, fallback *float64) (float64, error) {
	defaultText := ""
	if fallback != nil {
		defaultText = strconv.FormatFloat(*fallback, 'f', -1, 64)
	}
	raw, err := r.driver.Input(ctx, InputConfig{
		Message: message,
		Default: defaultText,
		Validator: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("a number is required")
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
				return fmt.Errorf("%q is not a number", s)
			}
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func (r *Renderer) editSingleChoice(ctx context.Context, w *components.Widget) error {
	options := w.Spec.OptionValues()
	if len(options) == 0 {
		return r.editText(ctx, w)
	}
	defaultIndex := slices.Index(options, fmt.Sprint(w.Value()))
	if defaultIndex < 0 {
		defaultIndex = 0
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.label(w),
		Options:      options,
		DefaultIndex: defaultIndex,
		PageSize:     components.DefaultVisibleOptions,
	})
	if err != nil {
		return err
	}
	if idx >= 0 {
		w.SetValue(options[idx])
	}
	return nil
}

// editSelection drives the searchable multi-select flow: every option is
// offered, the current selection pre-checked, and an empty result is passed
// through as-is so the caller can treat it as filter removal.
func (r *Renderer) editSelection(ctx context.Context, w *components.Widget) error {
	selection := components.NewSelection(w)
	options := w.Spec.OptionValues()
	if len(options) == 0 {
		return r.editText(ctx, w)
	}

	var defaults []int
	for _, value := range selection.Selected() {
		if idx := slices.Index(options, value); idx >= 0 {
			defaults = append(defaults, idx)
		}
	}

	indices, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  r.label(w),
		Options:  options,
		Defaults: defaults,
		PageSize: components.DefaultVisibleOptions,
	})
	if err != nil {
		return err
	}

	for _, value := range selection.Selected() {
		selection.Toggle(value)
	}
	for _, idx := range indices {
		if idx >= 0 && idx < len(options) {
			selection.Toggle(options[idx])
		}
	}
	selection.Apply()
	return nil
}

func (r *Renderer) editDateRange(ctx context.Context, w *components.Widget) error {
	validate := func(s string) error {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			return nil
		}
		if _, err := time.Parse("2006-01-02", trimmed); err != nil {
			return fmt.Errorf("use YYYY-MM-DD")
		}
		return nil
	}
	start, err := r.driver.Input(ctx, InputConfig{
		Message:   r.label(w) + " from (YYYY-MM-DD)",
		Validator: validate,
	})
	if err != nil {
		return err
	}
	end, err := r.driver.Input(ctx, InputConfig{
		Message:   r.label(w) + " to (YYYY-MM-DD)",
		Validator: validate,
	})
	if err != nil {
		return err
	}
	w.SetRange(strings.TrimSpace(start), strings.TrimSpace(end))
	return nil
}

func (r *Renderer) editText(ctx context.Context, w *components.Widget) error {
	current := ""
	if w.Value() != nil {
		current = fmt.Sprint(w.Value())
	}
	raw, err := r.driver.Input(ctx, InputConfig{
		Message: r.label(w),
		Default: current,
	})
	if err != nil {
		return err
	}
	w.SetValue(raw)
	return nil
}
