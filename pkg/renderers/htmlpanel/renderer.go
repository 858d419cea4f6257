// Package htmlpanel renders a turn view as a static HTML dashboard panel
// using pongo2 templates bundled with the binary. All backend-supplied text
// reaches the templates already sanitized by the agent package; the
// templates themselves only echo it.
package htmlpanel

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/cohortkit/go-cohortgen/pkg/components"
	"github.com/cohortkit/go-cohortgen/pkg/engine"
)

//go:embed templates/*.tpl
var templateFS embed.FS

// Renderer renders turn views to HTML.
type Renderer struct {
	mu  sync.RWMutex
	set *pongo2.TemplateSet

	templates map[string]*pongo2.Template
}

// New constructs a renderer over the embedded templates.
func New() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("htmlpanel: embedded templates: %w", err)
	}
	registerFilters()
	return &Renderer{
		set:       pongo2.NewSet("htmlpanel", pongo2.NewFSLoader(sub)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// RenderTurn renders the full panel for a view.
func (r *Renderer) RenderTurn(view engine.TurnView) (string, error) {
	return r.render("panel.tpl", contextForView(view))
}

func (r *Renderer) render(name string, ctx pongo2.Context) (string, error) {
	tmpl, err := r.template(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("htmlpanel: execute %q: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("htmlpanel: parse %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

func contextForView(view engine.TurnView) pongo2.Context {
	var criteria []pongo2.Context
	for _, cv := range view.Criteria {
		var mappings []pongo2.Context
		for _, row := range cv.FieldMappings {
			mappings = append(mappings, pongo2.Context{
				"entity":   row.Entity,
				"selected": row.Selected,
				"options":  row.Options,
			})
		}
		var widgets []pongo2.Context
		for _, w := range cv.Widgets {
			widgets = append(widgets, contextForWidget(w))
		}
		criteria = append(criteria, pongo2.Context{
			"text":     cv.Criterion.Text,
			"polarity": string(cv.Criterion.Polarity),
			"mappings": mappings,
			"widgets":  widgets,
		})
	}

	var confirmed []string
	for _, m := range view.Confirmed {
		text := m.DisplayText
		if text == "" {
			text = fmt.Sprintf("%s %s %v", m.Key(), m.Operator, m.Value)
		}
		confirmed = append(confirmed, text)
	}

	return pongo2.Context{
		"response_text":        view.ResponseText,
		"next_prompt":          view.NextPrompt,
		"show_field_mapping":   view.ShowFieldMapping,
		"show_concept_mapping": view.ShowConceptMapping,
		"criteria":             criteria,
		"confirmed":            confirmed,
		"has_pending":          view.HasPendingChanges,
	}
}

func contextForWidget(w *components.Widget) pongo2.Context {
	label := w.Spec.Config.Label
	if label == "" {
		label = w.Spec.Config.Field
	}
	if label == "" {
		label = w.Entity
	}
	return pongo2.Context{
		"kind":        string(w.Kind),
		"label":       label,
		"operator":    w.Operator(),
		"value":       valueText(w.Value()),
		"unit":        w.Spec.Config.Unit,
		"editable":    w.Editable(),
		"placeholder": w.PlaceholderText(),
	}
}

func valueText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func registerFilters() {
	if !pongo2.FilterExists("operator_label") {
		_ = pongo2.RegisterFilter("operator_label", filterOperatorLabel)
	}
}

// filterOperatorLabel turns an operator value like "greater_equal" into a
// readable label.
func filterOperatorLabel(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.ReplaceAll(in.String(), "_", " ")), nil
}
