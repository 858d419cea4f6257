package components

import "strings"

// DefaultVisibleOptions is how many options a categorical selection shows
// before the show-more expansion.
const DefaultVisibleOptions = 5

// Selection is the interactive state of a categorical (object-typed) field:
// a searchable multi-select list with a show-more threshold and an explicit
// apply action. Applying an empty selection means "remove this field's
// filter"; the component layer surfaces that as an empty value and leaves the
// deletion to the caller.
type Selection struct {
	widget  *Widget
	options []Option

	query    string
	selected map[string]bool
	order    []string
	expanded bool
	visible  int
}

// NewSelection builds the selection state for a multi-choice widget, seeding
// any current value from the spec.
func NewSelection(w *Widget) *Selection {
	s := &Selection{
		widget:   w,
		options:  append([]Option(nil), w.Spec.Config.Options...),
		selected: make(map[string]bool),
		visible:  DefaultVisibleOptions,
	}
	switch current := w.Value().(type) {
	case []string:
		for _, v := range current {
			s.add(v)
		}
	case []any:
		for _, v := range current {
			if str, ok := v.(string); ok {
				s.add(str)
			}
		}
	}
	return s
}

// Search filters the visible options by a case-insensitive substring match.
func (s *Selection) Search(query string) {
	s.query = strings.TrimSpace(query)
}

// ShowMore reveals the full option list.
func (s *Selection) ShowMore() { s.expanded = true }

// Expanded reports whether the full list is revealed.
func (s *Selection) Expanded() bool { return s.expanded }

// HiddenCount returns how many matching options the threshold currently
// hides. Zero once expanded.
func (s *Selection) HiddenCount() int {
	if s.expanded {
		return 0
	}
	matches := len(s.matching())
	if matches <= s.visible {
		return 0
	}
	return matches - s.visible
}

// VisibleOptions returns the options to display: all matches when expanded or
// searching within the threshold, otherwise the first few up to the
// threshold.
func (s *Selection) VisibleOptions() []Option {
	matches := s.matching()
	if s.expanded || len(matches) <= s.visible {
		return matches
	}
	return matches[:s.visible]
}

// Toggle flips a value in or out of the selection.
func (s *Selection) Toggle(value string) {
	if s.selected[value] {
		delete(s.selected, value)
		for i, v := range s.order {
			if v == value {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return
	}
	s.add(value)
}

// Selected returns the selected values in selection order.
func (s *Selection) Selected() []string {
	return append([]string(nil), s.order...)
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool { return len(s.order) == 0 }

// Apply commits the selection through the widget's change callback. An empty
// selection is reported as an empty slice so the caller can translate it into
// a filter removal instead of an empty filter.
func (s *Selection) Apply() {
	s.widget.SetValue(s.Selected())
}

func (s *Selection) add(value string) {
	if s.selected[value] {
		return
	}
	s.selected[value] = true
	s.order = append(s.order, value)
}

func (s *Selection) matching() []Option {
	if s.query == "" {
		return s.options
	}
	needle := strings.ToLower(s.query)
	var out []Option
	for _, opt := range s.options {
		if strings.Contains(strings.ToLower(opt.Value), needle) ||
			strings.Contains(strings.ToLower(opt.Label), needle) {
			out = append(out, opt)
		}
	}
	return out
}
