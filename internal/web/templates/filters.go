package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Option is one choice of a filter group.
type Option struct {
	Key     string
	Label   string
	Checked bool
}

// FilterGroup is one filter dimension. Multiple groups render checkboxes,
// the others radio buttons.
type FilterGroup struct {
	Name     string // query parameter
	Label    string
	Multiple bool
	Options  []Option
}

// Hidden is a fixed form field.
type Hidden struct {
	Name  string
	Value string
}

// FilterForm renders a GET form over groups.
func FilterForm(action string, groups []FilterGroup, hidden ...Hidden) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<form class="filters" method="get" action="`)
		h.text(action)
		h.raw(`">`)
		for _, f := range hidden {
			h.raw(`<input type="hidden" name="`)
			h.text(f.Name)
			h.raw(`" value="`)
			h.text(f.Value)
			h.raw(`">`)
		}
		for _, g := range groups {
			filterGroup(h, g)
		}
		h.raw(`<button type="submit">Aplicar</button></form>`)
		return h.err
	})
}

func filterGroup(h *html, g FilterGroup) {
	kind := "radio"
	if g.Multiple {
		kind = "checkbox"
	}
	h.raw(`<fieldset><legend>`)
	h.text(g.Label)
	h.raw(`</legend>`)
	for _, opt := range g.Options {
		h.raw(`<label><input type="` + kind + `" name="`)
		h.text(g.Name)
		h.raw(`" value="`)
		h.text(opt.Key)
		h.raw(`"`)
		if opt.Checked {
			h.raw(` checked`)
		}
		h.raw(`> `)
		h.text(opt.Label)
		h.raw(`</label>`)
	}
	h.raw(`</fieldset>`)
}
