// Package templates renders the dashboard pages as templ components.
package templates

import (
	"context"
	"encoding/json"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/worlddash/internal/present"
)

// html writes markup and remembers the first write error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

// text writes s escaped for element content or a quoted attribute.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

// data embeds v as a JSON data block readable by dashboard.js.
// encoding/json escapes <, > and & so the payload cannot close the tag.
func (h *html) data(id string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		if h.err == nil {
			h.err = err
		}
		return
	}
	h.raw(`<script type="application/json" id="`)
	h.text(id)
	h.raw(`">`)
	h.raw(string(b))
	h.raw(`</script>`)
}

var navItems = []struct {
	page  present.Page
	label string
}{
	{present.PagePopulation, "Población"},
	{present.PageIndicators, "Indicadores"},
}

// Layout wraps body in the page chrome. active highlights a nav entry and
// may be empty.
func Layout(title string, active present.Page, version string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(` · Indicadores mundiales</title>`)
		h.raw(`<link rel="stylesheet" href="/static/dashboard.css">`)
		h.raw(`<script src="/static/dashboard.js" defer></script></head><body>`)

		h.raw(`<header><nav>`)
		for _, item := range navItems {
			h.raw(`<a href="/`)
			h.text(string(item.page))
			h.raw(`"`)
			if item.page == active {
				h.raw(` class="active" aria-current="page"`)
			}
			h.raw(`>`)
			h.text(item.label)
			h.raw(`</a>`)
		}
		h.raw(`</nav></header><main>`)
		h.render(ctx, body)
		h.raw(`</main>`)
		if version != "" {
			h.raw(`<footer>Datos `)
			h.text(version)
			h.raw(`</footer>`)
		}
		h.raw(`</body></html>`)
		return h.err
	})
}
