package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/worlddash/internal/present"
)

// Totals summarizes a filtered view.
type Totals struct {
	Countries  int
	Subtotal   int64
	Total      int64
	WorldShare pgtype.Float8
}

// PopulationData feeds the population page.
type PopulationData struct {
	Version   string
	Filters   []FilterGroup
	Totals    Totals
	Rows      []present.PopulationRow
	Charts    present.Charts
	ExportURL string
}

// IndicatorsData feeds the indicators page.
type IndicatorsData struct {
	Version   string
	Filters   []FilterGroup
	Totals    Totals
	Rows      []present.IndicatorRow
	Charts    present.Charts
	ExportURL string
}

// PopulationPage renders /poblacion.
func PopulationPage(d PopulationData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<h1>Población mundial</h1>`)
		h.render(ctx, FilterForm("/poblacion", d.Filters))
		totals(h, d.Totals, d.ExportURL)

		h.raw(`<section class="charts"><div class="chart" id="treemap" data-chart="treemap"></div>`)
		h.raw(`<div class="chart" id="geo" data-chart="geo"></div></section>`)
		h.data("chart-data", d.Charts)

		h.raw(`<table><thead><tr><th>Continente</th><th>País</th>`)
		h.raw(`<th class="num">Población</th><th class="num">% mundial</th></tr></thead><tbody>`)
		for _, r := range d.Rows {
			h.raw(`<tr><td>`)
			h.text(r.Continent)
			h.raw(`</td><td>`)
			h.text(r.Country)
			h.raw(`</td><td class="num">`)
			h.text(present.Integer(r.Population))
			h.raw(`</td><td class="num">`)
			h.text(present.Percent(r.Share))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
	return Layout("Población", present.PagePopulation, d.Version, body)
}

// IndicatorsPage renders /indicadores.
func IndicatorsPage(d IndicatorsData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<h1>Indicadores de salud</h1>`)
		h.render(ctx, FilterForm("/indicadores", d.Filters, Hidden{Name: "aplicar", Value: "1"}))
		totals(h, d.Totals, d.ExportURL)

		h.raw(`<section class="charts"><div class="chart" id="scatter" data-chart="scatter"></div>`)
		h.raw(`<div class="chart" id="geo" data-chart="geo"></div></section>`)
		h.data("chart-data", d.Charts)

		h.raw(`<table><thead><tr><th>Continente</th><th>País</th><th class="num">Población</th>`)
		h.raw(`<th class="num">Esperanza de vida</th><th class="num">Mortalidad infantil</th></tr></thead><tbody>`)
		for _, r := range d.Rows {
			h.raw(`<tr><td>`)
			h.text(r.Continent)
			h.raw(`</td><td>`)
			h.text(r.Country)
			h.raw(`</td><td class="num">`)
			h.text(present.Integer(r.Population))
			h.raw(`</td><td class="num">`)
			h.text(present.Decimal(r.LifeExpectancy, 1))
			h.raw(`</td><td class="num">`)
			h.text(present.Decimal(r.InfantMortality, 1))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
	return Layout("Indicadores", present.PageIndicators, d.Version, body)
}

func totals(h *html, t Totals, exportURL string) {
	h.raw(`<p class="totals"><strong>`)
	h.text(strconv.Itoa(t.Countries))
	h.raw(`</strong> países · población `)
	h.text(present.Integer(pgtype.Int8{Int64: t.Subtotal, Valid: true}))
	h.raw(` · `)
	h.text(present.Percent(t.WorldShare))
	h.raw(` mundial`)
	if exportURL != "" {
		h.raw(` · <a href="`)
		h.text(exportURL)
		h.raw(`" download>Descargar CSV</a>`)
	}
	h.raw(`</p>`)
}

// ErrorPage renders a user-facing error.
func ErrorPage(status int, message, action, code string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="error" role="alert"><h1>`)
		h.text(strconv.Itoa(status))
		h.raw(`</h1><p>`)
		h.text(message)
		h.raw(`</p>`)
		if action != "" {
			h.raw(`<p class="action">`)
			h.text(action)
			h.raw(`</p>`)
		}
		h.raw(`<p class="code">Código: `)
		h.text(code)
		h.raw(`</p></div>`)
		return h.err
	})
	return Layout("Error", "", "", body)
}
