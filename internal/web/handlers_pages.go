package web

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/worlddash/internal/core"
	"github.com/JonMunkholm/worlddash/internal/logging"
	"github.com/JonMunkholm/worlddash/internal/present"
	"github.com/JonMunkholm/worlddash/internal/web/templates"
)

const allLabel = "Todos"

var dimensionLabels = map[core.Dimension]string{
	core.DimContinent:       "Continente",
	core.DimPopulation:      "Población",
	core.DimInfantMortality: "Mortalidad infantil",
	core.DimLifeExpectancy:  "Esperanza de vida",
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+string(present.PagePopulation), http.StatusFound)
}

// handlePopulation renders /poblacion. Each dimension takes a single
// choice; "todos" or no value means no constraint.
func (s *Server) handlePopulation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chosen := map[core.Dimension]string{
		core.DimContinent:  q.Get(pageParams[core.DimContinent]),
		core.DimPopulation: q.Get(pageParams[core.DimPopulation]),
	}
	var sel core.Selections
	for dim, key := range chosen {
		if key == "" {
			chosen[dim] = core.SelectAll
			continue
		}
		switch dim {
		case core.DimContinent:
			sel.Continent = []string{key}
		case core.DimPopulation:
			sel.Population = []string{key}
		}
	}

	crit, err := s.catalog.Criteria(sel)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	view := s.filter(r, string(present.PagePopulation), crit)

	groups := []templates.FilterGroup{
		s.singleChoice(core.DimContinent, chosen[core.DimContinent]),
		s.singleChoice(core.DimPopulation, chosen[core.DimPopulation]),
	}
	s.render(w, r, templates.PopulationPage(templates.PopulationData{
		Version:   view.Version,
		Filters:   groups,
		Totals:    totals(view),
		Rows:      present.PopulationTable(view),
		Charts:    present.ChartsFor(present.PagePopulation, view),
		ExportURL: exportURL(sel),
	}))
}

// handleIndicators renders /indicadores. Without parameters every option
// is selected. Once the form is applied, a dimension left empty imposes no
// constraint.
func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := allSelected(s.catalog)
	if q.Has("aplicar") || pageParams.present(q) {
		sel = pageParams.selections(q)
	}

	crit, err := s.catalog.Criteria(sel)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	view := s.filter(r, string(present.PageIndicators), crit)

	groups := make([]templates.FilterGroup, 0, len(core.Dimensions))
	for _, dim := range core.Dimensions {
		groups = append(groups, s.multiChoice(dim, sel.Get(dim)))
	}
	s.render(w, r, templates.IndicatorsPage(templates.IndicatorsData{
		Version:   view.Version,
		Filters:   groups,
		Totals:    totals(view),
		Rows:      present.IndicatorTable(view),
		Charts:    present.ChartsFor(present.PageIndicators, view),
		ExportURL: exportURL(sel),
	}))
}

// options lists the catalog options of dim as unchecked form options.
func (s *Server) options(dim core.Dimension) []templates.Option {
	if dim == core.DimContinent {
		out := make([]templates.Option, len(s.catalog.Continents))
		for i, c := range s.catalog.Continents {
			out[i] = templates.Option{Key: c.Key, Label: c.Label}
		}
		return out
	}
	buckets := s.catalog.Buckets(dim)
	out := make([]templates.Option, len(buckets))
	for i, b := range buckets {
		out[i] = templates.Option{Key: b.Key, Label: b.Label}
	}
	return out
}

func (s *Server) singleChoice(dim core.Dimension, chosen string) templates.FilterGroup {
	opts := append([]templates.Option{{Key: core.SelectAll, Label: allLabel}}, s.options(dim)...)
	for i := range opts {
		opts[i].Checked = opts[i].Key == chosen
	}
	return templates.FilterGroup{Name: pageParams[dim], Label: dimensionLabels[dim], Options: opts}
}

func (s *Server) multiChoice(dim core.Dimension, chosen []string) templates.FilterGroup {
	all := contains(chosen, core.SelectAll)
	opts := s.options(dim)
	for i := range opts {
		opts[i].Checked = all || contains(chosen, opts[i].Key)
	}
	return templates.FilterGroup{Name: pageParams[dim], Label: dimensionLabels[dim], Multiple: true, Options: opts}
}

func totals(v core.View) templates.Totals {
	return templates.Totals{
		Countries:  v.Len(),
		Subtotal:   v.Subtotal,
		Total:      v.TotalPopulation,
		WorldShare: core.Share(pgtype.Int8{Int64: v.Subtotal, Valid: true}, v.TotalPopulation),
	}
}

func exportURL(sel core.Selections) string {
	if q := apiParams.encode(sel); q != "" {
		return "/api/export?" + q
	}
	return "/api/export"
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "path", r.URL.Path, "error", err)
	}
}
