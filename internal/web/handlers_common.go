package web

// handlers_common.go holds query parsing and response helpers shared by
// the page and API handlers.

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/JonMunkholm/worlddash/internal/core"
	"github.com/JonMunkholm/worlddash/internal/logging"
)

// paramNames maps filter dimensions to query parameter names.
type paramNames map[core.Dimension]string

// Pages use Spanish parameter names, the API English ones.
var (
	pageParams = paramNames{
		core.DimContinent:       "continente",
		core.DimPopulation:      "poblacion",
		core.DimInfantMortality: "mortalidad",
		core.DimLifeExpectancy:  "esperanza",
	}
	apiParams = paramNames{
		core.DimContinent:       "continent",
		core.DimPopulation:      "population",
		core.DimInfantMortality: "mortality",
		core.DimLifeExpectancy:  "life",
	}
)

// selections reads every dimension from q. Parameters may repeat and each
// value may hold a comma-separated list.
func (p paramNames) selections(q url.Values) core.Selections {
	return core.Selections{
		Continent:       queryList(q, p[core.DimContinent]),
		Population:      queryList(q, p[core.DimPopulation]),
		InfantMortality: queryList(q, p[core.DimInfantMortality]),
		LifeExpectancy:  queryList(q, p[core.DimLifeExpectancy]),
	}
}

// present reports whether q names any dimension.
func (p paramNames) present(q url.Values) bool {
	for _, dim := range core.Dimensions {
		if q.Has(p[dim]) {
			return true
		}
	}
	return false
}

// encode writes sel back as query parameters. Dimensions without keys are
// left out.
func (p paramNames) encode(sel core.Selections) string {
	q := url.Values{}
	for _, dim := range core.Dimensions {
		for _, key := range sel.Get(dim) {
			q.Add(p[dim], key)
		}
	}
	return q.Encode()
}

func queryList(q url.Values, name string) []string {
	var out []string
	for _, v := range q[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// allSelected selects every catalog option of every dimension.
func allSelected(c *core.Catalog) core.Selections {
	return core.Selections{
		Continent:       c.Keys(core.DimContinent),
		Population:      c.Keys(core.DimPopulation),
		InfantMortality: c.Keys(core.DimInfantMortality),
		LifeExpectancy:  c.Keys(core.DimLifeExpectancy),
	}
}

// filter evaluates criteria against the dataset and records the request.
func (s *Server) filter(r *http.Request, view string, crit core.Criteria) core.View {
	start := time.Now()
	v := s.dataset.Filter(crit)
	took := time.Since(start)

	s.metrics.ObserveFilter(view, took, v.Len())
	logging.FromContext(r.Context()).Debug("filter applied",
		"view", view,
		"rows", v.Len(),
		"unconstrained", crit.Unconstrained(),
		"took", took,
	)
	return v
}

// etagMatch implements If-None-Match comparison for a strong ETag.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func contains(keys []string, key string) bool {
	return slices.Contains(keys, key)
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
