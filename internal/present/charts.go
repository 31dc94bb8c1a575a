package present

import (
	"github.com/JonMunkholm/worlddash/internal/core"
)

// Page names a dashboard page.
type Page string

const (
	PagePopulation Page = "poblacion"
	PageIndicators Page = "indicadores"
)

// ParsePage validates a page name.
func ParsePage(s string) (Page, bool) {
	switch p := Page(s); p {
	case PagePopulation, PageIndicators:
		return p, true
	}
	return "", false
}

// TreemapNode is one leaf of the continent/country treemap.
type TreemapNode struct {
	Continent  string  `json:"continente"`
	Country    string  `json:"pais"`
	Population int64   `json:"poblacion"`
	Share      float64 `json:"porcentaje_mundial"`
}

// GeoPoint is one marker of the world map, sized by population.
type GeoPoint struct {
	Code       string `json:"code"`
	Country    string `json:"pais"`
	Continent  string `json:"continente"`
	Population int64  `json:"poblacion"`
}

// ScatterPoint plots infant mortality against life expectancy.
type ScatterPoint struct {
	Country         string  `json:"pais"`
	Continent       string  `json:"continente"`
	InfantMortality float64 `json:"mortalidad_infantil"`
	LifeExpectancy  float64 `json:"esperanza_de_vida"`
	Population      int64   `json:"poblacion"`
}

// Charts holds the series of one page.
type Charts struct {
	Page    Page           `json:"page"`
	Version string         `json:"version"`
	Treemap []TreemapNode  `json:"treemap,omitempty"`
	Geo     []GeoPoint     `json:"geo"`
	Scatter []ScatterPoint `json:"scatter,omitempty"`
}

// ChartsFor builds the series a page draws. The population page has a
// treemap, the indicators page a scatter plot; both have a map.
func ChartsFor(page Page, v core.View) Charts {
	c := Charts{Page: page, Version: v.Version, Geo: Geo(v)}
	switch page {
	case PagePopulation:
		c.Treemap = Treemap(v)
	case PageIndicators:
		c.Scatter = Scatter(v)
	}
	return c
}

// Treemap returns a node per row with a population.
func Treemap(v core.View) []TreemapNode {
	nodes := make([]TreemapNode, 0, len(v.Rows))
	for _, r := range v.Rows {
		if !r.Population.Valid {
			continue
		}
		nodes = append(nodes, TreemapNode{
			Continent:  r.ContinentES,
			Country:    r.DisplayName(),
			Population: r.Population.Int64,
			Share:      r.WorldShare.Float64,
		})
	}
	return nodes
}

// Geo returns a map marker per row with a population.
func Geo(v core.View) []GeoPoint {
	points := make([]GeoPoint, 0, len(v.Rows))
	for _, r := range v.Rows {
		if !r.Population.Valid {
			continue
		}
		points = append(points, GeoPoint{
			Code:       r.Code,
			Country:    r.DisplayName(),
			Continent:  r.ContinentES,
			Population: r.Population.Int64,
		})
	}
	return points
}

// Scatter returns a point per row with both rates. Population sizes the
// marker and is zero when unknown.
func Scatter(v core.View) []ScatterPoint {
	points := make([]ScatterPoint, 0, len(v.Rows))
	for _, r := range v.Rows {
		if !r.InfantMortality.Valid || !r.LifeExpectancy.Valid {
			continue
		}
		points = append(points, ScatterPoint{
			Country:         r.DisplayName(),
			Continent:       r.ContinentES,
			InfantMortality: r.InfantMortality.Float64,
			LifeExpectancy:  r.LifeExpectancy.Float64,
			Population:      r.Population.Int64,
		})
	}
	return points
}
