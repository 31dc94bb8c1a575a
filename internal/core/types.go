// Package core provides the join and filter pipeline behind the dashboard.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/worlddash/internal/source"
)

// SourceKey identifies one of the reference sources.
type SourceKey string

const (
	SourceCountries       SourceKey = "countries"
	SourceCountriesES     SourceKey = "countries_es"
	SourcePopulation      SourceKey = "population"
	SourceInfantMortality SourceKey = "infant_mortality"
	SourceLifeExpectancy  SourceKey = "life_expectancy"
)

// SourceKeys lists every source in load order.
var SourceKeys = []SourceKey{
	SourceCountries,
	SourceCountriesES,
	SourcePopulation,
	SourceInfantMortality,
	SourceLifeExpectancy,
}

// FieldType represents the expected data type for a source column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldFloat
)

// FieldSpec defines one consumed column of a source.
type FieldSpec struct {
	Name     string    // Column header name (case-insensitive)
	Aliases  []string  // Alternative header spellings
	Type     FieldType // Expected data type
	Required bool      // Column must exist in the header
	Key      bool      // Join key: must be non-empty on every data row
}

// SourceDefinition describes the schema of one source.
type SourceDefinition struct {
	Key        SourceKey
	Label      string // Display name: "Population"
	FieldSpecs []FieldSpec
}

// Field returns the spec for a column name.
func (d SourceDefinition) Field(name string) (FieldSpec, bool) {
	for _, spec := range d.FieldSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// SourceSet holds the reference of every source.
type SourceSet struct {
	Countries       source.Ref
	CountriesES     source.Ref
	Population      source.Ref
	InfantMortality source.Ref
	LifeExpectancy  source.Ref
}

// Ref returns the reference for a source key.
func (s SourceSet) Ref(key SourceKey) source.Ref {
	switch key {
	case SourceCountries:
		return s.Countries
	case SourceCountriesES:
		return s.CountriesES
	case SourcePopulation:
		return s.Population
	case SourceInfantMortality:
		return s.InfantMortality
	case SourceLifeExpectancy:
		return s.LifeExpectancy
	}
	return source.Ref{}
}

// CacheKey identifies the set for dataset caching.
func (s SourceSet) CacheKey() string {
	parts := make([]string, len(SourceKeys))
	for i, k := range SourceKeys {
		parts[i] = string(k) + "=" + s.Ref(k).String()
	}
	return strings.Join(parts, "|")
}

// CountryMeta is one row of the English country metadata source.
type CountryMeta struct {
	Code      string
	Name      string
	Continent string
	Line      int
}

// LocalizedName is one row of the Spanish country metadata source.
// The Spanish continent column is present in the source but not consumed.
type LocalizedName struct {
	Code string
	Name string
	Line int
}

// PopulationRow is one row of the population source.
type PopulationRow struct {
	Country string
	Value   pgtype.Int8
	Line    int
}

// RateRow is one row of a float indicator source
// (infant mortality or life expectancy).
type RateRow struct {
	Country string
	Value   pgtype.Float8
	Line    int
}

// RawTables holds the typed content of all sources.
type RawTables struct {
	Countries       []CountryMeta
	CountriesES     []LocalizedName
	Population      []PopulationRow
	InfantMortality []RateRow
	LifeExpectancy  []RateRow
	Digests         map[SourceKey]string
}

// Identity is a reconciled country: codes, names and continents.
type Identity struct {
	Code        string
	Name        string
	NameES      pgtype.Text
	ContinentEN string
	Continent   Continent
	ContinentES string
}

// Country is one row of the merged table.
// Indicator fields are null when the source had no row (or an empty cell)
// for the country.
type Country struct {
	Code            string        `json:"code"`
	Name            string        `json:"name"`
	NameES          pgtype.Text   `json:"name_es"`
	ContinentEN     string        `json:"continent"`
	Continent       Continent     `json:"continent_key"`
	ContinentES     string        `json:"continente"`
	Population      pgtype.Int8   `json:"population"`
	InfantMortality pgtype.Float8 `json:"infant_mortality"`
	LifeExpectancy  pgtype.Float8 `json:"life_expectancy"`
}

// DisplayName returns the Spanish name, falling back to the English one.
func (c Country) DisplayName() string {
	if c.NameES.Valid && c.NameES.String != "" {
		return c.NameES.String
	}
	return c.Name
}

// ViewRow is a merged row plus its share of the world population.
type ViewRow struct {
	Country
	WorldShare pgtype.Float8 `json:"world_share"`
}

// View is the filtered subset of a dataset with derived columns.
type View struct {
	Version         string    `json:"version"`
	Rows            []ViewRow `json:"rows"`
	TotalPopulation int64     `json:"total_population"`
	Subtotal        int64     `json:"subtotal"`
}

// Len returns the number of rows in the view.
func (v View) Len() int {
	return len(v.Rows)
}

// Summary describes a built dataset for logs and the check command.
type Summary struct {
	Version         string
	Countries       int
	WithPopulation  int
	WithMortality   int
	WithLife        int
	TotalPopulation int64
	Unmatched       map[SourceKey]int
	LoadedAt        time.Time
	Took            time.Duration
}
