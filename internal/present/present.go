// Package present turns filtered views into the rows and series the
// dashboard pages render.
//
// Everything here is a pure function of a core.View. Tables keep every row;
// charts skip rows whose plotted values are null.
package present

import (
	"cmp"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/worlddash/internal/core"
)

// PopulationRow is one line of the population page table.
type PopulationRow struct {
	Code       string        `json:"code"`
	Continent  string        `json:"continente"`
	Country    string        `json:"pais"`
	Population pgtype.Int8   `json:"poblacion"`
	Share      pgtype.Float8 `json:"porcentaje_mundial"`
}

// IndicatorRow is one line of the indicators page table.
type IndicatorRow struct {
	Code            string        `json:"code"`
	Continent       string        `json:"continente"`
	Country         string        `json:"pais"`
	Population      pgtype.Int8   `json:"poblacion"`
	LifeExpectancy  pgtype.Float8 `json:"esperanza_de_vida"`
	InfantMortality pgtype.Float8 `json:"mortalidad_infantil"`
}

// PopulationTable sorts by continent, then by population descending with
// nulls last.
func PopulationTable(v core.View) []PopulationRow {
	rows := make([]PopulationRow, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = PopulationRow{
			Code:       r.Code,
			Continent:  r.ContinentES,
			Country:    r.DisplayName(),
			Population: r.Population,
			Share:      r.WorldShare,
		}
	}

	col := spanish()
	slices.SortStableFunc(rows, func(a, b PopulationRow) int {
		if c := col.CompareString(a.Continent, b.Continent); c != 0 {
			return c
		}
		return descNullsLast(a.Population, b.Population)
	})
	return rows
}

// IndicatorTable sorts by continent, then by country name in Spanish
// collation order.
func IndicatorTable(v core.View) []IndicatorRow {
	rows := make([]IndicatorRow, len(v.Rows))
	for i, r := range v.Rows {
		rows[i] = IndicatorRow{
			Code:            r.Code,
			Continent:       r.ContinentES,
			Country:         r.DisplayName(),
			Population:      r.Population,
			LifeExpectancy:  r.LifeExpectancy,
			InfantMortality: r.InfantMortality,
		}
	}

	col := spanish()
	slices.SortStableFunc(rows, func(a, b IndicatorRow) int {
		if c := col.CompareString(a.Continent, b.Continent); c != 0 {
			return c
		}
		return col.CompareString(a.Country, b.Country)
	})
	return rows
}

// spanish returns a fresh collator; collators are not safe for concurrent use.
func spanish() *collate.Collator {
	return collate.New(language.Spanish)
}

func descNullsLast(a, b pgtype.Int8) int {
	switch {
	case a.Valid && b.Valid:
		return cmp.Compare(b.Int64, a.Int64)
	case a.Valid:
		return -1
	case b.Valid:
		return 1
	}
	return 0
}
