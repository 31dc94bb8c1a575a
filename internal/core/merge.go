package core

// merge.go implements the Dataset Merger.
//
// identity ⟕ population ⟕ infant mortality ⟕ life expectancy, each joined on
// the English country name. Every identity row survives, in order, exactly
// once. Indicator rows naming an unknown country are counted, not fatal.

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// MergeStats reports indicator rows that matched no country.
type MergeStats struct {
	Unmatched map[SourceKey]int
}

// Merge joins the indicator tables onto the identity table.
func Merge(ids []Identity, pop []PopulationRow, infant, life []RateRow) ([]Country, MergeStats, error) {
	stats := MergeStats{Unmatched: make(map[SourceKey]int)}

	popIdx, err := indexPopulation(pop)
	if err != nil {
		return nil, stats, err
	}
	infantIdx, err := indexRates(SourceInfantMortality, infant)
	if err != nil {
		return nil, stats, err
	}
	lifeIdx, err := indexRates(SourceLifeExpectancy, life)
	if err != nil {
		return nil, stats, err
	}

	known := make(map[string]bool, len(ids))
	rows := make([]Country, len(ids))
	for i, id := range ids {
		known[id.Name] = true
		rows[i] = Country{
			Code:            id.Code,
			Name:            id.Name,
			NameES:          id.NameES,
			ContinentEN:     id.ContinentEN,
			Continent:       id.Continent,
			ContinentES:     id.ContinentES,
			Population:      popIdx[id.Name],
			InfantMortality: infantIdx[id.Name],
			LifeExpectancy:  lifeIdx[id.Name],
		}
	}

	for name := range popIdx {
		if !known[name] {
			stats.Unmatched[SourcePopulation]++
		}
	}
	for name := range infantIdx {
		if !known[name] {
			stats.Unmatched[SourceInfantMortality]++
		}
	}
	for name := range lifeIdx {
		if !known[name] {
			stats.Unmatched[SourceLifeExpectancy]++
		}
	}

	return rows, stats, nil
}

func indexPopulation(rows []PopulationRow) (map[string]pgtype.Int8, error) {
	if err := checkUnique(SourcePopulation, "Country", len(rows), func(i int) (string, int) {
		return rows[i].Country, rows[i].Line
	}); err != nil {
		return nil, err
	}
	idx := make(map[string]pgtype.Int8, len(rows))
	for _, r := range rows {
		idx[r.Country] = r.Value
	}
	return idx, nil
}

func indexRates(src SourceKey, rows []RateRow) (map[string]pgtype.Float8, error) {
	if err := checkUnique(src, "Country", len(rows), func(i int) (string, int) {
		return rows[i].Country, rows[i].Line
	}); err != nil {
		return nil, err
	}
	idx := make(map[string]pgtype.Float8, len(rows))
	for _, r := range rows {
		idx[r.Country] = r.Value
	}
	return idx, nil
}
