package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgtype"
)

func mergeIdentities() []Identity {
	return []Identity{
		{Code: "ESP", Name: "Spain", NameES: pgtype.Text{String: "España", Valid: true},
			ContinentEN: "Europe", Continent: Europe, ContinentES: "Europa"},
		{Code: "KEN", Name: "Kenya", ContinentEN: "Africa", Continent: Africa, ContinentES: "África"},
		{Code: "XKX", Name: "Kosovo", ContinentEN: "Europe", Continent: Europe, ContinentES: "Europa"},
	}
}

func TestMerge(t *testing.T) {
	population := []PopulationRow{
		{Country: "Kenya", Value: pop(53_000_000), Line: 2},
		{Country: "Spain", Value: pop(47_000_000), Line: 3},
		{Country: "World", Value: pop(7_900_000_000), Line: 4},
	}
	infant := []RateRow{
		{Country: "Spain", Value: rate(2.5), Line: 2},
		{Country: "Kenya", Value: pgtype.Float8{}, Line: 3},
	}
	life := []RateRow{
		{Country: "Kenya", Value: rate(61.4), Line: 2},
		{Country: "Atlantis", Value: rate(99), Line: 3},
		{Country: "Lemuria", Value: rate(98), Line: 4},
	}

	got, stats, err := Merge(mergeIdentities(), population, infant, life)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}

	want := []Country{
		{Code: "ESP", Name: "Spain", NameES: pgtype.Text{String: "España", Valid: true},
			ContinentEN: "Europe", Continent: Europe, ContinentES: "Europa",
			Population: pop(47_000_000), InfantMortality: rate(2.5)},
		{Code: "KEN", Name: "Kenya", ContinentEN: "Africa", Continent: Africa, ContinentES: "África",
			Population: pop(53_000_000), LifeExpectancy: rate(61.4)},
		{Code: "XKX", Name: "Kosovo", ContinentEN: "Europe", Continent: Europe, ContinentES: "Europa"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}

	wantStats := map[SourceKey]int{SourcePopulation: 1, SourceLifeExpectancy: 2}
	if diff := cmp.Diff(wantStats, stats.Unmatched); diff != "" {
		t.Errorf("Unmatched mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeJoinCompleteness(t *testing.T) {
	ids := mergeIdentities()
	got, _, err := Merge(ids, nil, nil, nil)
	if err != nil {
		t.Fatalf("Merge() error = %v", err)
	}
	if len(got) != len(ids) {
		t.Fatalf("len(Merge()) = %d, want %d", len(got), len(ids))
	}
	for i, row := range got {
		if row.Code != ids[i].Code {
			t.Errorf("row %d code = %q, want %q", i, row.Code, ids[i].Code)
		}
		if row.Population.Valid || row.InfantMortality.Valid || row.LifeExpectancy.Valid {
			t.Errorf("row %s has indicator values, want all null", row.Code)
		}
	}
}

func TestMergeDuplicateIndicator(t *testing.T) {
	tests := []struct {
		name   string
		pop    []PopulationRow
		infant []RateRow
		life   []RateRow
		source SourceKey
	}{
		{
			name: "population",
			pop: []PopulationRow{
				{Country: "Spain", Value: pop(1), Line: 2},
				{Country: "Spain", Value: pop(2), Line: 3},
			},
			source: SourcePopulation,
		},
		{
			name: "infant mortality",
			infant: []RateRow{
				{Country: "Kenya", Value: rate(1), Line: 2},
				{Country: "Kenya", Value: rate(1), Line: 7},
			},
			source: SourceInfantMortality,
		},
		{
			name: "life expectancy",
			life: []RateRow{
				{Country: "Kosovo", Value: rate(70), Line: 2},
				{Country: "Kosovo", Value: rate(71), Line: 3},
			},
			source: SourceLifeExpectancy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Merge(mergeIdentities(), tt.pop, tt.infant, tt.life)
			var jerr *JoinIntegrityError
			if !errors.As(err, &jerr) {
				t.Fatalf("Merge() error = %v, want *JoinIntegrityError", err)
			}
			if jerr.Source != tt.source {
				t.Errorf("Source = %s, want %s", jerr.Source, tt.source)
			}
		})
	}
}
