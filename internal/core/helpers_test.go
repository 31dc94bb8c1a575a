package core

import (
	"github.com/jackc/pgx/v5/pgtype"
)

func pop(n int64) pgtype.Int8 { return pgtype.Int8{Int64: n, Valid: true} }

func rate(f float64) pgtype.Float8 { return pgtype.Float8{Float64: f, Valid: true} }

// country builds a merged row with the continent fields filled in.
func country(code string, cont Continent, p pgtype.Int8, infant, life pgtype.Float8) Country {
	return Country{
		Code:            code,
		Name:            code,
		ContinentEN:     string(cont),
		Continent:       cont,
		ContinentES:     cont.Spanish(),
		Population:      p,
		InfantMortality: infant,
		LifeExpectancy:  life,
	}
}

func codes(rows []Country) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Code
	}
	return out
}

func viewCodes(v View) []string {
	out := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = r.Code
	}
	return out
}

// sampleRows is a small table covering every continent, a null row and
// values on bucket edges.
func sampleRows() []Country {
	return []Country{
		country("ESP", Europe, pop(47_000_000), rate(2.5), rate(83.2)),
		country("NGA", Africa, pop(213_000_000), rate(72.2), rate(52.7)),
		country("BRA", America, pop(214_000_000), rate(12.8), rate(72.8)),
		country("IND", Asia, pop(1_400_000_000), rate(25), rate(70)),
		country("FJI", Oceania, pop(900_000), rate(21.6), rate(67.1)),
		country("ISL", Europe, pop(10_000_000), rate(1.5), rate(80)),
		country("XKX", Europe, pgtype.Int8{}, pgtype.Float8{}, pgtype.Float8{}),
	}
}
