package core

import (
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldShareSumsToHundred(t *testing.T) {
	rows := sampleRows()
	total := TotalPopulation(rows)

	var sum float64
	for _, s := range WorldShare(rows, total) {
		if s.Valid {
			sum += s.Float64
		}
	}
	assert.InDelta(t, 100, sum, 1e-6)
}

func TestWorldShareSubsetAtMostHundred(t *testing.T) {
	rows := sampleRows()
	total := TotalPopulation(rows)
	subset := Filter(rows, Criteria{Continent: OneOf(Europe, Oceania)})

	var sum float64
	for _, s := range WorldShare(subset, total) {
		if s.Valid {
			sum += s.Float64
		}
	}
	assert.Less(t, sum, 100.0)
	assert.Greater(t, sum, 0.0)
}

func TestWorldShareZeroTotal(t *testing.T) {
	rows := []Country{
		country("A", Asia, pop(0), pgtype.Float8{}, pgtype.Float8{}),
		country("B", Asia, pgtype.Int8{}, pgtype.Float8{}, pgtype.Float8{}),
	}

	shares := WorldShare(rows, TotalPopulation(rows))
	require.Len(t, shares, 2)
	for _, s := range shares {
		assert.False(t, s.Valid)
	}
}

func TestShareNullPopulation(t *testing.T) {
	assert.False(t, Share(pgtype.Int8{}, 100).Valid)
	assert.Equal(t, pgtype.Float8{Float64: 25, Valid: true}, Share(pop(25), 100))
}

func TestDeriveKeepsRows(t *testing.T) {
	rows := sampleRows()
	out := Derive(rows, TotalPopulation(rows))
	require.Len(t, out, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i], out[i].Country)
	}
	assert.False(t, out[len(out)-1].WorldShare.Valid, "null population has a null share")
}

func TestTotalPopulation(t *testing.T) {
	tests := []struct {
		name string
		rows []Country
		want int64
	}{
		{"empty", nil, 0},
		{"skips nulls", []Country{
			country("AAA", Europe, pop(10), rate(1), rate(70)),
			country("BBB", Asia, pgtype.Int8{}, rate(1), rate(70)),
			country("CCC", Africa, pop(5), rate(1), rate(70)),
		}, 15},
		{"saturates instead of wrapping", []Country{
			country("AAA", Europe, pop(math.MaxInt64-1), rate(1), rate(70)),
			country("BBB", Asia, pop(math.MaxInt64-1), rate(1), rate(70)),
		}, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalPopulation(tt.rows)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}
