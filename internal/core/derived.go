package core

// derived.go implements the Derived Metrics.
//
// Shares are always taken against the full dataset total, so the shares of
// a filtered view sum to at most 100.

import (
	"math"

	"github.com/jackc/pgx/v5/pgtype"
)

// WorldShare returns the population of each row as a percentage of total,
// index-aligned with rows. Every share is null when total is zero.
func WorldShare(rows []Country, total int64) []pgtype.Float8 {
	shares := make([]pgtype.Float8, len(rows))
	for i, row := range rows {
		shares[i] = Share(row.Population, total)
	}
	return shares
}

// Share returns pop as a percentage of total.
// The share is null when pop is null or total is zero.
func Share(pop pgtype.Int8, total int64) pgtype.Float8 {
	if !pop.Valid || total == 0 {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: float64(pop.Int64) / float64(total) * 100, Valid: true}
}

// Derive attaches the world share to every row.
func Derive(rows []Country, total int64) []ViewRow {
	shares := WorldShare(rows, total)
	out := make([]ViewRow, len(rows))
	for i, row := range rows {
		out[i] = ViewRow{Country: row, WorldShare: shares[i]}
	}
	return out
}

// TotalPopulation sums the non-null populations of rows. Loaded counts are
// bounded so the sum fits; rows built by hand saturate at math.MaxInt64
// instead of wrapping negative.
func TotalPopulation(rows []Country) int64 {
	var total int64
	for _, row := range rows {
		if !row.Population.Valid || row.Population.Int64 <= 0 {
			continue
		}
		if row.Population.Int64 > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += row.Population.Int64
	}
	return total
}
