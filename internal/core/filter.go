package core

// filter.go implements the Filter Engine.
//
// A row passes a dimension when it matches ANY selected member of that
// dimension, and passes the engine when it passes EVERY dimension. Each
// dimension is a tagged Constraint: NoConstraint matches everything
// (including nulls), OneOf matches its members only, and OneOf with no
// members matches nothing.

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Dimension names one axis of filtering.
type Dimension string

const (
	DimContinent       Dimension = "continent"
	DimPopulation      Dimension = "population"
	DimInfantMortality Dimension = "infant_mortality"
	DimLifeExpectancy  Dimension = "life_expectancy"
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{DimContinent, DimPopulation, DimInfantMortality, DimLifeExpectancy}

// Constraint is the selection of one dimension.
// The zero value is NoConstraint.
type Constraint[T any] struct {
	constrained bool
	members     []T
}

// NoConstraint returns a constraint that matches every row.
func NoConstraint[T any]() Constraint[T] {
	return Constraint[T]{}
}

// OneOf returns a constraint matching rows that match any member.
// OneOf() with no members matches no row.
func OneOf[T any](members ...T) Constraint[T] {
	return Constraint[T]{constrained: true, members: append([]T(nil), members...)}
}

// Constrained reports whether the constraint restricts rows at all.
func (c Constraint[T]) Constrained() bool {
	return c.constrained
}

// Members returns a copy of the selected members.
func (c Constraint[T]) Members() []T {
	return append([]T(nil), c.members...)
}

// matches reports whether any member satisfies pred.
func (c Constraint[T]) matches(pred func(T) bool) bool {
	if !c.constrained {
		return true
	}
	for _, m := range c.members {
		if pred(m) {
			return true
		}
	}
	return false
}

// Bucket is a named closed interval [Lo, Hi].
// An Unbounded bucket has no upper limit; over a given table it is the
// same as using the column maximum as Hi.
type Bucket struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Lo        float64 `json:"lo"`
	Hi        float64 `json:"hi,omitempty"`
	Unbounded bool    `json:"unbounded,omitempty"`
}

// Contains reports whether v lies in the closed interval.
// Both edges are inclusive, so a value on a shared edge belongs to both
// adjoining buckets.
func (b Bucket) Contains(v float64) bool {
	if v < b.Lo {
		return false
	}
	return b.Unbounded || v <= b.Hi
}

// Criteria is the full set of active filters.
// The zero value matches every row.
type Criteria struct {
	Continent       Constraint[Continent]
	Population      Constraint[Bucket]
	InfantMortality Constraint[Bucket]
	LifeExpectancy  Constraint[Bucket]
}

// Unconstrained reports whether no dimension restricts rows.
func (c Criteria) Unconstrained() bool {
	return !c.Continent.Constrained() &&
		!c.Population.Constrained() &&
		!c.InfantMortality.Constrained() &&
		!c.LifeExpectancy.Constrained()
}

// Match reports whether a row passes every dimension.
func (c Criteria) Match(row Country) bool {
	return c.Continent.matches(func(k Continent) bool { return row.Continent == k }) &&
		matchCount(c.Population, row.Population) &&
		matchRate(c.InfantMortality, row.InfantMortality) &&
		matchRate(c.LifeExpectancy, row.LifeExpectancy)
}

// matchCount evaluates a numeric dimension on a nullable count.
// Null never satisfies a bucket.
func matchCount(c Constraint[Bucket], v pgtype.Int8) bool {
	if !c.Constrained() {
		return true
	}
	if !v.Valid {
		return false
	}
	f := float64(v.Int64)
	return c.matches(func(b Bucket) bool { return b.Contains(f) })
}

func matchRate(c Constraint[Bucket], v pgtype.Float8) bool {
	if !c.Constrained() {
		return true
	}
	if !v.Valid {
		return false
	}
	return c.matches(func(b Bucket) bool { return b.Contains(v.Float64) })
}

// Filter returns the rows passing criteria, in input order.
// The input slice is not modified.
func Filter(rows []Country, criteria Criteria) []Country {
	out := make([]Country, 0, len(rows))
	for _, row := range rows {
		if criteria.Match(row) {
			out = append(out, row)
		}
	}
	return out
}
