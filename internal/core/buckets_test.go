package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	assert.Equal(t, []string{"africa", "america", "asia", "europe", "oceania"}, c.Keys(DimContinent))
	assert.Equal(t, []string{"0-1m", "1m-10m", "10m-100m", "100m+"}, c.Keys(DimPopulation))
	assert.Equal(t, []string{"0-10", "10-25", "25-50", "50+"}, c.Keys(DimInfantMortality))
	assert.Equal(t, []string{"0-60", "60-70", "70-80", "80+"}, c.Keys(DimLifeExpectancy))

	assert.Equal(t, "Oceanía", c.Continents[4].Label)
	assert.Equal(t, Oceania, c.Continents[4].Continent)

	top := c.Population[3]
	assert.True(t, top.Unbounded)
	assert.Equal(t, 100_000_000.0, top.Lo)
	assert.Equal(t, Bucket{Key: "1m-10m", Label: "1 M - 10 M", Lo: 1_000_000, Hi: 10_000_000}, c.Population[1])
	assert.False(t, c.LifeExpectancy[0].Unbounded)
}

func TestCatalogCriteria(t *testing.T) {
	c := DefaultCatalog()

	t.Run("nil selections impose no constraint", func(t *testing.T) {
		crit, err := c.Criteria(Selections{})
		require.NoError(t, err)
		assert.True(t, crit.Unconstrained())
	})

	t.Run("empty dimension imposes no constraint", func(t *testing.T) {
		crit, err := c.Criteria(Selections{Continent: []string{}, Population: []string{""}})
		require.NoError(t, err)
		assert.True(t, crit.Unconstrained())
	})

	t.Run("todos and all impose no constraint", func(t *testing.T) {
		crit, err := c.Criteria(Selections{
			Continent:  []string{"Todos"},
			Population: []string{"0-1m", "all"},
		})
		require.NoError(t, err)
		assert.True(t, crit.Unconstrained())
	})

	t.Run("keys resolve in catalog order", func(t *testing.T) {
		crit, err := c.Criteria(Selections{
			Continent:      []string{"europe", "africa", "europe"},
			LifeExpectancy: []string{"80+"},
		})
		require.NoError(t, err)
		assert.Equal(t, []Continent{Africa, Europe}, crit.Continent.Members())
		require.Len(t, crit.LifeExpectancy.Members(), 1)
		assert.True(t, crit.LifeExpectancy.Members()[0].Unbounded)
		assert.False(t, crit.Population.Constrained())
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := c.Criteria(Selections{InfantMortality: []string{"0-10", "9000"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownBucket))

		var bucketErr *UnknownBucketError
		require.ErrorAs(t, err, &bucketErr)
		assert.Equal(t, DimInfantMortality, bucketErr.Dimension)
		assert.Equal(t, "9000", bucketErr.Key)
	})
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "unknown continent",
			yaml: `
continent:
  - {key: atl, continent: Atlantis}
population: [{key: a, lo: 0}]
infant_mortality: [{key: a, lo: 0}]
life_expectancy: [{key: a, lo: 0}]
`,
			wantErr: `unknown continent "Atlantis"`,
		},
		{
			name: "duplicate key",
			yaml: `
continent: [{key: asia, continent: Asia}]
population: [{key: a, lo: 0, hi: 1}, {key: a, lo: 1}]
infant_mortality: [{key: a, lo: 0}]
life_expectancy: [{key: a, lo: 0}]
`,
			wantErr: `population: duplicate key "a"`,
		},
		{
			name: "inverted interval",
			yaml: `
continent: [{key: asia, continent: Asia}]
population: [{key: a, lo: 10, hi: 1}]
infant_mortality: [{key: a, lo: 0}]
life_expectancy: [{key: a, lo: 0}]
`,
			wantErr: `lo (10) must be <= hi (1)`,
		},
		{
			name: "reserved key",
			yaml: `
continent: [{key: todos, continent: Asia}]
population: [{key: a, lo: 0}]
infant_mortality: [{key: a, lo: 0}]
life_expectancy: [{key: a, lo: 0}]
`,
			wantErr: `key "todos" is reserved`,
		},
		{
			name: "empty dimension",
			yaml: `
continent: [{key: asia, continent: Asia}]
population: [{key: a, lo: 0}]
infant_mortality: [{key: a, lo: 0}]
`,
			wantErr: "life_expectancy: no buckets",
		},
		{
			name:    "unknown field",
			yaml:    "colour: red\n",
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Run("empty path returns default", func(t *testing.T) {
		c, err := LoadCatalog("")
		require.NoError(t, err)
		assert.Same(t, DefaultCatalog(), c)
	})

	t.Run("file override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "buckets.yaml")
		doc := `
continent: [{key: eu, label: Europa, continent: europe}]
population: [{key: small, lo: 0, hi: 5}, {key: big, lo: 5}]
infant_mortality: [{key: any, lo: 0}]
life_expectancy: [{key: any, lo: 0}]
`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

		c, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, Europe, c.Continents[0].Continent)
		assert.Equal(t, Bucket{Key: "big", Label: "big", Lo: 5, Unbounded: true}, c.Population[1])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
