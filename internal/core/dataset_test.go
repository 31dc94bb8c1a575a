package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/worlddash/internal/core"
)

func TestVersionIsContentDerived(t *testing.T) {
	a := map[core.SourceKey]string{core.SourceCountries: "aa", core.SourcePopulation: "bb"}
	b := map[core.SourceKey]string{core.SourcePopulation: "bb", core.SourceCountries: "aa"}
	c := map[core.SourceKey]string{core.SourceCountries: "aa", core.SourcePopulation: "cc"}

	assert.Equal(t, core.Version(a), core.Version(b))
	assert.NotEqual(t, core.Version(a), core.Version(c))

	id, err := uuid.Parse(core.Version(a))
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())
}

func TestDatasetAccessors(t *testing.T) {
	rows := []core.Country{
		{Code: "A", Continent: core.Asia, Population: pgtype.Int8{Int64: 10, Valid: true},
			InfantMortality: pgtype.Float8{Float64: 30, Valid: true}},
		{Code: "B", Continent: core.Asia, Population: pgtype.Int8{Int64: 40, Valid: true},
			LifeExpectancy: pgtype.Float8{Float64: 81, Valid: true}},
		{Code: "C", Continent: core.Europe},
	}
	ds := core.NewDataset(rows, nil, core.MergeStats{Unmatched: map[core.SourceKey]int{core.SourcePopulation: 2}})

	rows[0].Code = "changed"
	got := ds.Rows()
	assert.Equal(t, "A", got[0].Code, "dataset keeps its own copy")
	got[1].Code = "changed"
	assert.Equal(t, "B", ds.Rows()[1].Code, "Rows returns a copy")

	assert.Equal(t, int64(50), ds.TotalPopulation())
	assert.Equal(t, pgtype.Int8{Int64: 40, Valid: true}, ds.MaxPopulation())
	assert.Equal(t, 30.0, ds.MaxInfantMortality().Float64)
	assert.Equal(t, 81.0, ds.MaxLifeExpectancy().Float64)

	s := ds.Summary()
	assert.Equal(t, 3, s.Countries)
	assert.Equal(t, 2, s.WithPopulation)
	assert.Equal(t, 1, s.WithMortality)
	assert.Equal(t, 1, s.WithLife)
	assert.Equal(t, 2, s.Unmatched[core.SourcePopulation])
}

func TestDatasetFilterSharesUseFullTotal(t *testing.T) {
	ds, err := core.Build(context.Background(), core.NewLoader(&memReader{sheets: worldSheets()}), memSet())
	require.NoError(t, err)

	crit, err := core.DefaultCatalog().Criteria(core.Selections{Continent: []string{"europe"}})
	require.NoError(t, err)

	view := ds.Filter(crit)
	require.Equal(t, 1, view.Len())
	assert.Equal(t, ds.Version(), view.Version)
	assert.Equal(t, int64(226_000_000), view.TotalPopulation)
	assert.Equal(t, int64(47_000_000), view.Subtotal)
	assert.InDelta(t, 47.0/226.0*100, view.Rows[0].WorldShare.Float64, 1e-9)
}

func TestBuildIntegrityErrors(t *testing.T) {
	t.Run("duplicate indicator row", func(t *testing.T) {
		sheets := worldSheets()
		sheets["infant"].Rows = append(sheets["infant"].Rows, []string{"Spain", "3"})
		_, err := core.Build(context.Background(), core.NewLoader(&memReader{sheets: sheets}), memSet())
		require.ErrorIs(t, err, core.ErrJoinIntegrity)
	})

	t.Run("unknown continent", func(t *testing.T) {
		sheets := worldSheets()
		sheets["countries"].Rows[2] = []string{"KEN", "Kenya", "Antarctica"}
		_, err := core.Build(context.Background(), core.NewLoader(&memReader{sheets: sheets}), memSet())
		require.ErrorIs(t, err, core.ErrLookupMiss)
	})
}

type countingObserver struct {
	mu     sync.Mutex
	builds int
	errs   int
}

func (o *countingObserver) ObserveBuild(_ time.Duration, _ int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.builds++
	if err != nil {
		o.errs++
	}
}

func TestCacheBuildsOnceUnderConcurrency(t *testing.T) {
	r := &memReader{sheets: worldSheets(), block: make(chan struct{})}
	obs := &countingObserver{}
	cache := core.NewCache(core.NewLoader(r), core.WithBuildObserver(obs))

	const callers = 16
	results := make([]*core.Dataset, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := cache.Get(context.Background(), memSet())
			assert.NoError(t, err)
			results[i] = ds
		}()
	}

	require.Eventually(t, func() bool { return r.reads.Load() == int32(len(core.SourceKeys)) },
		time.Second, time.Millisecond)
	close(r.block)
	wg.Wait()

	assert.Equal(t, int32(len(core.SourceKeys)), r.reads.Load(), "sources are read by one build only")
	for _, ds := range results {
		assert.Same(t, results[0], ds)
	}
	assert.Equal(t, 1, obs.builds)
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	sheets := worldSheets()
	life := sheets["life"]
	delete(sheets, "life")
	r := &memReader{sheets: sheets}
	obs := &countingObserver{}
	cache := core.NewCache(core.NewLoader(r), core.WithBuildObserver(obs))

	_, err := cache.Get(context.Background(), memSet())
	require.ErrorIs(t, err, core.ErrSourceLoad)

	r.mu.Lock()
	r.sheets["life"] = life
	r.mu.Unlock()

	ds, err := cache.Get(context.Background(), memSet())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, 2, obs.builds)
	assert.Equal(t, 1, obs.errs)
}

func TestCacheForget(t *testing.T) {
	r := &memReader{sheets: worldSheets()}
	cache := core.NewCache(core.NewLoader(r))

	first, err := cache.Get(context.Background(), memSet())
	require.NoError(t, err)
	again, err := cache.Get(context.Background(), memSet())
	require.NoError(t, err)
	assert.Same(t, first, again)

	cache.Forget(memSet())
	rebuilt, err := cache.Get(context.Background(), memSet())
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
	assert.Equal(t, first.Version(), rebuilt.Version(), "same content, same version")
	assert.Equal(t, int32(2*len(core.SourceKeys)), r.reads.Load())
}

func TestCacheCallerCancel(t *testing.T) {
	r := &memReader{sheets: worldSheets(), block: make(chan struct{})}
	cache := core.NewCache(core.NewLoader(r))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx, memSet())
		errc <- err
	}()

	require.Eventually(t, func() bool { return r.reads.Load() > 0 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	close(r.block)
	ds, err := cache.Get(context.Background(), memSet())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
}
