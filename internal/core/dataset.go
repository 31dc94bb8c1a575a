package core

// dataset.go holds the immutable Merged Table and the build-once cache.

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/singleflight"
)

// versionNamespace scopes dataset version ids.
var versionNamespace = uuid.MustParse("6f1c2a52-93d4-4b8e-9a55-0c7de1f0b8a3")

// Dataset is the Merged Table. It is never modified after construction and
// is safe for concurrent use.
type Dataset struct {
	version  string
	rows     []Country
	total    int64
	maxPop   pgtype.Int8
	maxInf   pgtype.Float8
	maxLife  pgtype.Float8
	stats    MergeStats
	loadedAt time.Time
	took     time.Duration
}

// NewDataset wraps merged rows. The version is derived from the source
// digests, so identical sources always give the same version.
func NewDataset(rows []Country, digests map[SourceKey]string, stats MergeStats) *Dataset {
	d := &Dataset{
		version:  Version(digests),
		rows:     append([]Country(nil), rows...),
		stats:    stats,
		loadedAt: time.Now(),
	}
	d.total = TotalPopulation(d.rows)
	for _, r := range d.rows {
		if r.Population.Valid && (!d.maxPop.Valid || r.Population.Int64 > d.maxPop.Int64) {
			d.maxPop = r.Population
		}
		d.maxInf = maxFloat(d.maxInf, r.InfantMortality)
		d.maxLife = maxFloat(d.maxLife, r.LifeExpectancy)
	}
	return d
}

func maxFloat(cur, v pgtype.Float8) pgtype.Float8 {
	if v.Valid && (!cur.Valid || v.Float64 > cur.Float64) {
		return v
	}
	return cur
}

// Version derives a dataset version from source digests.
func Version(digests map[SourceKey]string) string {
	parts := make([]string, len(SourceKeys))
	for i, k := range SourceKeys {
		parts[i] = string(k) + ":" + digests[k]
	}
	return uuid.NewSHA1(versionNamespace, []byte(strings.Join(parts, "\n"))).String()
}

// Version returns the content version of the dataset.
func (d *Dataset) Version() string { return d.version }

// Rows returns a copy of the merged rows in metadata order.
func (d *Dataset) Rows() []Country {
	return append([]Country(nil), d.rows...)
}

// Len returns the number of countries.
func (d *Dataset) Len() int { return len(d.rows) }

// TotalPopulation returns the sum of all non-null populations.
func (d *Dataset) TotalPopulation() int64 { return d.total }

// MaxPopulation returns the largest population, null for an empty column.
func (d *Dataset) MaxPopulation() pgtype.Int8 { return d.maxPop }

// MaxInfantMortality returns the largest infant mortality rate.
func (d *Dataset) MaxInfantMortality() pgtype.Float8 { return d.maxInf }

// MaxLifeExpectancy returns the largest life expectancy.
func (d *Dataset) MaxLifeExpectancy() pgtype.Float8 { return d.maxLife }

// LoadedAt returns when the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Filter applies criteria and derives world shares against the full
// table total.
func (d *Dataset) Filter(c Criteria) View {
	rows := Filter(d.rows, c)
	return View{
		Version:         d.version,
		Rows:            Derive(rows, d.total),
		TotalPopulation: d.total,
		Subtotal:        TotalPopulation(rows),
	}
}

// Summary describes the dataset.
func (d *Dataset) Summary() Summary {
	s := Summary{
		Version:         d.version,
		Countries:       len(d.rows),
		TotalPopulation: d.total,
		Unmatched:       make(map[SourceKey]int, len(d.stats.Unmatched)),
		LoadedAt:        d.loadedAt,
		Took:            d.took,
	}
	for k, n := range d.stats.Unmatched {
		s.Unmatched[k] = n
	}
	for _, r := range d.rows {
		if r.Population.Valid {
			s.WithPopulation++
		}
		if r.InfantMortality.Valid {
			s.WithMortality++
		}
		if r.LifeExpectancy.Valid {
			s.WithLife++
		}
	}
	return s
}

// Build loads, reconciles and merges the sources in set.
// Any failure aborts the build; no partial dataset is returned.
func Build(ctx context.Context, loader *Loader, set SourceSet) (*Dataset, error) {
	start := time.Now()

	raw, err := loader.Load(ctx, set)
	if err != nil {
		return nil, err
	}

	ids, err := Reconcile(raw.Countries, raw.CountriesES)
	if err != nil {
		return nil, err
	}

	rows, stats, err := Merge(ids, raw.Population, raw.InfantMortality, raw.LifeExpectancy)
	if err != nil {
		return nil, err
	}
	for src, n := range stats.Unmatched {
		loader.logger.Debug("unmatched indicator rows", "source", src, "count", n)
	}

	d := NewDataset(rows, raw.Digests, stats)
	d.took = time.Since(start)

	loader.logger.Info("dataset built",
		"version", d.version,
		"countries", len(d.rows),
		"total_population", d.total,
		"duration_ms", d.took.Milliseconds(),
	)
	return d, nil
}

// BuildObserver receives the outcome of every dataset build.
type BuildObserver interface {
	ObserveBuild(took time.Duration, rows int, err error)
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithBuildObserver reports builds to o.
func WithBuildObserver(o BuildObserver) CacheOption {
	return func(c *Cache) {
		c.observer = o
	}
}

// Cache builds a Dataset at most once per source set.
// Concurrent callers asking for the same set share one build.
type Cache struct {
	loader   *Loader
	observer BuildObserver
	group    singleflight.Group

	mu       sync.RWMutex
	datasets map[string]*Dataset
}

// NewCache creates an empty cache.
func NewCache(loader *Loader, opts ...CacheOption) *Cache {
	c := &Cache{
		loader:   loader,
		datasets: make(map[string]*Dataset),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the dataset for set, building it on first use.
// A failed build is not cached.
func (c *Cache) Get(ctx context.Context, set SourceSet) (*Dataset, error) {
	key := set.CacheKey()
	if d := c.lookup(key); d != nil {
		return d, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		if d := c.lookup(key); d != nil {
			return d, nil
		}

		start := time.Now()
		// The build is shared; one caller leaving must not fail the rest.
		d, err := Build(context.WithoutCancel(ctx), c.loader, set)
		if c.observer != nil {
			rows := 0
			if d != nil {
				rows = d.Len()
			}
			c.observer.ObserveBuild(time.Since(start), rows, err)
		}
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.datasets[key] = d
		c.mu.Unlock()
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

func (c *Cache) lookup(key string) *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.datasets[key]
}

// Forget drops the cached dataset for set so the next Get rebuilds it.
func (c *Cache) Forget(set SourceSet) {
	key := set.CacheKey()
	c.mu.Lock()
	delete(c.datasets, key)
	c.mu.Unlock()
	c.group.Forget(key)
}
