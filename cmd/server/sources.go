package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/worlddash/internal/config"
	"github.com/JonMunkholm/worlddash/internal/core"
	"github.com/JonMunkholm/worlddash/internal/source"
)

// backend is an opened source backend.
type backend struct {
	reader source.Reader
	set    core.SourceSet
	close  func()
}

// openBackend prepares the reader and source set for cfg.Sources.Backend.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Sources.Backend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg)
	default:
		return openFiles(cfg)
	}
}

func openFiles(cfg *config.Config) (*backend, error) {
	comma := []rune(cfg.Sources.CSVDelimiter)[0]
	patterns := map[core.SourceKey]string{
		core.SourceCountries:       cfg.Sources.Countries,
		core.SourceCountriesES:     cfg.Sources.CountriesES,
		core.SourcePopulation:      cfg.Sources.Population,
		core.SourceInfantMortality: cfg.Sources.InfantMortality,
		core.SourceLifeExpectancy:  cfg.Sources.LifeExpectancy,
	}

	refs := make(map[core.SourceKey]source.Ref, len(patterns))
	var errs []error
	for _, key := range core.SourceKeys {
		path, err := source.Resolve(cfg.Sources.Dir, patterns[key])
		if err != nil {
			failure := core.FailureUnreadable
			if errors.Is(err, source.ErrNoMatch) || errors.Is(err, source.ErrAmbiguous) {
				failure = core.FailureMissing
			}
			errs = append(errs, &core.SourceLoadError{
				Source:  key,
				Ref:     filepath.Join(cfg.Sources.Dir, patterns[key]),
				Failure: failure,
				Err:     err,
			})
			continue
		}
		// Resolve already returns the path under the source dir.
		refs[key] = source.Ref{Location: path, Sheet: cfg.Sources.Sheet}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &backend{
		reader: source.Files{CSV: source.CSV{Comma: comma}},
		set:    setFrom(refs),
		close:  func() {},
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*backend, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	db := cfg.Database
	return &backend{
		reader: source.NewPostgres(pool),
		set: setFrom(map[core.SourceKey]source.Ref{
			core.SourceCountries:       {Location: db.CountriesTable},
			core.SourceCountriesES:     {Location: db.CountriesESTable},
			core.SourcePopulation:      {Location: db.PopulationTable},
			core.SourceInfantMortality: {Location: db.InfantMortalityTable},
			core.SourceLifeExpectancy:  {Location: db.LifeExpectancyTable},
		}),
		close: pool.Close,
	}, nil
}

func setFrom(refs map[core.SourceKey]source.Ref) core.SourceSet {
	return core.SourceSet{
		Countries:       refs[core.SourceCountries],
		CountriesES:     refs[core.SourceCountriesES],
		Population:      refs[core.SourcePopulation],
		InfantMortality: refs[core.SourceInfantMortality],
		LifeExpectancy:  refs[core.SourceLifeExpectancy],
	}
}
