package core

// loader.go implements the Reference Loader.
//
// The loader fetches all five sources concurrently, then checks each sheet
// against its registered definition and converts cells into typed rows.
// Any failure aborts the whole load; no partial RawTables is returned.

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/worlddash/internal/source"
)

// Loader reads and types the reference sources.
type Loader struct {
	reader source.Reader
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader creates a loader on top of a source reader.
func NewLoader(r source.Reader, opts ...LoaderOption) *Loader {
	l := &Loader{
		reader: r,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every source in set and returns the typed tables.
func (l *Loader) Load(ctx context.Context, set SourceSet) (*RawTables, error) {
	sheets := make([]*source.Sheet, len(SourceKeys))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range SourceKeys {
		ref := set.Ref(key)
		g.Go(func() error {
			sheet, err := l.reader.Read(gctx, ref)
			if err != nil {
				return readError(key, ref, err)
			}
			sheets[i] = sheet
			l.logger.Debug("source read",
				"source", key,
				"ref", ref.String(),
				"rows", len(sheet.Rows),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	raw := &RawTables{Digests: make(map[SourceKey]string, len(SourceKeys))}
	for i, key := range SourceKeys {
		ref := set.Ref(key)
		if err := raw.add(key, ref, sheets[i]); err != nil {
			return nil, err
		}
		raw.Digests[key] = sheets[i].Digest
	}

	return raw, nil
}

// readError classifies a reader failure.
func readError(key SourceKey, ref source.Ref, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	failure := FailureUnreadable
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, source.ErrNoMatch) {
		failure = FailureMissing
	}
	return &SourceLoadError{Source: key, Ref: ref.String(), Failure: failure, Err: err}
}

// add types one sheet and stores it on the matching RawTables field.
func (r *RawTables) add(key SourceKey, ref source.Ref, sheet *source.Sheet) error {
	def, ok := Get(key)
	if !ok {
		return fmt.Errorf("source %s is not registered", key)
	}

	rows, err := newSheetRows(def, ref, sheet)
	if err != nil {
		return err
	}

	switch key {
	case SourceCountries:
		return rows.each(func(row rowCells) error {
			r.Countries = append(r.Countries, CountryMeta{
				Code:      row.text("Country Code"),
				Name:      row.text("Country"),
				Continent: row.text("Continent"),
				Line:      row.line,
			})
			return nil
		})
	case SourceCountriesES:
		return rows.each(func(row rowCells) error {
			r.CountriesES = append(r.CountriesES, LocalizedName{
				Code: row.text("Codigo Pais"),
				Name: row.text("Pais"),
				Line: row.line,
			})
			return nil
		})
	case SourcePopulation:
		return rows.each(func(row rowCells) error {
			v, err := row.count("Population")
			if err != nil {
				return err
			}
			r.Population = append(r.Population, PopulationRow{Country: row.text("Country"), Value: v, Line: row.line})
			return nil
		})
	case SourceInfantMortality:
		return rows.each(func(row rowCells) error {
			v, err := row.rate("Infant mortality")
			if err != nil {
				return err
			}
			r.InfantMortality = append(r.InfantMortality, RateRow{Country: row.text("Country"), Value: v, Line: row.line})
			return nil
		})
	case SourceLifeExpectancy:
		return rows.each(func(row rowCells) error {
			v, err := row.rate("Life Expectancy")
			if err != nil {
				return err
			}
			r.LifeExpectancy = append(r.LifeExpectancy, RateRow{Country: row.text("Country"), Value: v, Line: row.line})
			return nil
		})
	}
	return fmt.Errorf("source %s has no loader", key)
}

// sheetRows walks the data rows of a sheet with resolved columns.
type sheetRows struct {
	def   SourceDefinition
	ref   source.Ref
	sheet *source.Sheet
	cols  Columns
}

func newSheetRows(def SourceDefinition, ref source.Ref, sheet *source.Sheet) (*sheetRows, error) {
	cols, err := ValidateHeaders(sheet.Header, def)
	if err != nil {
		return nil, &SourceLoadError{Source: def.Key, Ref: ref.String(), Failure: FailureSchema, Line: 1, Err: err}
	}
	return &sheetRows{def: def, ref: ref, sheet: sheet, cols: cols}, nil
}

// each calls fn for every non-blank row after checking key columns.
func (s *sheetRows) each(fn func(rowCells) error) error {
	for i, raw := range s.sheet.Rows {
		if blankRow(raw) {
			continue
		}
		row := rowCells{rows: s, cells: raw, line: s.sheet.Line(i)}

		for _, spec := range s.def.FieldSpecs {
			if spec.Key && row.text(spec.Name) == "" {
				return row.fail(spec.Name, errors.New("empty key"))
			}
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// rowCells gives typed access to the cells of one data row.
type rowCells struct {
	rows  *sheetRows
	cells []string
	line  int
}

func (r rowCells) text(name string) string {
	pos, ok := r.rows.cols[name]
	if !ok {
		return ""
	}
	return cell(r.cells, pos)
}

func (r rowCells) count(name string) (v pgtype.Int8, err error) {
	v, err = ParseCount(r.text(name))
	if err != nil {
		return v, r.fail(name, r.typeError(name, err))
	}
	return v, nil
}

func (r rowCells) rate(name string) (v pgtype.Float8, err error) {
	v, err = ParseRate(r.text(name))
	if err != nil {
		return v, r.fail(name, r.typeError(name, err))
	}
	return v, nil
}

func (r rowCells) typeError(name string, err error) error {
	spec, _ := r.rows.def.Field(name)
	return fmt.Errorf("expected %s: %w", fieldTypeName(spec.Type), err)
}

func (r rowCells) fail(column string, err error) error {
	return &SourceLoadError{
		Source:  r.rows.def.Key,
		Ref:     r.rows.ref.String(),
		Failure: FailureValue,
		Line:    r.line,
		Column:  column,
		Err:     err,
	}
}
