// Package source reads the raw reference sheets behind the dashboard.
//
// A sheet is a header row plus string cells, exactly as they appear in the
// underlying workbook, CSV file or database table. Typing and schema checks
// happen in the core package; this package only knows how to fetch cells.
//
// # Backends
//
//   - [Files] dispatches on file extension to [XLSX] or [CSV].
//   - [Postgres] reads whole tables through a pgx pool.
//
// File locations are usually not configured directly. [Resolve] finds the
// single file in a directory that matches a doublestar pattern such as
// "Population.{xlsx,csv}".
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when a file extension has no reader.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Ref identifies one source sheet.
type Ref struct {
	Location string // File path, or table name for Postgres
	Sheet    string // Worksheet name for workbooks (first sheet if empty)
}

// String returns a log-friendly form of the reference.
func (r Ref) String() string {
	if r.Sheet != "" {
		return r.Location + "#" + r.Sheet
	}
	return r.Location
}

// Sheet holds the raw cells of one source.
// Row i of Rows sits on line i+2 of the source (line 1 is the header).
type Sheet struct {
	Header []string
	Rows   [][]string
	Digest string // Hex SHA-256 of the source content
}

// Line returns the 1-based source line of data row i.
func (s *Sheet) Line(i int) int {
	return i + 2
}

// Reader fetches a sheet for a reference.
type Reader interface {
	Read(ctx context.Context, ref Ref) (*Sheet, error)
}

// Files reads workbooks and CSV files from the local filesystem.
type Files struct {
	XLSX XLSX
	CSV  CSV
}

// Read implements Reader by dispatching on the file extension.
func (f Files) Read(ctx context.Context, ref Ref) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(ref.Location)) {
	case ".xlsx", ".xlsm":
		return f.XLSX.Read(ctx, ref)
	case ".csv", ".txt":
		return f.CSV.Read(ctx, ref)
	default:
		return nil, fmt.Errorf("%s: %w", ref.Location, ErrUnsupportedFormat)
	}
}

// split separates the header from the data rows.
// A sheet with no rows at all has no header and is reported as empty.
func split(records [][]string, digest string) (*Sheet, error) {
	if len(records) == 0 {
		return nil, errors.New("empty file")
	}
	return &Sheet{
		Header: records[0],
		Rows:   records[1:],
		Digest: digest,
	}, nil
}

func digestBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
