package core

// convert.go turns raw source cells into typed values.
//
// Cells come from spreadsheets exported by hand, so the functions tolerate:
//   - Thousands separators ("1,234,567") and stray spaces. A comma that
//     does not group thousands ("72,5") is rejected, never dropped.
//   - Excel formula prefixes (="value") and surrounding quotes
//   - Integral floats for counts ("1234567.0", "1.4e9")
//
// Empty cells yield values with Valid=false and no error; anything that is
// not a number yields an error so the loader can report the line.

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/unicode/norm"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// thousandsRegex matches a number whose commas group digits by three.
var thousandsRegex = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d*)?$`)

// maxCount is the largest count a cell may hold. A table of millions of
// such rows still sums inside int64.
const maxCount = 1_000_000_000_000

var (
	errOutOfRange  = errors.New("out of range")
	errNotNumber   = errors.New("invalid number")
	errNegative    = errors.New("negative value")
	errNotIntegral = errors.New("not a whole number")
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ParseCount converts a cell to a non-negative pgtype.Int8.
func ParseCount(s string) (pgtype.Int8, error) {
	f, ok, err := parseNumber(s)
	if err != nil || !ok {
		return pgtype.Int8{}, err
	}
	if f != math.Trunc(f) {
		return pgtype.Int8{}, fmt.Errorf("%w: %q", errNotIntegral, s)
	}
	if f > maxCount {
		return pgtype.Int8{}, fmt.Errorf("%w: %q exceeds %d", errOutOfRange, s, int64(maxCount))
	}
	return pgtype.Int8{Int64: int64(f), Valid: true}, nil
}

// ParseRate converts a cell to a non-negative pgtype.Float8.
func ParseRate(s string) (pgtype.Float8, error) {
	f, ok, err := parseNumber(s)
	if err != nil || !ok {
		return pgtype.Float8{}, err
	}
	return pgtype.Float8{Float64: f, Valid: true}, nil
}

// parseNumber cleans and parses a numeric cell.
// ok is false for empty cells.
func parseNumber(s string) (f float64, ok bool, err error) {
	raw := s
	s = CleanCell(s)
	if s == "" {
		return 0, false, nil
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if strings.Contains(s, ",") {
		if !thousandsRegex.MatchString(s) {
			return 0, false, fmt.Errorf("%w: %q", errNotNumber, raw)
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	if !numericRegex.MatchString(s) {
		return 0, false, fmt.Errorf("%w: %q", errNotNumber, raw)
	}

	f, err = strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false, fmt.Errorf("%w: %q", errNotNumber, raw)
	}
	if f < 0 {
		return 0, false, fmt.Errorf("%w: %q", errNegative, raw)
	}
	return f, true, nil
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching. When a header
// repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
// - Normalizes to NFC so "País" matches whichever way its accent was encoded
func CleanCell(s string) string {
	s = strings.TrimSpace(norm.NFC.String(s))

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// cell returns the cleaned value of a column, or "" if the row is short.
func cell(row []string, pos int) string {
	if pos < 0 || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}

// blankRow reports whether every cell of a row is empty.
// Workbooks often carry formatted but empty trailing rows.
func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
