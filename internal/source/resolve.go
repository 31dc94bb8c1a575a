package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoMatch is returned when no file matches a source pattern.
var ErrNoMatch = errors.New("no file matches pattern")

// ErrAmbiguous is returned when several files match a source pattern.
var ErrAmbiguous = errors.New("pattern matches more than one file")

// Resolve returns the path of the only file in dir matching pattern.
// Patterns use doublestar syntax, so "Countries.{xlsx,csv}" accepts either
// format. Spreadsheet lock files ("~$Countries.xlsx") never match.
func Resolve(dir, pattern string) (string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", fmt.Errorf("pattern %q: %w", pattern, err)
	}

	var found []string
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), "~$") {
			continue
		}
		found = append(found, m)
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%s/%s: %w", dir, pattern, ErrNoMatch)
	case 1:
		return filepath.Join(dir, filepath.FromSlash(found[0])), nil
	default:
		sort.Strings(found)
		return "", fmt.Errorf("%s/%s: %w (%s)", dir, pattern, ErrAmbiguous, strings.Join(found, ", "))
	}
}
