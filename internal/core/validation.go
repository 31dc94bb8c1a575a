package core

// validation.go checks source headers against their definitions.
//
// Header matching is case-insensitive and accepts the aliases listed on each
// FieldSpec, so "País" and "Pais" both satisfy the Spanish name column.

import (
	"fmt"
	"strings"
)

// Columns maps a definition's field names to positions in a sheet.
type Columns map[string]int

// ValidateHeaders resolves every field of a definition against a header row.
// Returns an error listing all missing required columns.
func ValidateHeaders(headers []string, def SourceDefinition) (Columns, error) {
	idx := MakeHeaderIndex(headers)
	cols := make(Columns, len(def.FieldSpecs))
	var missing []string

	for _, spec := range def.FieldSpecs {
		pos, ok := lookupHeader(idx, spec)
		if !ok {
			if spec.Required {
				missing = append(missing, spec.Name)
			}
			cols[spec.Name] = -1
			continue
		}
		cols[spec.Name] = pos
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return cols, nil
}

func lookupHeader(idx HeaderIndex, spec FieldSpec) (int, bool) {
	if pos, ok := idx[strings.ToLower(spec.Name)]; ok {
		return pos, true
	}
	for _, alias := range spec.Aliases {
		if pos, ok := idx[strings.ToLower(alias)]; ok {
			return pos, true
		}
	}
	return 0, false
}

// fieldTypeName returns a human-readable name for a field type.
func fieldTypeName(ft FieldType) string {
	switch ft {
	case FieldText:
		return "text"
	case FieldInteger:
		return "integer"
	case FieldFloat:
		return "number"
	default:
		return "value"
	}
}
