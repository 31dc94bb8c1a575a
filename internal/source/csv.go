package source

// csv.go reads comma-separated sources.
//
// Sources exported from spreadsheets often carry a UTF-8 BOM and the odd
// invalid byte; both are cleaned before parsing. Files are small reference
// tables, so the whole content is read at once (the digest needs it anyway).

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSV reads comma-separated files.
type CSV struct {
	// Comma overrides the field delimiter (default ',').
	Comma rune
}

// Read implements Reader.
func (c CSV) Read(ctx context.Context, ref Ref) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(ref.Location)
	if err != nil {
		return nil, err
	}
	return c.parse(data)
}

func (c CSV) parse(data []byte) (*Sheet, error) {
	digest := digestBytes(data)

	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("?"))

	r := csv.NewReader(bytes.NewReader(data))
	if c.Comma != 0 {
		r.Comma = c.Comma
	}
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return split(records, digest)
}
