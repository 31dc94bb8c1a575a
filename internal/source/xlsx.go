package source

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// XLSX reads Excel workbooks.
type XLSX struct{}

// Read implements Reader. It reads the sheet named in ref, or the first
// sheet of the workbook when none is named.
func (XLSX) Read(ctx context.Context, ref Ref) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(ref.Location)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := ref.Sheet
	if name == "" {
		name = f.GetSheetName(0)
		if name == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return split(rows, digestBytes(data))
}
