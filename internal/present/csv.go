package present

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/worlddash/internal/core"
)

// ExportHeader is the header row of a CSV export.
var ExportHeader = []string{
	"Country Code", "Country", "Country_ES", "Continent", "Continente",
	"Population", "Infant mortality", "Life Expectancy", "% mundial",
}

// WriteCSV writes a view in dataset order. Numbers are plain (dot decimal,
// no grouping) so the file re-imports cleanly; nulls are empty cells.
func WriteCSV(w io.Writer, v core.View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range v.Rows {
		record := []string{
			r.Code,
			r.Name,
			r.NameES.String,
			r.ContinentEN,
			r.ContinentES,
			countCell(r.Population),
			rateCell(r.InfantMortality, -1),
			rateCell(r.LifeExpectancy, -1),
			rateCell(r.WorldShare, 4),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %s: %w", r.Code, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func countCell(v pgtype.Int8) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func rateCell(v pgtype.Float8, prec int) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', prec, 64)
}
