package present

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Missing is shown for null values.
const Missing = "—"

// printers are created per call; message.Printer keeps formatting state.
func printer() *message.Printer {
	return message.NewPrinter(language.Spanish)
}

// Integer formats a count with Spanish digit grouping: 47.000.000.
func Integer(v pgtype.Int8) string {
	if !v.Valid {
		return Missing
	}
	return printer().Sprintf("%d", v.Int64)
}

// Decimal formats a rate with the given number of decimals: 72,5.
func Decimal(v pgtype.Float8, decimals int) string {
	if !v.Valid {
		return Missing
	}
	return printer().Sprintf(fmt.Sprintf("%%.%df", decimals), v.Float64)
}

// Percent formats a share with two decimals: 95,24 %.
func Percent(v pgtype.Float8) string {
	if !v.Valid {
		return Missing
	}
	return printer().Sprintf("%.2f %%", v.Float64)
}
