package source

// postgres.go reads reference sheets from PostgreSQL tables.
//
// Each Ref.Location names a table ("population" or "stats.population").
// The whole table is read with SELECT *; column names become the header and
// every value is rendered back to text so the core sees the same cells it
// would get from a file.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the subset of *pgxpool.Pool used by Postgres.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads sheets from database tables.
type Postgres struct {
	db Querier
}

// NewPostgres creates a Postgres reader on top of a pool or connection.
func NewPostgres(db Querier) *Postgres {
	return &Postgres{db: db}
}

// Read implements Reader.
func (p *Postgres) Read(ctx context.Context, ref Ref) (*Sheet, error) {
	query, err := selectAll(ref.Location)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", ref.Location, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))
	for i, fd := range fields {
		header[i] = fd.Name
	}

	h := sha256.New()
	records := [][]string{header}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", ref.Location, err)
		}
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = cellText(v)
			h.Write([]byte(record[i]))
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{0x1e})
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", ref.Location, err)
	}

	return split(records, hex.EncodeToString(h.Sum(nil)))
}

// selectAll builds the table query with a sanitized identifier.
func selectAll(table string) (string, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return "", fmt.Errorf("empty table name")
	}
	ident := pgx.Identifier(strings.Split(table, "."))
	return "SELECT * FROM " + ident.Sanitize(), nil
}

// cellText renders a decoded column value as text.
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case pgtype.Numeric:
		return numericText(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// numericText renders a NUMERIC without going through float64,
// so large populations keep every digit.
func numericText(n pgtype.Numeric) string {
	if !n.Valid || n.NaN {
		return ""
	}
	if n.Int == nil {
		return "0"
	}

	digits := new(big.Int).Abs(n.Int).String()
	neg := n.Int.Sign() < 0

	switch {
	case n.Exp > 0:
		digits += strings.Repeat("0", int(n.Exp))
	case n.Exp < 0:
		scale := int(-n.Exp)
		if len(digits) <= scale {
			digits = strings.Repeat("0", scale-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	}

	if neg {
		return "-" + digits
	}
	return digits
}
