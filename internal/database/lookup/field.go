package lookup

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// Kind is the value type of a filterable field.
type Kind int

const (
	Text Kind = iota
	Int
	Float
	Bool
	Date
	// Timestamp columns are filtered on their UTC calendar date.
	Timestamp
	Array // array of text
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	case Array:
		return "array"
	default:
		return "unknown"
	}
}

// Parse converts a raw query value to the Go type bound for this kind.
func (k Kind) Parse(raw string) (any, error) {
	switch k {
	case Int:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", raw)
		}
		return n, nil
	case Float:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", raw)
		}
		return f, nil
	case Bool:
		b, err := parseBool(raw)
		if err != nil {
			return nil, err
		}
		return b, nil
	case Date, Timestamp:
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid date (YYYY-MM-DD)", raw)
		}
		// Dates are stored as ISO text on SQLite; the string form compares
		// correctly on both dialects.
		return d.Format(time.DateOnly), nil
	default:
		return raw, nil
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "on":
		return true, nil
	case "0", "f", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid boolean", raw)
}

// Field binds a filter name to a column.
type Field struct {
	Column string
	Kind   Kind
}

// ElementKind is the kind of the values stored in the field;
// text for arrays, the field kind otherwise.
func (f Field) ElementKind() Kind {
	if f.Kind == Array {
		return Text
	}
	return f.Kind
}

// expr is the SQL expression compared by lookups on f.
func (f Field) expr(d dialect.Dialect) string {
	if f.Kind != Timestamp {
		return f.Column
	}
	if d == dialect.Postgres {
		return fmt.Sprintf("CAST(%s AT TIME ZONE 'UTC' AS DATE)", f.Column)
	}
	return fmt.Sprintf("date(%s)", f.Column)
}

// Fields is the filterable field set of a resource, keyed by filter name.
type Fields map[string]Field
