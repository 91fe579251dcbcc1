package lookup

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// Errors maps a query parameter name to the problems found with it.
type Errors map[string][]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e[k], "; ")))
	}
	return "invalid filters: " + strings.Join(parts, ", ")
}

// FieldErrors returns the messages keyed by parameter name.
func (e Errors) FieldErrors() map[string][]string {
	return e
}

func (e Errors) add(key, msg string) {
	e[key] = append(e[key], msg)
}

// SplitKey splits "field__lookup" into its parts. Keys without a separator
// use DefaultLookup.
func SplitKey(key string) (field, lookup string) {
	if i := strings.LastIndex(key, Separator); i > 0 {
		return key[:i], key[i+len(Separator):]
	}
	return key, DefaultLookup
}

// Build compiles query parameters into a conjunction of predicates over
// fields. Parameters that do not name a field (page, size, ...) are ignored.
// Problems are collected per parameter and returned together as Errors.
func Build(params url.Values, fields Fields, d dialect.Dialect) (sq.And, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var preds sq.And
	errs := Errors{}
	for _, key := range keys {
		name, lookupName := SplitKey(key)
		f, ok := fields[name]
		if !ok {
			continue
		}
		for _, raw := range params[key] {
			pred, err := Compile(lookupName, f, raw, d)
			if err != nil {
				errs.add(key, filterMessage(err))
				continue
			}
			preds = append(preds, pred)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return preds, nil
}

func filterMessage(err error) string {
	switch {
	case errors.Is(err, ErrUnknownLookup):
		return fmt.Sprintf("Unknown lookup. Choose from: %s.", strings.Join(Names(), ", "))
	case errors.Is(err, ErrUnsupportedLookup):
		return "Lookup not supported for this field."
	default:
		return err.Error()
	}
}

// Ordering converts an order_by value ("price,-date") into ORDER BY terms.
// A leading "-" sorts descending. Names must be fields.
func Ordering(raw string, fields Fields) ([]string, error) {
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		direction := "ASC"
		if strings.HasPrefix(part, "-") {
			direction = "DESC"
			part = part[1:]
		}
		f, ok := fields[part]
		if !ok || f.Kind == Array {
			return nil, Errors{"order_by": {fmt.Sprintf("Cannot order by %q.", part)}}
		}
		terms = append(terms, f.Column+" "+direction)
	}
	return terms, nil
}
