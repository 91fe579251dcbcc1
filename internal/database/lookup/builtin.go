package lookup

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

func init() {
	Register(Lookup{Name: "exact", Scalar: true, Compile: compileEq})
	Register(Lookup{Name: "iexact", Kinds: textOnly, Parse: parseText, Compile: compileIExact})
	Register(Lookup{Name: "contains", Kinds: textOnly, Parse: parseText, Compile: compileLike("%", "%")})
	Register(Lookup{Name: "icontains", Kinds: textOnly, Parse: parseText, Compile: compileILike("%", "%")})
	Register(Lookup{Name: "startswith", Kinds: textOnly, Parse: parseText, Compile: compileLike("", "%")})
	Register(Lookup{Name: "gt", Scalar: true, Compile: compileCmp(func(c string, v any) sq.Sqlizer { return sq.Gt{c: v} })})
	Register(Lookup{Name: "gte", Scalar: true, Compile: compileCmp(func(c string, v any) sq.Sqlizer { return sq.GtOrEq{c: v} })})
	Register(Lookup{Name: "lt", Scalar: true, Compile: compileCmp(func(c string, v any) sq.Sqlizer { return sq.Lt{c: v} })})
	Register(Lookup{Name: "lte", Scalar: true, Compile: compileCmp(func(c string, v any) sq.Sqlizer { return sq.LtOrEq{c: v} })})
	Register(Lookup{Name: "in", Scalar: true, Parse: parseList, Compile: compileEq})
	Register(Lookup{Name: "isnull", Scalar: true, Array: true, Parse: parseIsNull, Compile: compileIsNull})
	Register(Lookup{Name: "any", Array: true, Compile: compileAny})
}

// textOnly limits pattern lookups to text columns; LIKE and LOWER are not
// defined for numbers or dates on PostgreSQL.
var textOnly = []Kind{Text}

func parseText(raw string, _ Field) (any, error) {
	return raw, nil
}

// parseList splits a comma separated value and converts each element.
func parseList(raw string, f Field) (any, error) {
	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))
	for _, p := range parts {
		v, err := f.ElementKind().Parse(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func parseIsNull(raw string, _ Field) (any, error) {
	return parseBool(raw)
}

// bind adapts a parsed value to the dialect; SQLite stores booleans as 0/1.
func bind(value any, d dialect.Dialect) any {
	b, ok := value.(bool)
	if !ok || d == dialect.Postgres {
		return value
	}
	if b {
		return 1
	}
	return 0
}

// compileEq covers exact and in; squirrel renders a slice as IN (...).
func compileEq(column string, value any, d dialect.Dialect) (sq.Sqlizer, error) {
	if list, ok := value.([]any); ok {
		bound := make([]any, len(list))
		for i, v := range list {
			bound[i] = bind(v, d)
		}
		return sq.Eq{column: bound}, nil
	}
	return sq.Eq{column: bind(value, d)}, nil
}

func compileIExact(column string, value any, _ dialect.Dialect) (sq.Sqlizer, error) {
	return sq.Expr(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), value), nil
}

func compileCmp(op func(column string, value any) sq.Sqlizer) func(string, any, dialect.Dialect) (sq.Sqlizer, error) {
	return func(column string, value any, d dialect.Dialect) (sq.Sqlizer, error) {
		return op(column, bind(value, d)), nil
	}
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func compileLike(prefix, suffix string) func(string, any, dialect.Dialect) (sq.Sqlizer, error) {
	return func(column string, value any, _ dialect.Dialect) (sq.Sqlizer, error) {
		pattern := prefix + likeEscaper.Replace(fmt.Sprint(value)) + suffix
		return sq.Expr(fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, column), pattern), nil
	}
}

func compileILike(prefix, suffix string) func(string, any, dialect.Dialect) (sq.Sqlizer, error) {
	return func(column string, value any, _ dialect.Dialect) (sq.Sqlizer, error) {
		pattern := prefix + likeEscaper.Replace(strings.ToLower(fmt.Sprint(value))) + suffix
		return sq.Expr(fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, column), pattern), nil
	}
}

func compileIsNull(column string, value any, _ dialect.Dialect) (sq.Sqlizer, error) {
	isNull, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("isnull expects a boolean, got %T", value)
	}
	if isNull {
		return sq.Eq{column: nil}, nil
	}
	return sq.NotEq{column: nil}, nil
}

func compileAny(column string, value any, d dialect.Dialect) (sq.Sqlizer, error) {
	return Any{Value: value, Array: column, Dialect: d}, nil
}

// Any tests whether Value is an element of Array.
//
// On PostgreSQL it renders "? = ANY(array)"; on SQLite, where arrays are
// stored as JSON text, it renders "? IN (SELECT value FROM json_each(array))".
// The value is bound first, followed by any arguments of the array
// expression.
type Any struct {
	Value any
	// Array is a column name or an sq.Sqlizer producing the array.
	Array   any
	Dialect dialect.Dialect
}

// ToSql implements sq.Sqlizer.
func (a Any) ToSql() (string, []any, error) {
	var arraySQL string
	var arrayArgs []any
	switch arr := a.Array.(type) {
	case string:
		if arr == "" {
			return "", nil, fmt.Errorf("%w: any needs an array operand", ErrUnsupportedLookup)
		}
		arraySQL = arr
	case sq.Sqlizer:
		var err error
		arraySQL, arrayArgs, err = arr.ToSql()
		if err != nil {
			return "", nil, err
		}
	default:
		return "", nil, fmt.Errorf("%w: any cannot use %T as an array", ErrUnsupportedLookup, a.Array)
	}

	args := make([]any, 0, 1+len(arrayArgs))
	args = append(args, a.Value)
	args = append(args, arrayArgs...)

	if a.Dialect == dialect.Postgres {
		return fmt.Sprintf("? = ANY(%s)", arraySQL), args, nil
	}
	return fmt.Sprintf("? IN (SELECT value FROM json_each(%s))", arraySQL), args, nil
}
