// Package lookup compiles field__lookup=value filters into SQL predicates.
//
// Lookups are registered by name from init() and resolved when a filter is
// built, so new operators can be added without touching the filter builder.
// Every lookup produces a squirrel.Sqlizer using ? placeholders; the
// statement builder rewrites them for the target dialect.
package lookup

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

// DefaultLookup is used when a filter has no __lookup suffix.
const DefaultLookup = "exact"

// Separator splits a filter key into field and lookup name.
const Separator = "__"

var (
	// ErrUnknownLookup is returned for a lookup name that was never registered.
	ErrUnknownLookup = errors.New("unknown lookup")
	// ErrUnsupportedLookup is returned when a lookup cannot apply to a field,
	// such as any on a scalar column.
	ErrUnsupportedLookup = errors.New("unsupported lookup")
)

// Lookup is a named query operator.
type Lookup struct {
	Name string

	// Scalar and Array select which field kinds the lookup accepts.
	Scalar bool
	Array  bool
	// Kinds, when set, restricts the lookup to fields of these kinds and
	// takes precedence over Scalar and Array.
	Kinds []Kind

	// Parse converts the raw query value for a field. Nil converts by the
	// field's kind (the element kind for array fields).
	Parse func(raw string, f Field) (any, error)

	// Compile returns the predicate comparing column with the parsed value.
	Compile func(column string, value any, d dialect.Dialect) (sq.Sqlizer, error)
}

// Supports reports whether the lookup can apply to f.
func (l Lookup) Supports(f Field) bool {
	if len(l.Kinds) > 0 {
		return slices.Contains(l.Kinds, f.Kind)
	}
	if f.Kind == Array {
		return l.Array
	}
	return l.Scalar
}

var (
	mu       sync.RWMutex
	registry = map[string]Lookup{}
)

// Register adds a lookup to the registry. It panics if the name is empty,
// already taken, or the lookup cannot compile.
func Register(l Lookup) {
	mu.Lock()
	defer mu.Unlock()

	if l.Name == "" || l.Compile == nil {
		panic("lookup: Register needs a name and a Compile func")
	}
	if _, dup := registry[l.Name]; dup {
		panic(fmt.Sprintf("lookup: %q registered twice", l.Name))
	}
	registry[l.Name] = l
}

// Get returns the lookup registered under name.
func Get(name string) (Lookup, bool) {
	mu.RLock()
	defer mu.RUnlock()
	l, ok := registry[name]
	return l, ok
}

// Names returns the registered lookup names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile resolves the named lookup and builds its predicate for field f.
// raw is the unparsed query value.
func Compile(name string, f Field, raw string, d dialect.Dialect) (sq.Sqlizer, error) {
	l, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLookup, name)
	}
	if !l.Supports(f) {
		return nil, fmt.Errorf("%w: %s on %s field %s", ErrUnsupportedLookup, name, f.Kind, f.Column)
	}

	parse := l.Parse
	if parse == nil {
		parse = parseElement
	}
	value, err := parse(raw, f)
	if err != nil {
		return nil, err
	}
	return l.Compile(f.expr(d), value, d)
}

func parseElement(raw string, f Field) (any, error) {
	return f.ElementKind().Parse(raw)
}
