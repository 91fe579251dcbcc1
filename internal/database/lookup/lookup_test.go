package lookup

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/go-cmp/cmp"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/openfoodfacts/open-prices/internal/database/dialect"
)

var priceFields = Fields{
	"product_code":        {Column: "product_code", Kind: Text},
	"labels_tags":         {Column: "labels_tags", Kind: Array},
	"price":               {Column: "price", Kind: Float},
	"price_is_discounted": {Column: "price_is_discounted", Kind: Bool},
	"location_osm_id":     {Column: "location_osm_id", Kind: Int},
	"date":                {Column: "date", Kind: Date},
	"currency":            {Column: "currency", Kind: Text},
	"created":             {Column: "created", Kind: Timestamp},
}

// ========================================
// Any
// ========================================

func TestAny_ToSql(t *testing.T) {
	tests := []struct {
		name     string
		any      Any
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "postgres column",
			any:      Any{Value: "en:organic", Array: "labels_tags", Dialect: dialect.Postgres},
			wantSQL:  "? = ANY(labels_tags)",
			wantArgs: []any{"en:organic"},
		},
		{
			name:     "sqlite column",
			any:      Any{Value: "en:organic", Array: "labels_tags", Dialect: dialect.SQLite},
			wantSQL:  "? IN (SELECT value FROM json_each(labels_tags))",
			wantArgs: []any{"en:organic"},
		},
		{
			name:     "value binds before array args",
			any:      Any{Value: "x", Array: sq.Expr("ARRAY[?, ?]", "x", "y"), Dialect: dialect.Postgres},
			wantSQL:  "? = ANY(ARRAY[?, ?])",
			wantArgs: []any{"x", "x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotArgs, err := tt.any.ToSql()
			if err != nil {
				t.Fatalf("ToSql() error = %v", err)
			}
			if gotSQL != tt.wantSQL {
				t.Errorf("sql = %q, want %q", gotSQL, tt.wantSQL)
			}
			if diff := cmp.Diff(tt.wantArgs, gotArgs); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAny_DollarPlaceholders(t *testing.T) {
	query, args, err := dialect.Postgres.Builder().
		Select("id").
		From("prices").
		Where(Any{Value: "en:organic", Array: "labels_tags", Dialect: dialect.Postgres}).
		ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	if want := "SELECT id FROM prices WHERE $1 = ANY(labels_tags)"; query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 1 || args[0] != "en:organic" {
		t.Errorf("args = %v, want [en:organic]", args)
	}
}

func TestAny_InvalidArray(t *testing.T) {
	for _, arr := range []any{"", 42} {
		_, _, err := Any{Value: "x", Array: arr}.ToSql()
		if !errors.Is(err, ErrUnsupportedLookup) {
			t.Errorf("Array %v: error = %v, want ErrUnsupportedLookup", arr, err)
		}
	}
}

// TestAny_Membership evaluates the SQLite rendering against a real engine:
// the predicate holds exactly when the value is an element of the array.
func TestAny_Membership(t *testing.T) {
	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tests := []struct {
		value string
		array []string
		want  bool
	}{
		{"a", []string{"a", "b"}, true},
		{"b", []string{"a", "b"}, true},
		{"c", []string{"a", "b"}, false},
		{"a", nil, false},
		{"", []string{""}, true},
		{"A", []string{"a"}, false},
		{"en:organic", []string{"en:fair-trade", "en:organic"}, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q in %v", tt.value, tt.array), func(t *testing.T) {
			placeholders := sq.Placeholders(len(tt.array))
			elems := make([]any, len(tt.array))
			for i, s := range tt.array {
				elems[i] = s
			}
			pred := Any{
				Value:   tt.value,
				Array:   sq.Expr("json_array("+placeholders+")", elems...),
				Dialect: dialect.SQLite,
			}
			predSQL, args, err := pred.ToSql()
			if err != nil {
				t.Fatalf("ToSql() error = %v", err)
			}

			var got bool
			if err := db.QueryRow("SELECT CASE WHEN "+predSQL+" THEN 1 ELSE 0 END", args...).Scan(&got); err != nil {
				t.Fatalf("query error = %v", err)
			}
			if got != tt.want {
				t.Errorf("member = %v, want %v", got, tt.want)
			}
		})
	}
}

// ========================================
// Registry
// ========================================

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() should panic on a duplicate name")
		}
	}()
	Register(Lookup{Name: "any", Array: true, Compile: compileAny})
}

func TestNames_IncludesBuiltins(t *testing.T) {
	names := map[string]bool{}
	for _, n := range Names() {
		names[n] = true
	}
	for _, want := range []string{"exact", "iexact", "contains", "icontains", "startswith", "gt", "gte", "lt", "lte", "in", "isnull", "any"} {
		if !names[want] {
			t.Errorf("lookup %q not registered", want)
		}
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		lookup   string
		field    string
		raw      string
		wantSQL  string
		wantArgs []any
	}{
		{"exact", "currency", "EUR", "currency = ?", []any{"EUR"}},
		{"iexact", "currency", "eur", "LOWER(currency) = LOWER(?)", []any{"eur"}},
		{"contains", "product_code", "12_3", `product_code LIKE ? ESCAPE '\'`, []any{`%12\_3%`}},
		{"icontains", "product_code", "AbC", `LOWER(product_code) LIKE ? ESCAPE '\'`, []any{"%abc%"}},
		{"startswith", "product_code", "30", `product_code LIKE ? ESCAPE '\'`, []any{"30%"}},
		{"gt", "price", "1.5", "price > ?", []any{1.5}},
		{"lte", "location_osm_id", "42", "location_osm_id <= ?", []any{int64(42)}},
		{"in", "currency", "EUR, USD", "currency IN (?,?)", []any{"EUR", "USD"}},
		{"isnull", "date", "true", "date IS NULL", nil},
		{"isnull", "labels_tags", "false", "labels_tags IS NOT NULL", nil},
		{"exact", "price_is_discounted", "yes", "price_is_discounted = ?", []any{1}},
		{"gte", "date", "2024-01-31", "date >= ?", []any{"2024-01-31"}},
		{"any", "labels_tags", "en:organic", "? IN (SELECT value FROM json_each(labels_tags))", []any{"en:organic"}},
		{"exact", "created", "2024-11-05", "date(created) = ?", []any{"2024-11-05"}},
		{"lte", "created", "2024-11-05", "date(created) <= ?", []any{"2024-11-05"}},
	}

	for _, tt := range tests {
		t.Run(tt.lookup+"/"+tt.field, func(t *testing.T) {
			pred, err := Compile(tt.lookup, priceFields[tt.field], tt.raw, dialect.SQLite)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			gotSQL, gotArgs, err := pred.ToSql()
			if err != nil {
				t.Fatalf("ToSql() error = %v", err)
			}
			if gotSQL != tt.wantSQL {
				t.Errorf("sql = %q, want %q", gotSQL, tt.wantSQL)
			}
			if len(tt.wantArgs) == 0 && len(gotArgs) == 0 {
				return
			}
			if diff := cmp.Diff(tt.wantArgs, gotArgs); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		lookup string
		field  string
		raw    string
		want   error
	}{
		{"regex", "currency", "E.*", ErrUnknownLookup},
		{"any", "currency", "EUR", ErrUnsupportedLookup},
		{"exact", "labels_tags", "en:organic", ErrUnsupportedLookup},
		{"contains", "labels_tags", "organic", ErrUnsupportedLookup},
		{"contains", "price", "3", ErrUnsupportedLookup},
		{"startswith", "date", "2024", ErrUnsupportedLookup},
		{"iexact", "location_osm_id", "1", ErrUnsupportedLookup},
		{"icontains", "price_is_discounted", "t", ErrUnsupportedLookup},
		{"startswith", "created", "2024", ErrUnsupportedLookup},
		{"exact", "created", "yesterday", nil},
		{"gt", "price", "cheap", nil},
		{"isnull", "date", "maybe", nil},
	}

	for _, tt := range tests {
		t.Run(tt.lookup+"/"+tt.field, func(t *testing.T) {
			_, err := Compile(tt.lookup, priceFields[tt.field], tt.raw, dialect.SQLite)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Compile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompile_TimestampPostgres(t *testing.T) {
	pred, err := Compile("gte", priceFields["created"], "2024-11-05", dialect.Postgres)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	gotSQL, _, err := pred.ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	if want := "CAST(created AT TIME ZONE 'UTC' AS DATE) >= ?"; gotSQL != want {
		t.Errorf("sql = %q, want %q", gotSQL, want)
	}
}

func TestLookup_Supports(t *testing.T) {
	contains, _ := Get("contains")
	exact, _ := Get("exact")
	anyLookup, _ := Get("any")

	tests := []struct {
		lookup Lookup
		kind   Kind
		want   bool
	}{
		{contains, Text, true},
		{contains, Int, false},
		{contains, Float, false},
		{contains, Date, false},
		{contains, Timestamp, false},
		{contains, Array, false},
		{exact, Int, true},
		{exact, Timestamp, true},
		{exact, Array, false},
		{anyLookup, Array, true},
		{anyLookup, Text, false},
	}

	for _, tt := range tests {
		t.Run(tt.lookup.Name+"/"+tt.kind.String(), func(t *testing.T) {
			if got := tt.lookup.Supports(Field{Column: "c", Kind: tt.kind}); got != tt.want {
				t.Errorf("Supports(%s) = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

// ========================================
// Build / Ordering
// ========================================

func TestBuild(t *testing.T) {
	params := url.Values{
		"labels_tags__any": {"en:organic"},
		"price__gte":       {"2"},
		"page":             {"3"},
		"unknown__in":      {"a,b"},
	}

	preds, err := Build(params, priceFields, dialect.Postgres)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	query, args, err := dialect.Postgres.Builder().
		Select("id").
		From("prices").
		Where(preds).
		ToSql()
	if err != nil {
		t.Fatalf("ToSql() error = %v", err)
	}
	if want := "SELECT id FROM prices WHERE ($1 = ANY(labels_tags) AND price >= $2)"; query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if diff := cmp.Diff([]any{"en:organic", 2.0}, args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Empty(t *testing.T) {
	preds, err := Build(url.Values{"page": {"1"}}, priceFields, dialect.SQLite)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(preds) != 0 {
		t.Errorf("Build() = %d predicates, want 0", len(preds))
	}
}

func TestBuild_CollectsErrors(t *testing.T) {
	params := url.Values{
		"price":            {"abc"},
		"currency__bogus":  {"EUR"},
		"labels_tags":      {"en:organic"},
		"product_code__in": {"1,2"},
	}

	_, err := Build(params, priceFields, dialect.SQLite)
	var errs Errors
	if !errors.As(err, &errs) {
		t.Fatalf("Build() error = %v, want Errors", err)
	}

	for _, key := range []string{"price", "currency__bogus", "labels_tags"} {
		if len(errs[key]) == 0 {
			t.Errorf("no error recorded for %s", key)
		}
	}
	if _, ok := errs["product_code__in"]; ok {
		t.Error("valid parameter should not be reported")
	}
}

func TestOrdering(t *testing.T) {
	terms, err := Ordering("-date, price", priceFields)
	if err != nil {
		t.Fatalf("Ordering() error = %v", err)
	}
	if diff := cmp.Diff([]string{"date DESC", "price ASC"}, terms); diff != "" {
		t.Errorf("terms mismatch (-want +got):\n%s", diff)
	}

	for _, raw := range []string{"owner_secret", "-labels_tags"} {
		if _, err := Ordering(raw, priceFields); err == nil {
			t.Errorf("Ordering(%q) should fail", raw)
		}
	}
}
