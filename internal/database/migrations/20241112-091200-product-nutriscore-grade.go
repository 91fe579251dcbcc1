package migrations

func init() {
	// Holds a, b, c, d, e, unknown or not-applicable; NULL until the product is enriched.
	Register(Migration{
		Revision:     "20241112-091200",
		DownRevision: "20241105-104500",
		Description:  "Add nutriscore_grade to products",
		Up: []string{
			`ALTER TABLE products ADD COLUMN nutriscore_grade TEXT`,
		},
		Down: []string{
			`ALTER TABLE products DROP COLUMN nutriscore_grade`,
		},
	})
}
