package migrations

func init() {
	Register(Migration{
		Revision:     "20241105-104500",
		DownRevision: "20231201-000000",
		Description:  "Add product_name to prices",
		Up: []string{
			`ALTER TABLE prices ADD COLUMN product_name TEXT`,
		},
		Down: []string{
			`ALTER TABLE prices DROP COLUMN product_name`,
		},
	})
}
