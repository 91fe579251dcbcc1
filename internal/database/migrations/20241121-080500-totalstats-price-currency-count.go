package migrations

func init() {
	Register(Migration{
		Revision:     "20241121-080500",
		DownRevision: "20241120-163000",
		Description:  "Add price_currency_count to total stats",
		Up: []string{
			`ALTER TABLE stats_totalstats ADD COLUMN price_currency_count INTEGER NOT NULL DEFAULT 0 CHECK (price_currency_count >= 0)`,
		},
		Down: []string{
			`ALTER TABLE stats_totalstats DROP COLUMN price_currency_count`,
		},
	})
}
