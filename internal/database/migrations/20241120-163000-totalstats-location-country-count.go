package migrations

func init() {
	Register(Migration{
		Revision:     "20241120-163000",
		DownRevision: "20241112-091200",
		Description:  "Add location_type_osm_country_count to total stats",
		Up: []string{
			`ALTER TABLE stats_totalstats ADD COLUMN location_type_osm_country_count INTEGER NOT NULL DEFAULT 0 CHECK (location_type_osm_country_count >= 0)`,
		},
		Down: []string{
			`ALTER TABLE stats_totalstats DROP COLUMN location_type_osm_country_count`,
		},
	})
}
