package migrations

func init() {
	Register(Migration{
		Revision:    "20231201-000000",
		Description: "Initial schema: products, prices and total stats",
		Up: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				code TEXT NOT NULL UNIQUE,
				product_name TEXT,
				brands TEXT,
				categories_tags TEXT NOT NULL DEFAULT '[]',
				labels_tags TEXT NOT NULL DEFAULT '[]',
				price_count INTEGER NOT NULL DEFAULT 0 CHECK (price_count >= 0),
				created TEXT NOT NULL,
				updated TEXT NOT NULL
			)`,

			`CREATE TABLE IF NOT EXISTS prices (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				product_code TEXT,
				product_id INTEGER REFERENCES products(id) ON DELETE SET NULL,
				category_tag TEXT,
				labels_tags TEXT NOT NULL DEFAULT '[]',
				origins_tags TEXT NOT NULL DEFAULT '[]',
				price REAL NOT NULL,
				price_is_discounted INTEGER NOT NULL DEFAULT 0,
				price_per TEXT CHECK (price_per IN ('UNIT', 'KILOGRAM')),
				currency TEXT NOT NULL,
				location_osm_id INTEGER,
				location_osm_type TEXT CHECK (location_osm_type IN ('NODE', 'WAY', 'RELATION')),
				date TEXT,
				owner TEXT,
				created TEXT NOT NULL,
				updated TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_prices_product_code ON prices(product_code)`,
			`CREATE INDEX IF NOT EXISTS idx_prices_product_id ON prices(product_id)`,
			`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date)`,

			`CREATE TABLE IF NOT EXISTS stats_totalstats (
				id INTEGER PRIMARY KEY,
				price_count INTEGER NOT NULL DEFAULT 0,
				price_type_product_code_count INTEGER NOT NULL DEFAULT 0,
				price_type_category_tag_count INTEGER NOT NULL DEFAULT 0,
				product_count INTEGER NOT NULL DEFAULT 0,
				product_with_price_count INTEGER NOT NULL DEFAULT 0,
				location_count INTEGER NOT NULL DEFAULT 0,
				location_with_price_count INTEGER NOT NULL DEFAULT 0,
				proof_count INTEGER NOT NULL DEFAULT 0,
				user_count INTEGER NOT NULL DEFAULT 0,
				created TEXT NOT NULL,
				updated TEXT NOT NULL
			)`,
			`INSERT INTO stats_totalstats (id, created, updated)
				VALUES (1, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'), strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))`,
		},
		Down: []string{
			`DROP TABLE IF EXISTS stats_totalstats`,
			`DROP INDEX IF EXISTS idx_prices_date`,
			`DROP INDEX IF EXISTS idx_prices_product_id`,
			`DROP INDEX IF EXISTS idx_prices_product_code`,
			`DROP TABLE IF EXISTS prices`,
			`DROP TABLE IF EXISTS products`,
		},
		PostgresUp: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
				code TEXT NOT NULL UNIQUE,
				product_name TEXT,
				brands TEXT,
				categories_tags TEXT[] NOT NULL DEFAULT '{}',
				labels_tags TEXT[] NOT NULL DEFAULT '{}',
				price_count INTEGER NOT NULL DEFAULT 0 CHECK (price_count >= 0),
				created TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,

			`CREATE TABLE IF NOT EXISTS prices (
				id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
				product_code TEXT,
				product_id BIGINT REFERENCES products(id) ON DELETE SET NULL,
				category_tag TEXT,
				labels_tags TEXT[] NOT NULL DEFAULT '{}',
				origins_tags TEXT[] NOT NULL DEFAULT '{}',
				price NUMERIC(10, 2) NOT NULL,
				price_is_discounted BOOLEAN NOT NULL DEFAULT FALSE,
				price_per TEXT CHECK (price_per IN ('UNIT', 'KILOGRAM')),
				currency VARCHAR(3) NOT NULL,
				location_osm_id BIGINT,
				location_osm_type TEXT CHECK (location_osm_type IN ('NODE', 'WAY', 'RELATION')),
				date DATE,
				owner TEXT,
				created TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_prices_product_code ON prices(product_code)`,
			`CREATE INDEX IF NOT EXISTS idx_prices_product_id ON prices(product_id)`,
			`CREATE INDEX IF NOT EXISTS idx_prices_date ON prices(date)`,

			`CREATE TABLE IF NOT EXISTS stats_totalstats (
				id INTEGER PRIMARY KEY,
				price_count INTEGER NOT NULL DEFAULT 0,
				price_type_product_code_count INTEGER NOT NULL DEFAULT 0,
				price_type_category_tag_count INTEGER NOT NULL DEFAULT 0,
				product_count INTEGER NOT NULL DEFAULT 0,
				product_with_price_count INTEGER NOT NULL DEFAULT 0,
				location_count INTEGER NOT NULL DEFAULT 0,
				location_with_price_count INTEGER NOT NULL DEFAULT 0,
				proof_count INTEGER NOT NULL DEFAULT 0,
				user_count INTEGER NOT NULL DEFAULT 0,
				created TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated TIMESTAMPTZ NOT NULL DEFAULT now()
			)`,
			`INSERT INTO stats_totalstats (id) VALUES (1)`,
		},
		PostgresDown: []string{
			`DROP TABLE IF EXISTS stats_totalstats`,
			`DROP TABLE IF EXISTS prices`,
			`DROP TABLE IF EXISTS products`,
		},
	})
}
