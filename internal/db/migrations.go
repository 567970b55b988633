package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'rfq_status') THEN
			CREATE TYPE rfq_status AS ENUM ('draft', 'pending', 'approved', 'rejected');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'commodity_type') THEN
			CREATE TYPE commodity_type AS ENUM ('provided_data', 'service', 'transport');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS sites (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(4) NOT NULL,
		name VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_sites_code ON sites (code);`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS rfq (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		rfq_number VARCHAR(64) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		commodity_type commodity_type NOT NULL,
		status rfq_status NOT NULL DEFAULT 'pending',
		total_value NUMERIC(18,2) NOT NULL CHECK (total_value >= 0),
		currency VARCHAR(8),
		site_id UUID NOT NULL REFERENCES sites(id),
		site_code VARCHAR(4) NOT NULL,
		creator_id UUID NOT NULL,
		user_comments TEXT,
		decision_comments TEXT,
		decided_by_user_id UUID,
		decided_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_rfq_number ON rfq (rfq_number);`,
	`CREATE INDEX IF NOT EXISTS idx_rfq_status ON rfq (status);`,
	`CREATE INDEX IF NOT EXISTS idx_rfq_site_code ON rfq (site_code);`,
	`CREATE INDEX IF NOT EXISTS idx_rfq_creator_id ON rfq (creator_id);`,
	`CREATE TABLE IF NOT EXISTS rfq_items (
		id UUID PRIMARY KEY,
		rfq_id UUID NOT NULL REFERENCES rfq(id) ON DELETE CASCADE,
		line_no INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		specification TEXT,
		unit_of_measure VARCHAR(32),
		quantity NUMERIC(18,3) NOT NULL,
		rate NUMERIC(18,4) NOT NULL DEFAULT 0,
		from_location VARCHAR(255),
		to_location VARCHAR(255),
		vehicle_size VARCHAR(64),
		load VARCHAR(255),
		dimensions VARCHAR(255),
		frequency_per_month INT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rfq_items_rfq_id ON rfq_items (rfq_id);`,
	`CREATE TABLE IF NOT EXISTS rfq_quotes (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		rfq_id UUID NOT NULL REFERENCES rfq(id) ON DELETE CASCADE,
		supplier_id UUID NOT NULL REFERENCES suppliers(id),
		rates JSONB NOT NULL DEFAULT '{}',
		freight VARCHAR(255),
		packing VARCHAR(255),
		lead_time VARCHAR(255),
		warranty VARCHAR(255),
		currency VARCHAR(8)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rfq_quotes_rfq_id ON rfq_quotes (rfq_id);`,
	// The global counter behind every RFQ number. Seeded from the largest
	// existing suffix so redeploys never reissue a number.
	`CREATE TABLE IF NOT EXISTS rfq_sequence (
		id SMALLINT PRIMARY KEY CHECK (id = 1),
		last_value BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`INSERT INTO rfq_sequence (id, last_value)
	SELECT 1, COALESCE(MAX(NULLIF(split_part(rfq_number, '-', 3), '')::BIGINT), 0)
	FROM rfq
	ON CONFLICT (id) DO NOTHING;`,
	`INSERT INTO sites (code, name, active)
	VALUES ('A000', 'Head Office', TRUE)
	ON CONFLICT (code) DO NOTHING;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
