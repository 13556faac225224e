package repository

import (
	"database/sql"
	"fmt"
)

// InitMigration initializes the database. In production, this would use a proper migration
// library like go-migrate
func InitMigration(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key VARCHAR(64) PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS aliases (
			address VARCHAR(42) PRIMARY KEY,
			alias VARCHAR(100) NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS whale_outbox (
			id UUID PRIMARY KEY,
			tx_hash VARCHAR(66) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'unsent',
			chain_id BIGINT NOT NULL,
			block_number BIGINT NOT NULL,
			from_address VARCHAR(42) NOT NULL,
			to_address VARCHAR(42) NOT NULL DEFAULT '',
			value_wei NUMERIC(78,0) NOT NULL,
			value_eth DECIMAL(78,18) NOT NULL,
			detected_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			UNIQUE(chain_id, tx_hash)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_whale_outbox_status_created ON whale_outbox (status, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}

	return nil
}
