package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/model"
)

type AliasRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAliasRepository(db *sql.DB, logger *zap.Logger) *AliasRepository {
	return &AliasRepository{db: db, logger: logger}
}

func (r *AliasRepository) SetAlias(address, alias string) error {
	_, err := r.db.Exec(`
		INSERT INTO aliases (address, alias, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (address) DO UPDATE SET
			alias = EXCLUDED.alias,
			updated_at = NOW()
	`, address, alias)

	if err != nil {
		return fmt.Errorf("failed to set alias: %w", err)
	}

	r.logger.Info("Set alias",
		zap.String("address", address),
		zap.String("alias", alias))
	return nil
}

func (r *AliasRepository) DeleteAlias(address string) error {
	_, err := r.db.Exec(`DELETE FROM aliases WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("failed to delete alias: %w", err)
	}

	r.logger.Info("Deleted alias", zap.String("address", address))
	return nil
}

func (r *AliasRepository) GetAllAliases() ([]model.Alias, error) {
	rows, err := r.db.Query(`
		SELECT address, alias, updated_at
		FROM aliases
		ORDER BY address
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get aliases: %w", err)
	}
	defer rows.Close()

	var aliases []model.Alias
	for rows.Next() {
		var alias model.Alias
		if err := rows.Scan(&alias.Address, &alias.Name, &alias.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases = append(aliases, alias)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating aliases: %w", err)
	}

	return aliases, nil
}
