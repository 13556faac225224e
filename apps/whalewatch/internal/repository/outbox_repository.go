package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"whalewatch/apps/whalewatch/internal/model"
)

type OutboxRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewOutboxRepository(db *sql.DB, logger *zap.Logger) *OutboxRepository {
	return &OutboxRepository{db: db, logger: logger}
}

func (r *OutboxRepository) StoreOutboxEvent(event model.OutboxEvent) error {
	_, err := r.db.Exec(`
		INSERT INTO whale_outbox (id, tx_hash, status, chain_id, block_number, from_address, to_address, value_wei, value_eth, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (chain_id, tx_hash) DO NOTHING
	`, event.ID, event.TxHash, event.Status, event.ChainID, event.BlockNumber, event.FromAddress, event.ToAddress, event.ValueWei, event.ValueETH, event.DetectedAt)

	if err != nil {
		return fmt.Errorf("failed to store outbox event: %w", err)
	}

	r.logger.Debug("Stored whale event", zap.String("tx_hash", event.TxHash), zap.String("value_eth", event.ValueETH))
	return nil
}

func (r *OutboxRepository) GetUnsentEventsForProcessing(limit int) ([]model.OutboxEvent, error) {
	// Use a transaction to ensure atomicity
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // Will be ignored if tx.Commit() succeeds

	// Select and lock unsent events for processing
	rows, err := tx.Query(`
		SELECT id, tx_hash, status, chain_id, block_number, from_address, to_address, value_wei, value_eth, detected_at, created_at
		FROM whale_outbox
		WHERE status = 'unsent'
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var event model.OutboxEvent
		if err := rows.Scan(&event.ID, &event.TxHash, &event.Status, &event.ChainID, &event.BlockNumber,
			&event.FromAddress, &event.ToAddress, &event.ValueWei, &event.ValueETH, &event.DetectedAt, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	// Mark selected events as 'processing' to prevent other publishers from picking them up
	for _, event := range events {
		if _, err := tx.Exec(`
			UPDATE whale_outbox
			SET status = 'processing'
			WHERE id = $1 AND status = 'unsent'
		`, event.ID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return events, nil
}

func (r *OutboxRepository) MarkEventAsSent(id string) error {
	_, err := r.db.Exec(`UPDATE whale_outbox SET status = 'sent' WHERE id = $1`, id)
	return err
}

func (r *OutboxRepository) MarkEventAsFailed(id string) error {
	_, err := r.db.Exec(`
		UPDATE whale_outbox
		SET status = 'unsent'
		WHERE id = $1 AND status = 'processing'
	`, id)
	return err
}
