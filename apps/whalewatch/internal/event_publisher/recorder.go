package event_publisher

import (
	"context"

	"whalewatch/apps/whalewatch/internal/model"
)

// OutboxRecorder stores whales in the outbox for the publisher to pick up
type OutboxRecorder struct {
	repository OutboxStore
	chainID    uint64
}

func NewOutboxRecorder(repository OutboxStore, chainID uint64) *OutboxRecorder {
	return &OutboxRecorder{repository: repository, chainID: chainID}
}

func (r *OutboxRecorder) HandleWhale(_ context.Context, whale model.Whale) error {
	valueWei := "0"
	if whale.ValueWei != nil {
		valueWei = whale.ValueWei.String()
	}

	return r.repository.StoreOutboxEvent(model.OutboxEvent{
		ID:          whale.ID,
		TxHash:      whale.TxHash,
		Status:      model.OutboxStatusUnsent,
		ChainID:     r.chainID,
		BlockNumber: whale.BlockNumber,
		FromAddress: whale.From,
		ToAddress:   whale.To,
		ValueWei:    valueWei,
		ValueETH:    whale.ValueETH,
		DetectedAt:  whale.DetectedAt,
	})
}
