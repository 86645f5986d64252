package kafka_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"ledger/internal/app/ledger"
	"ledger/internal/domain"
	"ledger/internal/domain/event"
)

type TransactionImportConsumer struct {
	ledgerService ledger.LedgerService
	logger        *zap.Logger
}

func NewTransactionImportConsumer(s ledger.LedgerService, l *zap.Logger) *TransactionImportConsumer {
	return &TransactionImportConsumer{ledgerService: s, logger: l}
}

func importID(evt *event.TransactionImportEvent, msg kafka.Message) string {
	if evt.ImportID != "" {
		return evt.ImportID
	}
	return fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
}

// HandleMessage logs one imported transaction. Messages that can never be
// applied, and duplicates, return nil so their offset is committed.
func (c *TransactionImportConsumer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	c.logger.Info("Received Kafka message for transaction import",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("key", string(msg.Key)),
	)

	var evt event.TransactionImportEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		c.logger.Error("Failed to unmarshal Kafka message value to TransactionImportEvent",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
			zap.Int64("offset", msg.Offset),
		)
		return nil
	}

	txType, err := domain.ParseTransactionType(evt.Type)
	if err != nil {
		c.logger.Warn("Skipping imported transaction with unknown type",
			zap.String("type", evt.Type),
			zap.Int64("offset", msg.Offset))
		return nil
	}

	id := importID(&evt, msg)
	tx, err := c.ledgerService.ImportTransaction(ctx, id, txType, evt.Category, evt.Amount, evt.Notes, msg.Value)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateImport) {
			c.logger.Info("Skipping duplicate transaction import", zap.String("import_id", id))
			return nil
		}
		c.logger.Error("Failed to import transaction",
			zap.String("import_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to import transaction %s: %w", id, err)
	}

	c.logger.Info("Successfully imported transaction",
		zap.String("import_id", id),
		zap.Int64("transaction_id", tx.ID))
	return nil
}
