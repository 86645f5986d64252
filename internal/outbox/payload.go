package outbox

import (
	"encoding/json"
	"time"

	"ledger/internal/domain"
	"ledger/internal/domain/event"
)

func PrepareTransactionLoggedPayload(tx *domain.Transaction, eventTime time.Time) ([]byte, error) {
	return json.Marshal(event.TransactionLoggedEvent{
		TransactionID: tx.ID,
		Type:          string(tx.Type),
		Category:      tx.Category,
		Amount:        tx.Amount,
		Date:          tx.Date,
		Notes:         tx.Notes,
		Timestamp:     eventTime,
	})
}
