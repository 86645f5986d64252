package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionLoggedEvent is published for every ledger row.
type TransactionLoggedEvent struct {
	TransactionID int64           `json:"transaction_id"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date"`
	Notes         string          `json:"notes,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// TransactionImportEvent is consumed from the import topic. ImportID is
// optional; without it the message's topic, partition and offset identify it.
type TransactionImportEvent struct {
	ImportID string          `json:"import_id,omitempty"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes"`
}
