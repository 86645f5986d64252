package domain

import "time"

type OutboxMessageStatus string

const (
	OutboxStatusPending OutboxMessageStatus = "PENDING"
	OutboxStatusSent    OutboxMessageStatus = "SENT"
	OutboxStatusFailed  OutboxMessageStatus = "FAILED"
)

const MessageTypeTransactionLogged = "transaction.logged"

// OutboxMessage is written in the same SQL transaction as the ledger row it describes.
type OutboxMessage struct {
	ID          string
	AggregateID int64
	MessageType string
	Topic       string
	Payload     []byte
	Status      OutboxMessageStatus
	CreatedAt   time.Time
	SentAt      *time.Time
}
