package domain

import (
	"errors"
	"time"
)

var ErrDuplicateImport = errors.New("transaction import already processed")

type InboxMessageStatus string

const (
	InboxStatusProcessed InboxMessageStatus = "PROCESSED"
)

// InboxMessage records an imported Kafka message so that redelivery does not
// log the same transaction twice.
type InboxMessage struct {
	ID            string
	TransactionID int64
	Payload       []byte
	Status        InboxMessageStatus
	ReceivedAt    time.Time
}
