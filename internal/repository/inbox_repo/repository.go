package inbox_repo

import (
	"context"

	"ledger/internal/domain"
)

type InboxRepository interface {
	// CreateMessageTx returns domain.ErrDuplicateImport when msg.ID was already recorded.
	CreateMessageTx(ctx context.Context, querier domain.Querier, msg *domain.InboxMessage) error
}
