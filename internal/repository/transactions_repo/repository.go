package transactions_repo

import (
	"context"

	"github.com/shopspring/decimal"

	"ledger/internal/domain"
)

type TransactionRepository interface {
	CreateTx(ctx context.Context, querier domain.Querier, tx *domain.Transaction) error
	SumByType(ctx context.Context, querier domain.Querier, txType domain.TransactionType) (decimal.Decimal, error)
	SumExpensesByCategory(ctx context.Context, querier domain.Querier, category string) (decimal.Decimal, error)
	ListRecent(ctx context.Context, querier domain.Querier, limit int) ([]domain.Transaction, error)
}
