package accounts_repo

import (
	"context"

	"github.com/shopspring/decimal"

	"ledger/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, name string, initialBalance decimal.Decimal) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	Credit(ctx context.Context, id int64, amount decimal.Decimal) (*domain.Account, error)
	Debit(ctx context.Context, id int64, amount decimal.Decimal) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}
