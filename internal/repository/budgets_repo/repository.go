package budgets_repo

import (
	"context"

	"github.com/shopspring/decimal"

	"ledger/internal/domain"
)

type BudgetRepository interface {
	Set(ctx context.Context, category string, limit decimal.Decimal) error
	List(ctx context.Context) ([]domain.Budget, error)
}
