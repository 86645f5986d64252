package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"ledger/internal/domain"
)

// BudgetRepository is a transient category -> limit map.
type BudgetRepository struct {
	mu      sync.RWMutex
	budgets map[string]decimal.Decimal
}

func NewBudgetRepository() *BudgetRepository {
	return &BudgetRepository{budgets: make(map[string]decimal.Decimal)}
}

func (r *BudgetRepository) Set(_ context.Context, category string, limit decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets[category] = limit
	return nil
}

// List returns budgets sorted by category.
func (r *BudgetRepository) List(_ context.Context) ([]domain.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	budgets := make([]domain.Budget, 0, len(r.budgets))
	for category, limit := range r.budgets {
		budgets = append(budgets, domain.Budget{Category: category, Limit: limit})
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].Category < budgets[j].Category })
	return budgets, nil
}
