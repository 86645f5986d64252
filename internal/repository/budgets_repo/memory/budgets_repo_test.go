package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSetOverwritesAndListSorts(t *testing.T) {
	repo := NewBudgetRepository()
	ctx := context.Background()

	repo.Set(ctx, "Rent", decimal.NewFromInt(900))
	repo.Set(ctx, "Food", decimal.NewFromInt(200))
	repo.Set(ctx, "Rent", decimal.NewFromInt(950))

	budgets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(budgets) != 2 {
		t.Fatalf("len = %d, want 2", len(budgets))
	}
	if budgets[0].Category != "Food" || budgets[1].Category != "Rent" {
		t.Fatalf("unexpected order: %+v", budgets)
	}
	if !budgets[1].Limit.Equal(decimal.NewFromInt(950)) {
		t.Fatalf("Rent limit = %s, want 950", budgets[1].Limit)
	}
}
