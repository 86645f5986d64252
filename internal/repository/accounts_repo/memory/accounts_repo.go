package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"ledger/internal/domain"
)

// AccountRepository keeps accounts in process memory; they are lost on restart.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[int64]*domain.Account
	nextID   int64
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[int64]*domain.Account),
		nextID:   1,
	}
}

func (r *AccountRepository) Create(_ context.Context, name string, initialBalance decimal.Decimal) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account := &domain.Account{
		ID:      r.nextID,
		Name:    name,
		Balance: initialBalance,
	}
	r.accounts[account.ID] = account
	r.nextID++

	cp := *account
	return &cp, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

// Credit adds amount to the balance unconditionally.
func (r *AccountRepository) Credit(_ context.Context, id int64, amount decimal.Decimal) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(amount)

	cp := *account
	return &cp, nil
}

// Debit subtracts amount if the balance covers it, otherwise it returns
// domain.ErrInsufficientFunds and leaves the balance unchanged.
func (r *AccountRepository) Debit(_ context.Context, id int64, amount decimal.Decimal) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	if account.Balance.LessThan(amount) {
		return nil, domain.ErrInsufficientFunds
	}
	account.Balance = account.Balance.Sub(amount)

	cp := *account
	return &cp, nil
}

func (r *AccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}
