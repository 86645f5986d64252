package transactions_repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"ledger/internal/domain"
)

// Placeholders must appear in ascending order: sqlite3 binds $n by position of
// first appearance.

type transactionRepository struct{}

func NewTransactionRepository() *transactionRepository {
	return &transactionRepository{}
}

func (r *transactionRepository) CreateTx(ctx context.Context, querier domain.Querier, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (type, category, amount, date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := querier.QueryRowContext(ctx, query,
		string(tx.Type),
		tx.Category,
		tx.Amount,
		tx.Date,
		tx.Notes,
	).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to create %s transaction in category %q: %w", tx.Type, tx.Category, err)
	}
	return nil
}

func (r *transactionRepository) SumByType(ctx context.Context, querier domain.Querier, txType domain.TransactionType) (decimal.Decimal, error) {
	query := `SELECT amount FROM transactions WHERE type = $1`
	sum, err := sumAmounts(ctx, querier, query, string(txType))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s transactions: %w", txType, err)
	}
	return sum, nil
}

func (r *transactionRepository) SumExpensesByCategory(ctx context.Context, querier domain.Querier, category string) (decimal.Decimal, error) {
	query := `SELECT amount FROM transactions WHERE category = $1 AND type = $2`
	sum, err := sumAmounts(ctx, querier, query, category, string(domain.TransactionTypeExpense))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses for category %q: %w", category, err)
	}
	return sum, nil
}

// sumAmounts adds the selected amounts in decimal. SQL SUM over SQLite
// columns goes through float64 and would lose exactness.
func sumAmounts(ctx context.Context, querier domain.Querier, query string, args ...any) (decimal.Decimal, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, err
		}
		sum = sum.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

func (r *transactionRepository) ListRecent(ctx context.Context, querier domain.Querier, limit int) ([]domain.Transaction, error) {
	query := `
		SELECT id, type, category, amount, date, notes
		FROM transactions
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := querier.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var tx domain.Transaction
		var txType string
		if err := rows.Scan(&tx.ID, &txType, &tx.Category, &tx.Amount, &tx.Date, &tx.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Type = domain.TransactionType(txType)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}
