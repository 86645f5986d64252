package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidTransactionType = errors.New("invalid transaction type")

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

const (
	CategoryDeposit    = "Deposit"
	CategoryWithdrawal = "Withdrawal"
)

// DateLayout is the day-granularity format of Transaction.Date in storage.
const DateLayout = "2006-01-02"

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TransactionTypeIncome, TransactionTypeExpense:
		return TransactionType(s), nil
	}
	return "", ErrInvalidTransactionType
}

// Transaction is an append-only ledger entry. It is not linked to any account.
type Transaction struct {
	ID       int64
	Type     TransactionType
	Category string
	Amount   decimal.Decimal
	Date     string
	Notes    string
}

func NewTransaction(txType TransactionType, category string, amount decimal.Decimal, notes string, now time.Time) *Transaction {
	return &Transaction{
		Type:     txType,
		Category: category,
		Amount:   amount,
		Date:     now.Format(DateLayout),
		Notes:    notes,
	}
}
