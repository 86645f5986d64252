package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrInvalidAmount = errors.New("invalid amount")

// Account is a named balance holder. Accounts live only in process memory.
type Account struct {
	ID      int64
	Name    string
	Balance decimal.Decimal
}
