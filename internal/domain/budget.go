package domain

import "github.com/shopspring/decimal"

type Budget struct {
	Category string
	Limit    decimal.Decimal
}

// BudgetStatus compares a budget limit with the expenses logged in its category.
type BudgetStatus struct {
	Category  string
	Spent     decimal.Decimal
	Budget    decimal.Decimal
	Remaining decimal.Decimal
}

type Report struct {
	TotalIncome    decimal.Decimal
	TotalExpenses  decimal.Decimal
	CurrentBalance decimal.Decimal
}
