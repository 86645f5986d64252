package ledger_http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ledger/internal/domain"
)

const (
	msgUserNotFound        = "User not found."
	msgInsufficientBalance = "Insufficient balance."
	msgNoUsers             = "No users available."
	msgInvalidInitial      = "Invalid initial balance. Please enter a numeric value."
	msgInvalidInput        = "Invalid input. Please ensure user ID and amount are numeric."
	msgInvalidUserID       = "Invalid user ID. Please enter a numeric value."
	msgInvalidBudget       = "Invalid budget amount. Please enter a numeric value."
	msgInvalidTxAmount     = "Invalid amount. Please enter a numeric value."
	msgInvalidTxType       = "Invalid transaction type. Please choose income or expense."
	msgInternalError       = "Something went wrong. Please try again."
	adminTransactionsLimit = 20
)

func parseUserID(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func (h *LedgerHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index", pageData{Title: "Banking System"})
}

func (h *LedgerHandler) AboutPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about", pageData{Title: "About", Info: h.service.About()})
}

func (h *LedgerHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "404", pageData{Title: "Page not found"})
}

func (h *LedgerHandler) AdminPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Admin panel"}
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, "admin", data)
		return
	}

	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts for admin panel", zap.Error(err))
		data.Message = msgInternalError
		h.render(w, http.StatusInternalServerError, "admin", data)
		return
	}
	if len(accounts) == 0 {
		data.Message = msgNoUsers
	}
	for _, a := range accounts {
		data.Lines = append(data.Lines, fmt.Sprintf("ID: %d, Name: %s, Balance: %s", a.ID, a.Name, domain.FormatMoney(a.Balance)))
	}

	transactions, err := h.service.ListTransactions(r.Context(), adminTransactionsLimit)
	if err != nil {
		h.logger.Error("Failed to list transactions for admin panel", zap.Error(err))
	}
	for _, tx := range transactions {
		data.Transactions = append(data.Transactions, transactionRow{
			ID:       tx.ID,
			Date:     tx.Date,
			Type:     string(tx.Type),
			Category: tx.Category,
			Amount:   domain.FormatMoney(tx.Amount),
			Notes:    tx.Notes,
		})
	}
	h.render(w, http.StatusOK, "admin", data)
}

func (h *LedgerHandler) CreateAccountPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Create account"}
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, "create_account", data)
		return
	}

	name := r.PostFormValue("name")
	initialBalance, err := domain.ParseAmount(r.PostFormValue("initial_balance"))
	if err != nil {
		data.Message = msgInvalidInitial
		h.render(w, http.StatusOK, "create_account", data)
		return
	}

	account, err := h.service.CreateAccount(r.Context(), name, initialBalance)
	if err != nil {
		h.logger.Error("Failed to create account", zap.String("name", name), zap.Error(err))
		data.Message = msgInternalError
		h.render(w, http.StatusInternalServerError, "create_account", data)
		return
	}

	data.Message = fmt.Sprintf("Account created for %s with ID %d. Initial balance: %s",
		account.Name, account.ID, domain.FormatMoney(account.Balance))
	h.render(w, http.StatusOK, "create_account", data)
}

func (h *LedgerHandler) DepositPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Deposit"}
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, "deposit", data)
		return
	}

	userID, idErr := parseUserID(r.PostFormValue("user_id"))
	amount, amountErr := domain.ParseAmount(r.PostFormValue("amount"))
	if idErr != nil || amountErr != nil {
		data.Message = msgInvalidInput
		h.render(w, http.StatusOK, "deposit", data)
		return
	}

	account, err := h.service.Deposit(r.Context(), userID, amount)
	status := http.StatusOK
	switch {
	case err == nil:
		data.Message = fmt.Sprintf("%s deposited to %s's account. New balance: %s",
			domain.FormatMoney(amount), account.Name, domain.FormatMoney(account.Balance))
	case errors.Is(err, domain.ErrAccountNotFound):
		data.Message = msgUserNotFound
	default:
		h.logger.Error("Deposit failed", zap.Int64("user_id", userID), zap.Error(err))
		data.Message = msgInternalError
		status = http.StatusInternalServerError
	}
	h.render(w, status, "deposit", data)
}

func (h *LedgerHandler) WithdrawPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Withdraw"}
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, "withdraw", data)
		return
	}

	userID, idErr := parseUserID(r.PostFormValue("user_id"))
	amount, amountErr := domain.ParseAmount(r.PostFormValue("amount"))
	if idErr != nil || amountErr != nil {
		data.Message = msgInvalidInput
		h.render(w, http.StatusOK, "withdraw", data)
		return
	}

	account, err := h.service.Withdraw(r.Context(), userID, amount)
	status := http.StatusOK
	switch {
	case err == nil:
		data.Message = fmt.Sprintf("%s withdrawn from %s's account. New balance: %s",
			domain.FormatMoney(amount), account.Name, domain.FormatMoney(account.Balance))
	case errors.Is(err, domain.ErrAccountNotFound):
		data.Message = msgUserNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		data.Message = msgInsufficientBalance
	default:
		h.logger.Error("Withdrawal failed", zap.Int64("user_id", userID), zap.Error(err))
		data.Message = msgInternalError
		status = http.StatusInternalServerError
	}
	h.render(w, status, "withdraw", data)
}

func (h *LedgerHandler) BalancePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Check balance"}
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, "balance", data)
		return
	}

	userID, err := parseUserID(r.PostFormValue("user_id"))
	if err != nil {
		data.Message = msgInvalidUserID
		h.render(w, http.StatusOK, "balance", data)
		return
	}

	account, err := h.service.GetBalance(r.Context(), userID)
	status := http.StatusOK
	switch {
	case err == nil:
		data.Message = fmt.Sprintf("User %s has a balance of %s", account.Name, domain.FormatMoney(account.Balance))
	case errors.Is(err, domain.ErrAccountNotFound):
		data.Message = msgUserNotFound
	default:
		h.logger.Error("Balance lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		data.Message = msgInternalError
		status = http.StatusInternalServerError
	}
	h.render(w, status, "balance", data)
}

func (h *LedgerHandler) SetBudgetPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Set budget"}
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, "set_budget", data)
		return
	}

	category := r.PostFormValue("category")
	limit, err := domain.ParseAmount(r.PostFormValue("amount"))
	if err != nil {
		data.Message = msgInvalidBudget
		h.render(w, http.StatusOK, "set_budget", data)
		return
	}

	if err := h.service.SetBudget(r.Context(), category, limit); err != nil {
		h.logger.Error("Failed to set budget", zap.String("category", category), zap.Error(err))
		data.Message = msgInternalError
		h.render(w, http.StatusInternalServerError, "set_budget", data)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *LedgerHandler) CheckBudgetPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Budget status"}
	statuses, err := h.service.CheckBudget(r.Context())
	if err != nil {
		h.logger.Error("Failed to check budgets", zap.Error(err))
		data.Message = msgInternalError
		h.render(w, http.StatusInternalServerError, "check_budget", data)
		return
	}
	for _, st := range statuses {
		data.Budgets = append(data.Budgets, budgetRow{
			Category:  st.Category,
			Spent:     domain.FormatMoney(st.Spent),
			Budget:    domain.FormatMoney(st.Budget),
			Remaining: domain.FormatMoney(st.Remaining),
		})
	}
	h.render(w, http.StatusOK, "check_budget", data)
}

func (h *LedgerHandler) AddTransactionPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Add transaction"}
	if r.Method != http.MethodPost {
		h.render(w, http.StatusOK, "add_transaction", data)
		return
	}

	txType, err := domain.ParseTransactionType(r.PostFormValue("type"))
	if err != nil {
		data.Message = msgInvalidTxType
		h.render(w, http.StatusOK, "add_transaction", data)
		return
	}
	amount, err := domain.ParseAmount(r.PostFormValue("amount"))
	if err != nil {
		data.Message = msgInvalidTxAmount
		h.render(w, http.StatusOK, "add_transaction", data)
		return
	}

	category := r.PostFormValue("category")
	tx, err := h.service.AddTransaction(r.Context(), txType, category, amount, r.PostFormValue("notes"))
	if err != nil {
		h.logger.Error("Failed to add transaction", zap.String("category", category), zap.Error(err))
		data.Message = msgInternalError
		h.render(w, http.StatusInternalServerError, "add_transaction", data)
		return
	}

	data.Message = fmt.Sprintf("Logged %s of %s in %s.", tx.Type, domain.FormatMoney(tx.Amount), tx.Category)
	h.render(w, http.StatusOK, "add_transaction", data)
}

func (h *LedgerHandler) GenerateReportPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Financial report"}
	report, err := h.service.GenerateReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to generate report", zap.Error(err))
		data.Message = msgInternalError
		h.render(w, http.StatusInternalServerError, "generate_report", data)
		return
	}
	data.Report = &reportView{
		TotalIncome:    domain.FormatMoney(report.TotalIncome),
		TotalExpenses:  domain.FormatMoney(report.TotalExpenses),
		CurrentBalance: domain.FormatMoney(report.CurrentBalance),
	}
	h.render(w, http.StatusOK, "generate_report", data)
}
