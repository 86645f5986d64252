package ledger_http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledger/internal/domain"
)

type CreateAccountRequest struct {
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type SetBudgetRequest struct {
	Limit decimal.Decimal `json:"limit"`
}

type AddTransactionRequest struct {
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes"`
}

type AccountResponse struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
}

type BudgetStatusResponse struct {
	Category  string          `json:"category"`
	Spent     decimal.Decimal `json:"spent"`
	Budget    decimal.Decimal `json:"budget"`
	Remaining decimal.Decimal `json:"remaining"`
}

type TransactionResponse struct {
	ID       int64           `json:"id"`
	Type     string          `json:"type"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Notes    string          `json:"notes"`
}

type ReportResponse struct {
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

func toAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{ID: a.ID, Name: a.Name, Balance: a.Balance}
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:       tx.ID,
		Type:     string(tx.Type),
		Category: tx.Category,
		Amount:   tx.Amount,
		Date:     tx.Date,
		Notes:    tx.Notes,
	}
}

func (h *LedgerHandler) accountIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.Warn("Invalid account ID format", zap.String("account_id_str", idStr))
		http.Error(w, "Invalid account ID format", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *LedgerHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateAccount", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	account, err := h.service.CreateAccount(r.Context(), req.Name, req.InitialBalance)
	if err != nil {
		h.logger.Error("Failed to create account", zap.String("name", req.Name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *LedgerHandler) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListAccounts(r.Context())
	if err != nil {
		h.logger.Error("Failed to list accounts", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	resp := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountResponse(&accounts[i]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	account, err := h.service.GetBalance(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get account", zap.Int64("account_id", id), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *LedgerHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Deposit", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.service.Deposit(r.Context(), id, req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to deposit", zap.Int64("account_id", id), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *LedgerHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.accountIDParam(w, r)
	if !ok {
		return
	}

	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for Withdraw", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	account, err := h.service.Withdraw(r.Context(), id, req.Amount)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			http.Error(w, "Account not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, domain.ErrInsufficientFunds) {
			http.Error(w, "Insufficient funds", http.StatusConflict)
			return
		}
		h.logger.Error("Failed to withdraw", zap.Int64("account_id", id), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *LedgerHandler) SetBudgetHandler(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}
	if strings.TrimSpace(category) == "" {
		http.Error(w, "Category is required", http.StatusBadRequest)
		return
	}

	var req SetBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for SetBudget", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetBudget(r.Context(), category, req.Limit); err != nil {
		h.logger.Error("Failed to set budget", zap.String("category", category), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LedgerHandler) CheckBudgetHandler(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.CheckBudget(r.Context())
	if err != nil {
		h.logger.Error("Failed to check budgets", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	resp := make([]BudgetStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		resp = append(resp, BudgetStatusResponse{
			Category:  st.Category,
			Spent:     st.Spent,
			Budget:    st.Budget,
			Remaining: st.Remaining,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) AddTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req AddTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for AddTransaction", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		http.Error(w, "Type must be income or expense", http.StatusBadRequest)
		return
	}

	tx, err := h.service.AddTransaction(r.Context(), txType, req.Category, req.Amount, req.Notes)
	if err != nil {
		h.logger.Error("Failed to add transaction", zap.String("category", req.Category), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *LedgerHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	transactions, err := h.service.ListTransactions(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list transactions", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	resp := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		resp = append(resp, toTransactionResponse(&transactions[i]))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *LedgerHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.GenerateReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to generate report", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, ReportResponse{
		TotalIncome:    report.TotalIncome,
		TotalExpenses:  report.TotalExpenses,
		CurrentBalance: report.CurrentBalance,
	})
}
