package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledger/internal/domain"
	"ledger/internal/outbox"
	"ledger/internal/repository/accounts_repo"
	"ledger/internal/repository/budgets_repo"
	"ledger/internal/repository/inbox_repo"
	"ledger/internal/repository/outbox_repo"
	"ledger/internal/repository/transactions_repo"
	"ledger/internal/util"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

const aboutText = "This Banking System allows you to create accounts, deposit, withdraw, check balance, and manage budgets."

type LedgerService interface {
	About() string
	CreateAccount(ctx context.Context, name string, initialBalance decimal.Decimal) (*domain.Account, error)
	GetBalance(ctx context.Context, accountID int64) (*domain.Account, error)
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	SetBudget(ctx context.Context, category string, limit decimal.Decimal) error
	CheckBudget(ctx context.Context) ([]domain.BudgetStatus, error)
	AddTransaction(ctx context.Context, txType domain.TransactionType, category string, amount decimal.Decimal, notes string) (*domain.Transaction, error)
	ImportTransaction(ctx context.Context, importID string, txType domain.TransactionType, category string, amount decimal.Decimal, notes string, payload []byte) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error)
	GenerateReport(ctx context.Context) (*domain.Report, error)
}

type ledgerService struct {
	db                *sql.DB
	accountRepo       accounts_repo.AccountRepository
	budgetRepo        budgets_repo.BudgetRepository
	transactionRepo   transactions_repo.TransactionRepository
	outboxRepo        outbox_repo.OutboxRepository
	inboxRepo         inbox_repo.InboxRepository
	transactionsTopic string
	now               func() time.Time
	logger            *zap.Logger
}

func NewLedgerService(
	db *sql.DB,
	accountRepo accounts_repo.AccountRepository,
	budgetRepo budgets_repo.BudgetRepository,
	transactionRepo transactions_repo.TransactionRepository,
	outboxRepo outbox_repo.OutboxRepository,
	inboxRepo inbox_repo.InboxRepository,
	transactionsTopic string,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		db:                db,
		accountRepo:       accountRepo,
		budgetRepo:        budgetRepo,
		transactionRepo:   transactionRepo,
		outboxRepo:        outboxRepo,
		inboxRepo:         inboxRepo,
		transactionsTopic: transactionsTopic,
		now:               time.Now,
		logger:            logger,
	}
}

func (s *ledgerService) About() string {
	return aboutText
}

func (s *ledgerService) CreateAccount(ctx context.Context, name string, initialBalance decimal.Decimal) (*domain.Account, error) {
	account, err := s.accountRepo.Create(ctx, name, initialBalance)
	if err != nil {
		s.logger.Error("Failed to create account", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to create account for %s: %w", name, err)
	}
	s.logger.Info("Account created",
		zap.Int64("account_id", account.ID),
		zap.String("name", account.Name),
		zap.String("balance", account.Balance.String()))
	return account, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("Account not found", zap.Int64("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to get account %d: %w", accountID, err)
	}
	return account, nil
}

// Deposit credits the account and logs an income transaction. If the ledger
// row cannot be written the credit is reverted.
func (s *ledgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.accountRepo.Credit(ctx, accountID, amount)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Warn("Deposit to unknown account", zap.Int64("account_id", accountID))
		}
		return nil, fmt.Errorf("failed to deposit to account %d: %w", accountID, err)
	}

	if _, err := s.AddTransaction(ctx, domain.TransactionTypeIncome, domain.CategoryDeposit, amount, ""); err != nil {
		if _, revertErr := s.accountRepo.Credit(ctx, accountID, amount.Neg()); revertErr != nil {
			s.logger.Error("Failed to revert deposit after ledger failure", zap.Int64("account_id", accountID), zap.Error(revertErr))
		}
		return nil, fmt.Errorf("failed to log deposit for account %d: %w", accountID, err)
	}

	s.logger.Info("Deposit completed",
		zap.Int64("account_id", accountID),
		zap.String("amount", amount.String()),
		zap.String("new_balance", account.Balance.String()))
	return account, nil
}

// Withdraw debits the account when the balance covers amount and logs an
// expense transaction. Rejected withdrawals log nothing.
func (s *ledgerService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*domain.Account, error) {
	account, err := s.accountRepo.Debit(ctx, accountID, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			s.logger.Warn("Withdrawal from unknown account", zap.Int64("account_id", accountID))
		case errors.Is(err, domain.ErrInsufficientFunds):
			s.logger.Warn("Insufficient funds for withdrawal",
				zap.Int64("account_id", accountID),
				zap.String("amount", amount.String()))
		}
		return nil, fmt.Errorf("failed to withdraw from account %d: %w", accountID, err)
	}

	if _, err := s.AddTransaction(ctx, domain.TransactionTypeExpense, domain.CategoryWithdrawal, amount, ""); err != nil {
		if _, revertErr := s.accountRepo.Credit(ctx, accountID, amount); revertErr != nil {
			s.logger.Error("Failed to revert withdrawal after ledger failure", zap.Int64("account_id", accountID), zap.Error(revertErr))
		}
		return nil, fmt.Errorf("failed to log withdrawal for account %d: %w", accountID, err)
	}

	s.logger.Info("Withdrawal completed",
		zap.Int64("account_id", accountID),
		zap.String("amount", amount.String()),
		zap.String("new_balance", account.Balance.String()))
	return account, nil
}

func (s *ledgerService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *ledgerService) SetBudget(ctx context.Context, category string, limit decimal.Decimal) error {
	if err := s.budgetRepo.Set(ctx, category, limit); err != nil {
		return fmt.Errorf("failed to set budget for %q: %w", category, err)
	}
	s.logger.Info("Budget set", zap.String("category", category), zap.String("limit", limit.String()))
	return nil
}

func (s *ledgerService) CheckBudget(ctx context.Context) ([]domain.BudgetStatus, error) {
	budgets, err := s.budgetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	statuses := make([]domain.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.transactionRepo.SumExpensesByCategory(ctx, s.db, b.Category)
		if err != nil {
			s.logger.Error("Failed to sum expenses for budget", zap.String("category", b.Category), zap.Error(err))
			return nil, fmt.Errorf("failed to check budget %q: %w", b.Category, err)
		}
		statuses = append(statuses, domain.BudgetStatus{
			Category:  b.Category,
			Spent:     spent,
			Budget:    b.Limit,
			Remaining: b.Limit.Sub(spent),
		})
	}
	return statuses, nil
}

// AddTransaction appends a ledger row and its outbox message atomically.
func (s *ledgerService) AddTransaction(ctx context.Context, txType domain.TransactionType, category string, amount decimal.Decimal, notes string) (*domain.Transaction, error) {
	if _, err := domain.ParseTransactionType(string(txType)); err != nil {
		return nil, fmt.Errorf("cannot log transaction of type %q: %w", txType, err)
	}

	now := s.now()
	transaction := domain.NewTransaction(txType, category, amount, notes, now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for ledger entry", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic while logging transaction, rolling back", zap.Any("panic", r))
			tx.Rollback()
			panic(r)
		}
	}()

	if err := s.addTransactionTx(ctx, tx, transaction, now); err != nil {
		s.logger.Error("Failed to log transaction, rolling back",
			zap.String("type", string(txType)),
			zap.String("category", category),
			zap.Error(err))
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit ledger entry", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Transaction logged",
		zap.Int64("transaction_id", transaction.ID),
		zap.String("type", string(transaction.Type)),
		zap.String("category", transaction.Category),
		zap.String("amount", transaction.Amount.String()))
	return transaction, nil
}

// ImportTransaction logs a transaction received from another system exactly
// once per importID. A repeated importID returns domain.ErrDuplicateImport
// and writes nothing.
func (s *ledgerService) ImportTransaction(ctx context.Context, importID string, txType domain.TransactionType, category string, amount decimal.Decimal, notes string, payload []byte) (*domain.Transaction, error) {
	if _, err := domain.ParseTransactionType(string(txType)); err != nil {
		return nil, fmt.Errorf("cannot import transaction of type %q: %w", txType, err)
	}

	now := s.now()
	transaction := domain.NewTransaction(txType, category, amount, notes, now)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("Failed to begin transaction for import", zap.String("import_id", importID), zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recovered panic while importing transaction, rolling back", zap.String("import_id", importID), zap.Any("panic", r))
			tx.Rollback()
			panic(r)
		}
	}()

	if err := s.addTransactionTx(ctx, tx, transaction, now); err != nil {
		s.logger.Error("Failed to log imported transaction, rolling back",
			zap.String("import_id", importID),
			zap.String("type", string(txType)),
			zap.String("category", category),
			zap.Error(err))
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back transaction", zap.String("import_id", importID), zap.Error(rbErr))
		}
		return nil, err
	}

	inboxMsg := &domain.InboxMessage{
		ID:            importID,
		TransactionID: transaction.ID,
		Payload:       payload,
		Status:        domain.InboxStatusProcessed,
		ReceivedAt:    now.UTC(),
	}
	if err := s.inboxRepo.CreateMessageTx(ctx, tx, inboxMsg); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("Failed to roll back transaction after inbox error", zap.String("import_id", importID), zap.Error(rbErr))
		}
		if errors.Is(err, domain.ErrDuplicateImport) {
			s.logger.Info("Transaction import already processed", zap.String("import_id", importID))
			return nil, err
		}
		s.logger.Error("Failed to record inbox message", zap.String("import_id", importID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit imported transaction", zap.String("import_id", importID), zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("Transaction imported",
		zap.String("import_id", importID),
		zap.Int64("transaction_id", transaction.ID),
		zap.String("type", string(transaction.Type)),
		zap.String("category", transaction.Category),
		zap.String("amount", transaction.Amount.String()))
	return transaction, nil
}

func (s *ledgerService) addTransactionTx(ctx context.Context, tx *sql.Tx, transaction *domain.Transaction, now time.Time) error {
	if err := s.transactionRepo.CreateTx(ctx, tx, transaction); err != nil {
		return err
	}

	payload, err := outbox.PrepareTransactionLoggedPayload(transaction, now)
	if err != nil {
		return fmt.Errorf("failed to prepare outbox payload for transaction %d: %w", transaction.ID, err)
	}

	msg := &domain.OutboxMessage{
		ID:          util.GenerateUUID(),
		AggregateID: transaction.ID,
		MessageType: domain.MessageTypeTransactionLogged,
		Topic:       s.transactionsTopic,
		Payload:     payload,
		Status:      domain.OutboxStatusPending,
		CreatedAt:   now.UTC(),
	}
	if err := s.outboxRepo.CreateMessageTx(ctx, tx, msg); err != nil {
		return fmt.Errorf("failed to create outbox message for transaction %d: %w", transaction.ID, err)
	}
	return nil
}

func (s *ledgerService) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	transactions, err := s.transactionRepo.ListRecent(ctx, s.db, limit)
	if err != nil {
		s.logger.Error("Failed to list transactions", zap.Error(err))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

func (s *ledgerService) GenerateReport(ctx context.Context) (*domain.Report, error) {
	income, err := s.transactionRepo.SumByType(ctx, s.db, domain.TransactionTypeIncome)
	if err != nil {
		s.logger.Error("Failed to sum income", zap.Error(err))
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}
	expenses, err := s.transactionRepo.SumByType(ctx, s.db, domain.TransactionTypeExpense)
	if err != nil {
		s.logger.Error("Failed to sum expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}
	return &domain.Report{
		TotalIncome:    income,
		TotalExpenses:  expenses,
		CurrentBalance: income.Sub(expenses),
	}, nil
}
