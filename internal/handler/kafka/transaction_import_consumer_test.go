package kafka_handler

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ledger/internal/app/ledger"
	"ledger/internal/domain"
)

type importCall struct {
	importID string
	tx       domain.Transaction
}

type recordingService struct {
	ledger.LedgerService
	err   error
	seen  map[string]bool
	calls []importCall
}

func (s *recordingService) ImportTransaction(_ context.Context, importID string, txType domain.TransactionType, category string, amount decimal.Decimal, notes string, _ []byte) (*domain.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[importID] {
		return nil, domain.ErrDuplicateImport
	}
	s.seen[importID] = true
	tx := domain.Transaction{ID: int64(len(s.calls) + 1), Type: txType, Category: category, Amount: amount, Notes: notes}
	s.calls = append(s.calls, importCall{importID: importID, tx: tx})
	return &tx, nil
}

func TestHandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		svcErr    error
		wantErr   bool
		wantCalls int
	}{
		{name: "valid expense", value: `{"type":"expense","category":"Rent","amount":"950.00","notes":"October"}`, wantCalls: 1},
		{name: "numeric amount", value: `{"type":"income","category":"Salary","amount":2500}`, wantCalls: 1},
		{name: "malformed json is skipped", value: `{"type":`, wantCalls: 0},
		{name: "unknown type is skipped", value: `{"type":"transfer","category":"x","amount":"1"}`, wantCalls: 0},
		{name: "service error is returned", value: `{"type":"income","category":"Salary","amount":"1"}`, svcErr: errors.New("db down"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &recordingService{err: tt.svcErr}
			c := NewTransactionImportConsumer(svc, zap.NewNop())

			err := c.HandleMessage(context.Background(), kafka.Message{Topic: "imports", Offset: 3, Value: []byte(tt.value)})
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleMessage error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(svc.calls) != tt.wantCalls {
				t.Fatalf("ImportTransaction calls = %d, want %d", len(svc.calls), tt.wantCalls)
			}
		})
	}
}

func TestHandleMessagePassesFieldsAndDerivesImportID(t *testing.T) {
	svc := &recordingService{}
	c := NewTransactionImportConsumer(svc, zap.NewNop())

	msg := kafka.Message{
		Topic:     "ledger_transaction_imports",
		Partition: 2,
		Offset:    17,
		Value:     []byte(`{"type":"expense","category":"Rent","amount":"950.10","notes":"October"}`),
	}
	if err := c.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	got := svc.calls[0]
	if got.importID != "ledger_transaction_imports-2-17" {
		t.Fatalf("importID = %q", got.importID)
	}
	if got.tx.Type != domain.TransactionTypeExpense || got.tx.Category != "Rent" || got.tx.Notes != "October" {
		t.Fatalf("unexpected transaction: %+v", got.tx)
	}
	if !got.tx.Amount.Equal(decimal.RequireFromString("950.10")) {
		t.Fatalf("amount = %s, want 950.10", got.tx.Amount)
	}
}

func TestHandleMessageSkipsDuplicates(t *testing.T) {
	svc := &recordingService{}
	c := NewTransactionImportConsumer(svc, zap.NewNop())

	value := []byte(`{"import_id":"bank-export-001","type":"income","category":"Salary","amount":"10"}`)
	for offset := int64(0); offset < 2; offset++ {
		if err := c.HandleMessage(context.Background(), kafka.Message{Offset: offset, Value: value}); err != nil {
			t.Fatalf("HandleMessage offset %d: %v", offset, err)
		}
	}
	if len(svc.calls) != 1 || svc.calls[0].importID != "bank-export-001" {
		t.Fatalf("calls = %+v, want a single import of bank-export-001", svc.calls)
	}
}
