package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/models"
	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/ledger"
)

func TestRecordExpensePostsImmediately(t *testing.T) {
	f := newFixture(t)

	resp, err := f.expense.RecordExpense(context.Background(), models.RecordExpenseRequest{
		TransactionDate: "2026-05-02",
		Description:     "Stationery with VAT",
		Payments: []models.ExpenseComponentRequest{
			{AccountCode: "1000", Amount: decimal.RequireFromString("118.00")},
		},
		Categories: []models.ExpenseComponentRequest{
			{AccountCode: "5300", Amount: decimal.RequireFromString("100.00")},
		},
		TaxLines: []models.TaxLineRequest{
			{AccountCode: "1400", EntryType: "DEBIT", Amount: decimal.RequireFromString("18.00"), Description: "VAT 18%"},
		},
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !resp.Success || resp.Data == nil {
		t.Fatal("expected successful response with data")
	}
	if resp.Data.Status != string(domain.TransactionStatusPosted) {
		t.Fatalf("expected POSTED, got %s", resp.Data.Status)
	}
	if resp.Data.SourceType != string(domain.SourceTypeExpense) {
		t.Fatalf("expected EXPENSE source, got %s", resp.Data.SourceType)
	}
	if resp.Data.TransactionNumber != "EXP-000001" {
		t.Fatalf("expected EXP-000001, got %s", resp.Data.TransactionNumber)
	}
	if len(resp.Data.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(resp.Data.Lines))
	}

	if got := f.balance(t, "5300"); !got.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected Office Supplies 100.00, got %s", got)
	}
	if got := f.balance(t, "1400"); !got.Equal(decimal.RequireFromString("18.00")) {
		t.Fatalf("expected VAT Receivable 18.00, got %s", got)
	}
	if got := f.balance(t, "1000"); !got.Equal(decimal.RequireFromString("-118.00")) {
		t.Fatalf("expected Cash -118.00, got %s", got)
	}
}

func TestRecordExpenseImbalancedRejected(t *testing.T) {
	f := newFixture(t)

	resp, err := f.expense.RecordExpense(context.Background(), models.RecordExpenseRequest{
		TransactionDate: "2026-05-02",
		Payments: []models.ExpenseComponentRequest{
			{AccountCode: "1000", Amount: decimal.RequireFromString("90.00")},
		},
		Categories: []models.ExpenseComponentRequest{
			{AccountCode: "5300", Amount: decimal.RequireFromString("100.00")},
		},
	})
	if !errors.Is(err, domain.ErrPostingRejected) {
		t.Fatalf("expected ErrPostingRejected, got %v", err)
	}
	if len(resp.Violations) != 1 || resp.Violations[0].Code != ledger.ViolationImbalance {
		t.Fatalf("expected a single IMBALANCE violation, got %v", resp.Violations)
	}

	if got := f.balance(t, "5300"); !got.IsZero() {
		t.Fatalf("rejected expense must not move balances, got %s", got)
	}
	if got := f.balance(t, "1000"); !got.IsZero() {
		t.Fatalf("rejected expense must not move balances, got %s", got)
	}
}

func TestRecordExpenseUnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.expense.RecordExpense(context.Background(), models.RecordExpenseRequest{
		TransactionDate: "2026-05-02",
		Payments: []models.ExpenseComponentRequest{
			{AccountCode: "9999", Amount: decimal.RequireFromString("50.00")},
		},
		Categories: []models.ExpenseComponentRequest{
			{AccountCode: "5300", Amount: decimal.RequireFromString("50.00")},
		},
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestRecordExpenseControlAccountAllowedOnlyThroughFlag(t *testing.T) {
	// Control accounts are closed to every posting path, including the
	// expense flow, until their flag is lifted.
	f := newFixture(t)

	resp, err := f.expense.RecordExpense(context.Background(), models.RecordExpenseRequest{
		TransactionDate: "2026-05-02",
		Payments: []models.ExpenseComponentRequest{
			{AccountCode: "1200", Amount: decimal.RequireFromString("60.00")},
		},
		Categories: []models.ExpenseComponentRequest{
			{AccountCode: "5300", Amount: decimal.RequireFromString("60.00")},
		},
	})
	if !errors.Is(err, domain.ErrPostingRejected) {
		t.Fatalf("expected ErrPostingRejected, got %v", err)
	}
	if len(resp.Violations) != 1 || resp.Violations[0].Code != ledger.ViolationControlAccount {
		t.Fatalf("expected CONTROL_ACCOUNT violation, got %v", resp.Violations)
	}
}

func TestRecordExpenseValidationFailure(t *testing.T) {
	f := newFixture(t)

	_, err := f.expense.RecordExpense(context.Background(), models.RecordExpenseRequest{
		TransactionDate: "not-a-date",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
}
