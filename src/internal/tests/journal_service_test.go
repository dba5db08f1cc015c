package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/models"
	"github.com/sente-books/ledger-service/src/internal/adapter/repository/memory"
	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/ledger"
	"github.com/sente-books/ledger-service/src/internal/usecase/services"
)

type fixture struct {
	store   *memory.Store
	account *services.AccountService
	journal *services.JournalService
	expense *services.ExpenseService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	seed := []domain.Account{
		{ID: "acc-cash", Code: "1000", Name: "Cash on Hand", Type: domain.AccountTypeAsset, AllowManualJournal: true},
		{ID: "acc-bank", Code: "1010", Name: "Bank Account", Type: domain.AccountTypeAsset, AllowManualJournal: true},
		{ID: "acc-ar", Code: "1200", Name: "Accounts Receivable", Type: domain.AccountTypeAsset, AllowManualJournal: false},
		{ID: "acc-sales", Code: "4000", Name: "Sales Revenue", Type: domain.AccountTypeRevenue, AllowManualJournal: true},
		{ID: "acc-rent", Code: "5100", Name: "Rent Expense", Type: domain.AccountTypeExpense, AllowManualJournal: true},
		{ID: "acc-supplies", Code: "5300", Name: "Office Supplies", Type: domain.AccountTypeExpense, AllowManualJournal: true},
		{ID: "acc-vat", Code: "1400", Name: "VAT Receivable", Type: domain.AccountTypeAsset, AllowManualJournal: true},
	}
	for _, account := range seed {
		if _, err := store.Accounts().Create(context.Background(), account); err != nil {
			t.Fatalf("seed account %s: %v", account.Code, err)
		}
	}

	accountService := services.NewAccountService(store.Accounts())
	journalService := services.NewJournalService(store.Transactions(), store.Accounts(), accountService)
	expenseService := services.NewExpenseService(accountService, journalService)

	return &fixture{
		store:   store,
		account: accountService,
		journal: journalService,
		expense: expenseService,
	}
}

func (f *fixture) balance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	account, err := f.store.Accounts().GetByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("get account %s: %v", code, err)
	}
	return account.Balance
}

func debitCredit(debitCode, creditCode, amount string) []models.JournalLineRequest {
	d := decimal.RequireFromString(amount)
	return []models.JournalLineRequest{
		{AccountCode: debitCode, Debit: &d},
		{AccountCode: creditCode, Credit: &d},
	}
}

func TestCreateJournalPostImmediatelyUpdatesBalances(t *testing.T) {
	f := newFixture(t)

	resp, err := f.journal.CreateJournal(context.Background(), models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Description:     "Stationery",
		Post:            true,
		Lines:           debitCredit("5300", "1000", "100.00"),
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
	if resp.Data.TransactionNumber != "JRN-000001" {
		t.Fatalf("expected JRN-000001, got %s", resp.Data.TransactionNumber)
	}
	if resp.Data.PostedAt == "" {
		t.Fatal("expected postedAt to be set")
	}

	if got := f.balance(t, "5300"); !got.Equal(decimal.RequireFromString("100.00")) {
		t.Fatalf("expected Office Supplies balance 100.00, got %s", got)
	}
	if got := f.balance(t, "1000"); !got.Equal(decimal.RequireFromString("-100.00")) {
		t.Fatalf("expected Cash balance -100.00, got %s", got)
	}
}

func TestCreateJournalDraftLeavesBalancesUntouched(t *testing.T) {
	f := newFixture(t)

	resp, err := f.journal.CreateJournal(context.Background(), models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Description:     "Pending entry",
		Lines:           debitCredit("5100", "1010", "250.00"),
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data.Status != string(domain.TransactionStatusDraft) {
		t.Fatalf("expected DRAFT, got %s", resp.Data.Status)
	}
	if resp.Data.TransactionNumber != "" {
		t.Fatalf("drafts must not consume a transaction number, got %s", resp.Data.TransactionNumber)
	}

	if got := f.balance(t, "5100"); !got.IsZero() {
		t.Fatalf("expected Rent balance unchanged, got %s", got)
	}
	if got := f.balance(t, "1010"); !got.IsZero() {
		t.Fatalf("expected Bank balance unchanged, got %s", got)
	}
}

func TestPostJournalPromotesDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.journal.CreateJournal(ctx, models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Lines:           debitCredit("5100", "1010", "250.00"),
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	resp, err := f.journal.PostJournal(ctx, models.PostJournalRequest{TransactionID: draft.Data.TransactionID})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data.Status != string(domain.TransactionStatusPosted) {
		t.Fatalf("expected POSTED, got %s", resp.Data.Status)
	}
	if resp.Data.TransactionNumber == "" {
		t.Fatal("expected a transaction number on posting")
	}

	if got := f.balance(t, "5100"); !got.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("expected Rent balance 250.00, got %s", got)
	}
}

func TestPostJournalRejectsAlreadyPosted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	posted, err := f.journal.CreateJournal(ctx, models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Post:            true,
		Lines:           debitCredit("5100", "1010", "250.00"),
	})
	if err != nil {
		t.Fatalf("create posted journal: %v", err)
	}

	_, err = f.journal.PostJournal(ctx, models.PostJournalRequest{TransactionID: posted.Data.TransactionID})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	if got := f.balance(t, "5100"); !got.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("balances must not double-apply, got %s", got)
	}
}

func TestCreateJournalImbalanceReportsViolationsWithoutStateChange(t *testing.T) {
	f := newFixture(t)

	rent := decimal.RequireFromString("500.00")
	cash := decimal.RequireFromString("450.00")
	resp, err := f.journal.CreateJournal(context.Background(), models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Post:            true,
		Lines: []models.JournalLineRequest{
			{AccountCode: "5100", Debit: &rent},
			{AccountCode: "1000", Credit: &cash},
		},
	})
	if !errors.Is(err, domain.ErrPostingRejected) {
		t.Fatalf("expected ErrPostingRejected, got %v", err)
	}
	if len(resp.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(resp.Violations))
	}
	violation := resp.Violations[0]
	if violation.Code != ledger.ViolationImbalance {
		t.Fatalf("expected IMBALANCE, got %s", violation.Code)
	}
	for _, fragment := range []string{"500.00", "450.00", "50.00"} {
		if !strings.Contains(violation.Message, fragment) {
			t.Fatalf("expected message to mention %s, got %q", fragment, violation.Message)
		}
	}

	if got := f.balance(t, "5100"); !got.IsZero() {
		t.Fatalf("rejected post must not move balances, got %s", got)
	}
	if got := f.balance(t, "1000"); !got.IsZero() {
		t.Fatalf("rejected post must not move balances, got %s", got)
	}
}

func TestCreateJournalControlAccountRejected(t *testing.T) {
	f := newFixture(t)

	resp, err := f.journal.CreateJournal(context.Background(), models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Post:            true,
		Lines:           debitCredit("1200", "4000", "200.00"),
	})
	if !errors.Is(err, domain.ErrPostingRejected) {
		t.Fatalf("expected ErrPostingRejected, got %v", err)
	}
	if len(resp.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(resp.Violations))
	}
	if resp.Violations[0].Code != ledger.ViolationControlAccount {
		t.Fatalf("expected CONTROL_ACCOUNT, got %s", resp.Violations[0].Code)
	}
	if len(resp.Violations[0].AccountCodes) != 1 || resp.Violations[0].AccountCodes[0] != "1200" {
		t.Fatalf("expected offending code 1200, got %v", resp.Violations[0].AccountCodes)
	}
}

func TestCancelJournalDraftFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.journal.CreateJournal(ctx, models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Lines:           debitCredit("5300", "1000", "75.00"),
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	resp, err := f.journal.CancelJournal(ctx, models.CancelJournalRequest{TransactionID: draft.Data.TransactionID})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data.Status != string(domain.TransactionStatusCancelled) {
		t.Fatalf("expected CANCELLED, got %s", resp.Data.Status)
	}

	_, err = f.journal.CancelJournal(ctx, models.CancelJournalRequest{TransactionID: draft.Data.TransactionID})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on repeat cancel, got %v", err)
	}

	_, err = f.journal.PostJournal(ctx, models.PostJournalRequest{TransactionID: draft.Data.TransactionID})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("cancelled journal must not be postable, got %v", err)
	}
}

func TestVoidTransactionRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	posted, err := f.journal.CreateJournal(ctx, models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Description:     "Fuel",
		Post:            true,
		Lines:           debitCredit("5100", "1010", "1000.00"),
	})
	if err != nil {
		t.Fatalf("post journal: %v", err)
	}

	resp, err := f.journal.VoidTransaction(ctx, models.VoidTransactionRequest{TransactionID: posted.Data.TransactionID})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if resp.Data.SourceType != string(domain.SourceTypeReversal) {
		t.Fatalf("expected REVERSAL source, got %s", resp.Data.SourceType)
	}
	if resp.Data.Status != string(domain.TransactionStatusPosted) {
		t.Fatalf("reversal must be POSTED, got %s", resp.Data.Status)
	}
	if resp.Data.TransactionNumber != "REV-000001" {
		t.Fatalf("expected REV-000001, got %s", resp.Data.TransactionNumber)
	}
	if resp.Data.ReversalOfTransactionID != posted.Data.TransactionID {
		t.Fatalf("reversal must reference the original, got %s", resp.Data.ReversalOfTransactionID)
	}

	original, err := f.journal.GetTransaction(ctx, posted.Data.TransactionID)
	if err != nil {
		t.Fatalf("get original: %v", err)
	}
	if original.Data.Status != string(domain.TransactionStatusVoided) {
		t.Fatalf("expected VOIDED original, got %s", original.Data.Status)
	}

	if got := f.balance(t, "5100"); !got.IsZero() {
		t.Fatalf("expected Rent balance back to zero, got %s", got)
	}
	if got := f.balance(t, "1010"); !got.IsZero() {
		t.Fatalf("expected Bank balance back to zero, got %s", got)
	}
}

func TestVoidTransactionTwiceRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	posted, err := f.journal.CreateJournal(ctx, models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Post:            true,
		Lines:           debitCredit("5100", "1010", "1000.00"),
	})
	if err != nil {
		t.Fatalf("post journal: %v", err)
	}

	if _, err := f.journal.VoidTransaction(ctx, models.VoidTransactionRequest{TransactionID: posted.Data.TransactionID}); err != nil {
		t.Fatalf("first void: %v", err)
	}

	_, err = f.journal.VoidTransaction(ctx, models.VoidTransactionRequest{TransactionID: posted.Data.TransactionID})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on double void, got %v", err)
	}

	// One reversal only: balances stay at zero, not negated twice.
	if got := f.balance(t, "5100"); !got.IsZero() {
		t.Fatalf("expected Rent balance zero after single reversal, got %s", got)
	}
}

func TestVoidDraftRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.journal.CreateJournal(ctx, models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Lines:           debitCredit("5100", "1010", "10.00"),
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	_, err = f.journal.VoidTransaction(ctx, models.VoidTransactionRequest{TransactionID: draft.Data.TransactionID})
	if !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState voiding a draft, got %v", err)
	}
}

func TestGetTransactionNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.journal.GetTransaction(context.Background(), "does-not-exist")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListScheduledReversals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	accrual, err := f.journal.CreateJournal(ctx, models.CreateJournalRequest{
		TransactionDate:       "2026-03-31",
		Description:           "Month-end accrual",
		Post:                  true,
		IsReversal:            true,
		ScheduledReversalDate: "2026-04-01",
		Lines:                 debitCredit("5100", "1010", "300.00"),
	})
	if err != nil {
		t.Fatalf("post accrual: %v", err)
	}

	before, err := f.journal.ListScheduledReversals(ctx, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list before due date: %v", err)
	}
	if len(before.Data.Transactions) != 0 {
		t.Fatalf("expected nothing due before the scheduled date, got %d", len(before.Data.Transactions))
	}

	due, err := f.journal.ListScheduledReversals(ctx, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list after due date: %v", err)
	}
	if len(due.Data.Transactions) != 1 {
		t.Fatalf("expected 1 due reversal, got %d", len(due.Data.Transactions))
	}
	if due.Data.Transactions[0].TransactionID != accrual.Data.TransactionID {
		t.Fatal("expected the accrual to be listed")
	}
}

func TestCreateJournalUnknownAccountCode(t *testing.T) {
	f := newFixture(t)

	_, err := f.journal.CreateJournal(context.Background(), models.CreateJournalRequest{
		TransactionDate: "2026-03-15",
		Lines:           debitCredit("9999", "1000", "10.00"),
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

