package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

func amount(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func TestBuildManualJournalInfersEntryTypes(t *testing.T) {
	built, err := BuildManualJournal(ManualJournalInput{
		TransactionDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Description:     "March rent",
		Lines: []ManualJournalLine{
			{AccountID: "acc-rent", Debit: amount("500.00")},
			{AccountID: "acc-cash", Credit: amount("500.00")},
		},
	}, testAccounts())

	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusDraft, built.Status)
	assert.Equal(t, domain.SourceTypeManualJournal, built.SourceType)
	assert.NotEmpty(t, built.ID)
	require.Len(t, built.Lines, 2)

	assert.Equal(t, domain.EntryTypeDebit, built.Lines[0].EntryType)
	assert.True(t, built.Lines[0].Amount.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, domain.EntryTypeCredit, built.Lines[1].EntryType)
	for _, l := range built.Lines {
		assert.Equal(t, built.ID, l.TransactionID)
		assert.NotEmpty(t, l.ID)
	}
}

func TestBuildManualJournalDropsBlankRows(t *testing.T) {
	built, err := BuildManualJournal(ManualJournalInput{
		TransactionDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []ManualJournalLine{
			{AccountID: "acc-rent", Debit: amount("500.00")},
			{AccountID: "acc-bank"},
			{AccountID: "acc-supplies", Debit: amount("0.00"), Credit: amount("0.00")},
			{AccountID: "acc-cash", Credit: amount("500.00")},
		},
	}, testAccounts())

	require.NoError(t, err)
	assert.Len(t, built.Lines, 2)
}

func TestBuildManualJournalRejectsBothSides(t *testing.T) {
	_, err := BuildManualJournal(ManualJournalInput{
		Lines: []ManualJournalLine{
			{AccountID: "acc-rent", Debit: amount("10.00"), Credit: amount("10.00")},
		},
	}, testAccounts())

	require.ErrorIs(t, err, ErrAmbiguousEntry)
	assert.Contains(t, err.Error(), "line 1")
}

func TestBuildManualJournalRejectsUnknownAccount(t *testing.T) {
	_, err := BuildManualJournal(ManualJournalInput{
		Lines: []ManualJournalLine{
			{AccountID: "acc-ghost", Debit: amount("10.00")},
		},
	}, testAccounts())

	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestBuildManualJournalAllBlankRows(t *testing.T) {
	_, err := BuildManualJournal(ManualJournalInput{
		Lines: []ManualJournalLine{
			{AccountID: "acc-rent"},
			{AccountID: "acc-cash"},
		},
	}, testAccounts())

	require.ErrorIs(t, err, domain.ErrNoLines)
}

func TestBuildManualJournalCarriesReversalIntent(t *testing.T) {
	scheduled := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	built, err := BuildManualJournal(ManualJournalInput{
		TransactionDate:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Description:           "Month-end accrual",
		IsReversal:            true,
		ScheduledReversalDate: &scheduled,
		Lines: []ManualJournalLine{
			{AccountID: "acc-rent", Debit: amount("1200.00")},
			{AccountID: "acc-ap2", Credit: amount("1200.00")},
		},
	}, map[string]domain.Account{
		"acc-rent": {ID: "acc-rent", Code: "5100", Type: domain.AccountTypeExpense, AllowManualJournal: true},
		"acc-ap2":  {ID: "acc-ap2", Code: "2300", Type: domain.AccountTypeLiability, AllowManualJournal: true},
	})

	require.NoError(t, err)
	assert.True(t, built.IsReversal)
	require.NotNil(t, built.ScheduledReversalDate)
	assert.True(t, scheduled.Equal(*built.ScheduledReversalDate))
}

func TestBuildExpenseMapsComponents(t *testing.T) {
	built, err := BuildExpense(ExpenseInput{
		TransactionDate: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
		Description:     "Stationery run",
		Payments: []ExpenseComponent{
			{AccountID: "acc-cash", Amount: decimal.RequireFromString("118.00")},
		},
		Categories: []ExpenseComponent{
			{AccountID: "acc-supplies", Amount: decimal.RequireFromString("100.00")},
		},
		TaxLines: []TaxLine{
			{AccountID: "acc-bank", EntryType: domain.EntryTypeDebit, Amount: decimal.RequireFromString("18.00"), Description: "VAT 18%"},
		},
	}, testAccounts())

	require.NoError(t, err)
	assert.Equal(t, domain.SourceTypeExpense, built.SourceType)
	require.Len(t, built.Lines, 3)

	assert.Equal(t, domain.EntryTypeDebit, built.Lines[0].EntryType)
	assert.Equal(t, "acc-supplies", built.Lines[0].AccountID)
	assert.Equal(t, domain.EntryTypeCredit, built.Lines[1].EntryType)
	assert.Equal(t, "acc-cash", built.Lines[1].AccountID)
	assert.Equal(t, domain.EntryTypeDebit, built.Lines[2].EntryType)
	assert.Equal(t, "VAT 18%", built.Lines[2].Description)
}

func TestBuildExpenseSkipsZeroComponents(t *testing.T) {
	built, err := BuildExpense(ExpenseInput{
		Payments: []ExpenseComponent{
			{AccountID: "acc-cash", Amount: decimal.RequireFromString("40.00")},
			{AccountID: "acc-bank", Amount: decimal.Zero},
		},
		Categories: []ExpenseComponent{
			{AccountID: "acc-supplies", Amount: decimal.RequireFromString("40.00")},
		},
	}, testAccounts())

	require.NoError(t, err)
	assert.Len(t, built.Lines, 2)
}

func TestBuildExpenseUnknownAccount(t *testing.T) {
	_, err := BuildExpense(ExpenseInput{
		Payments: []ExpenseComponent{
			{AccountID: "acc-ghost", Amount: decimal.RequireFromString("10.00")},
		},
		Categories: []ExpenseComponent{
			{AccountID: "acc-supplies", Amount: decimal.RequireFromString("10.00")},
		},
	}, testAccounts())

	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestBuildReversalFlipsEveryLine(t *testing.T) {
	original := domain.Transaction{
		ID:                "orig-1",
		TransactionNumber: "EXP-000042",
		Description:       "Fuel purchase",
		Status:            domain.TransactionStatusPosted,
		SourceType:        domain.SourceTypeExpense,
		Lines: []domain.LedgerLine{
			line("acc-rent", domain.EntryTypeDebit, "1000.00"),
			line("acc-bank", domain.EntryTypeCredit, "1000.00"),
		},
	}

	reversalDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	reversal := BuildReversal(original, reversalDate)

	assert.NotEqual(t, original.ID, reversal.ID)
	assert.Equal(t, domain.SourceTypeReversal, reversal.SourceType)
	require.NotNil(t, reversal.ReversalOfTransactionID)
	assert.Equal(t, "orig-1", *reversal.ReversalOfTransactionID)
	assert.Contains(t, reversal.Description, "EXP-000042")
	assert.True(t, reversalDate.Equal(reversal.TransactionDate))

	require.Len(t, reversal.Lines, 2)
	assert.Equal(t, domain.EntryTypeCredit, reversal.Lines[0].EntryType)
	assert.Equal(t, domain.EntryTypeDebit, reversal.Lines[1].EntryType)
	for i, l := range reversal.Lines {
		assert.True(t, l.Amount.Equal(original.Lines[i].Amount))
		assert.Equal(t, original.Lines[i].AccountID, l.AccountID)
		assert.Equal(t, reversal.ID, l.TransactionID)
	}

	// A balanced original always yields a balanced reversal.
	assert.Empty(t, ValidateLines(reversal.Lines, testAccounts()))
}
