package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

// ErrAmbiguousEntry is returned when a manual journal row sets both or
// neither of its debit and credit amounts. The mutual exclusivity of
// the two input fields is a form convenience; by the time rows reach
// the builder exactly one side must carry the amount.
var ErrAmbiguousEntry = errors.New("line must set exactly one of debit or credit")

type ManualJournalLine struct {
	AccountID   string
	Debit       *decimal.Decimal
	Credit      *decimal.Decimal
	Description string
}

type ManualJournalInput struct {
	TransactionDate       time.Time
	Description           string
	IsReversal            bool
	ScheduledReversalDate *time.Time
	Lines                 []ManualJournalLine
}

// ExpenseComponent is one funding or category split of an expense.
type ExpenseComponent struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// TaxLine is an already-resolved output of the external tax calculator
// (VAT, withholding). The calculator decides direction and amount; the
// builder only places the line.
type TaxLine struct {
	AccountID   string
	EntryType   domain.EntryType
	Amount      decimal.Decimal
	Description string
}

type ExpenseInput struct {
	TransactionDate time.Time
	Description     string
	Payments        []ExpenseComponent
	Categories      []ExpenseComponent
	TaxLines        []TaxLine
}

// BuildManualJournal turns user-entered debit/credit rows into a draft
// transaction. Blank rows are dropped; each remaining row must carry
// exactly one of the two amounts. Account references must resolve in
// the supplied metadata map. Resolution and shape errors are reported
// here, before validation is ever attempted.
func BuildManualJournal(input ManualJournalInput, accounts map[string]domain.Account) (domain.Transaction, error) {
	transactionID := uuid.NewString()

	var lines []domain.LedgerLine
	for i, row := range input.Lines {
		hasDebit := row.Debit != nil && !row.Debit.IsZero()
		hasCredit := row.Credit != nil && !row.Credit.IsZero()
		if !hasDebit && !hasCredit {
			// Blank row left behind by the form.
			continue
		}
		if hasDebit && hasCredit {
			return domain.Transaction{}, fmt.Errorf("line %d: %w", i+1, ErrAmbiguousEntry)
		}

		if _, ok := accounts[row.AccountID]; !ok {
			return domain.Transaction{}, fmt.Errorf("line %d references account %q: %w", i+1, row.AccountID, domain.ErrAccountNotFound)
		}

		entryType := domain.EntryTypeDebit
		amount := decimal.Zero
		if hasDebit {
			amount = *row.Debit
		} else {
			entryType = domain.EntryTypeCredit
			amount = *row.Credit
		}

		lines = append(lines, domain.LedgerLine{
			ID:            uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     row.AccountID,
			EntryType:     entryType,
			Amount:        amount,
			Description:   row.Description,
		})
	}

	if len(lines) == 0 {
		return domain.Transaction{}, domain.ErrNoLines
	}

	return domain.Transaction{
		ID:                    transactionID,
		TransactionDate:       input.TransactionDate,
		Description:           input.Description,
		Status:                domain.TransactionStatusDraft,
		SourceType:            domain.SourceTypeManualJournal,
		IsReversal:            input.IsReversal,
		ScheduledReversalDate: input.ScheduledReversalDate,
		Lines:                 lines,
	}, nil
}

// BuildExpense maps an expense document onto ledger lines: one credit
// per funding account, one debit per category split, plus any tax lines
// exactly as the tax calculator resolved them.
func BuildExpense(input ExpenseInput, accounts map[string]domain.Account) (domain.Transaction, error) {
	transactionID := uuid.NewString()

	var lines []domain.LedgerLine
	appendComponent := func(component ExpenseComponent, entryType domain.EntryType) error {
		if component.Amount.IsZero() {
			return nil
		}
		if _, ok := accounts[component.AccountID]; !ok {
			return fmt.Errorf("expense references account %q: %w", component.AccountID, domain.ErrAccountNotFound)
		}
		lines = append(lines, domain.LedgerLine{
			ID:            uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     component.AccountID,
			EntryType:     entryType,
			Amount:        component.Amount,
			Description:   component.Description,
		})
		return nil
	}

	for _, category := range input.Categories {
		if err := appendComponent(category, domain.EntryTypeDebit); err != nil {
			return domain.Transaction{}, err
		}
	}
	for _, payment := range input.Payments {
		if err := appendComponent(payment, domain.EntryTypeCredit); err != nil {
			return domain.Transaction{}, err
		}
	}
	for _, tax := range input.TaxLines {
		if err := appendComponent(ExpenseComponent{
			AccountID:   tax.AccountID,
			Amount:      tax.Amount,
			Description: tax.Description,
		}, tax.EntryType); err != nil {
			return domain.Transaction{}, err
		}
	}

	if len(lines) == 0 {
		return domain.Transaction{}, domain.ErrNoLines
	}

	return domain.Transaction{
		ID:              transactionID,
		TransactionDate: input.TransactionDate,
		Description:     input.Description,
		Status:          domain.TransactionStatusDraft,
		SourceType:      domain.SourceTypeExpense,
		Lines:           lines,
	}, nil
}

// BuildReversal produces the mirror of a posted transaction: every
// line's entry type flipped, amounts preserved. Flipping a balanced set
// preserves balance, so the result re-validates trivially. The caller
// is responsible for checking the original's status first.
func BuildReversal(original domain.Transaction, reversalDate time.Time) domain.Transaction {
	transactionID := uuid.NewString()
	originalID := original.ID

	lines := make([]domain.LedgerLine, 0, len(original.Lines))
	for _, line := range original.Lines {
		lines = append(lines, domain.LedgerLine{
			ID:            uuid.NewString(),
			TransactionID: transactionID,
			AccountID:     line.AccountID,
			EntryType:     line.EntryType.Opposite(),
			Amount:        line.Amount,
			Description:   fmt.Sprintf("Reversal of %s", original.TransactionNumber),
		})
	}

	return domain.Transaction{
		ID:                      transactionID,
		TransactionDate:         reversalDate,
		Description:             fmt.Sprintf("Reversal of %s: %s", original.TransactionNumber, original.Description),
		Status:                  domain.TransactionStatusDraft,
		SourceType:              domain.SourceTypeReversal,
		ReversalOfTransactionID: &originalID,
		Lines:                   lines,
	}
}
