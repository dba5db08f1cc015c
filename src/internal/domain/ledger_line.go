package domain

import "github.com/shopspring/decimal"

type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// Opposite returns the flipped entry type, used when building reversals.
func (e EntryType) Opposite() EntryType {
	if e == EntryTypeDebit {
		return EntryTypeCredit
	}
	return EntryTypeDebit
}

func (e EntryType) Valid() bool {
	return e == EntryTypeDebit || e == EntryTypeCredit
}

// LedgerLine is one side of a double entry. Amount is always positive;
// direction is carried by EntryType, never by a negative amount.
type LedgerLine struct {
	ID            string
	TransactionID string
	AccountID     string
	EntryType     EntryType
	Amount        decimal.Decimal
	Description   string
}
