package domain

import "time"

type TransactionStatus string

const (
	TransactionStatusDraft     TransactionStatus = "DRAFT"
	TransactionStatusPosted    TransactionStatus = "POSTED"
	TransactionStatusVoided    TransactionStatus = "VOIDED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

type SourceType string

const (
	SourceTypeExpense       SourceType = "EXPENSE"
	SourceTypeManualJournal SourceType = "MANUAL_JOURNAL"
	SourceTypeReversal      SourceType = "REVERSAL"
)

// Transaction is a journal entry, expense record or reversal together
// with its ledger lines. Once posted, the line set is immutable; only a
// reversal transaction may counteract it.
type Transaction struct {
	ID                      string
	TransactionNumber       string
	TransactionDate         time.Time
	Description             string
	Status                  TransactionStatus
	SourceType              SourceType
	IsReversal              bool
	ScheduledReversalDate   *time.Time
	ReversalOfTransactionID *string
	Lines                   []LedgerLine
	CreatedAt               time.Time
	UpdatedAt               time.Time
	PostedAt                *time.Time
}
