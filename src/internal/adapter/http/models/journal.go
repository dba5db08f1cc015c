package models

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const transactionDateLayout = "2006-01-02"

// JournalLineRequest mirrors the journal form: each row carries an
// account code and exactly one of the debit/credit amounts. Rows with
// neither amount are treated as blank and dropped by the builder.
type JournalLineRequest struct {
	AccountCode string           `json:"accountCode"`
	Debit       *decimal.Decimal `json:"debit,omitempty"`
	Credit      *decimal.Decimal `json:"credit,omitempty"`
	Description string           `json:"description"`
}

type CreateJournalRequest struct {
	TransactionDate       string               `json:"transactionDate"`
	Description           string               `json:"description"`
	Post                  bool                 `json:"post"`
	IsReversal            bool                 `json:"isReversal"`
	ScheduledReversalDate string               `json:"scheduledReversalDate,omitempty"`
	Lines                 []JournalLineRequest `json:"lines"`
}

func (r CreateJournalRequest) Validate() error {
	var errs []string

	if _, err := time.Parse(transactionDateLayout, strings.TrimSpace(r.TransactionDate)); err != nil {
		errs = append(errs, "transactionDate must be formatted as YYYY-MM-DD")
	}
	if len(r.Lines) == 0 {
		errs = append(errs, "at least one line is required")
	}
	for i, line := range r.Lines {
		if strings.TrimSpace(line.AccountCode) == "" {
			errs = append(errs, lineError(i, "accountCode is required"))
		}
		if line.Debit != nil && line.Debit.IsNegative() {
			errs = append(errs, lineError(i, "debit cannot be negative"))
		}
		if line.Credit != nil && line.Credit.IsNegative() {
			errs = append(errs, lineError(i, "credit cannot be negative"))
		}
	}

	scheduled := strings.TrimSpace(r.ScheduledReversalDate)
	if scheduled != "" {
		if !r.IsReversal {
			errs = append(errs, "scheduledReversalDate requires isReversal to be true")
		}
		if _, err := time.Parse(transactionDateLayout, scheduled); err != nil {
			errs = append(errs, "scheduledReversalDate must be formatted as YYYY-MM-DD")
		}
	} else if r.IsReversal {
		errs = append(errs, "isReversal requires scheduledReversalDate")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r CreateJournalRequest) ParsedTransactionDate() time.Time {
	date, _ := time.Parse(transactionDateLayout, strings.TrimSpace(r.TransactionDate))
	return date
}

func (r CreateJournalRequest) ParsedScheduledReversalDate() *time.Time {
	scheduled := strings.TrimSpace(r.ScheduledReversalDate)
	if scheduled == "" {
		return nil
	}
	date, err := time.Parse(transactionDateLayout, scheduled)
	if err != nil {
		return nil
	}
	return &date
}

type PostJournalRequest struct {
	TransactionID string `json:"transactionId"`
}

func (r PostJournalRequest) Validate() error {
	if strings.TrimSpace(r.TransactionID) == "" {
		return errors.New("transactionId is required")
	}
	return nil
}

type CancelJournalRequest struct {
	TransactionID string `json:"transactionId"`
}

func (r CancelJournalRequest) Validate() error {
	if strings.TrimSpace(r.TransactionID) == "" {
		return errors.New("transactionId is required")
	}
	return nil
}

type VoidTransactionRequest struct {
	TransactionID string `json:"transactionId"`
	ReversalDate  string `json:"reversalDate,omitempty"`
}

func (r VoidTransactionRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.TransactionID) == "" {
		errs = append(errs, "transactionId is required")
	}
	if reversalDate := strings.TrimSpace(r.ReversalDate); reversalDate != "" {
		if _, err := time.Parse(transactionDateLayout, reversalDate); err != nil {
			errs = append(errs, "reversalDate must be formatted as YYYY-MM-DD")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r VoidTransactionRequest) ParsedReversalDate() *time.Time {
	reversalDate := strings.TrimSpace(r.ReversalDate)
	if reversalDate == "" {
		return nil
	}
	date, err := time.Parse(transactionDateLayout, reversalDate)
	if err != nil {
		return nil
	}
	return &date
}

type LedgerLineResponse struct {
	AccountID   string          `json:"accountId"`
	AccountCode string          `json:"accountCode,omitempty"`
	EntryType   string          `json:"entryType"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type TransactionResponse struct {
	TransactionID           string               `json:"transactionId"`
	TransactionNumber       string               `json:"transactionNumber,omitempty"`
	TransactionDate         string               `json:"transactionDate"`
	Description             string               `json:"description"`
	Status                  string               `json:"status"`
	SourceType              string               `json:"sourceType"`
	IsReversal              bool                 `json:"isReversal,omitempty"`
	ScheduledReversalDate   string               `json:"scheduledReversalDate,omitempty"`
	ReversalOfTransactionID string               `json:"reversalOfTransactionId,omitempty"`
	PostedAt                string               `json:"postedAt,omitempty"`
	Lines                   []LedgerLineResponse `json:"lines,omitempty"`
}

type ScheduledReversalsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

func lineError(index int, message string) string {
	return "line " + strconv.Itoa(index+1) + ": " + message
}
