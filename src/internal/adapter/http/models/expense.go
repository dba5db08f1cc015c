package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

type ExpenseComponentRequest struct {
	AccountCode string          `json:"accountCode"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// TaxLineRequest is the already-resolved output of the tax calculator:
// direction and amount are decided upstream, the posting core places
// the line as given.
type TaxLineRequest struct {
	AccountCode string          `json:"accountCode"`
	EntryType   string          `json:"entryType"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type RecordExpenseRequest struct {
	TransactionDate string                    `json:"transactionDate"`
	Description     string                    `json:"description"`
	Payments        []ExpenseComponentRequest `json:"payments"`
	Categories      []ExpenseComponentRequest `json:"categories"`
	TaxLines        []TaxLineRequest          `json:"taxLines,omitempty"`
}

func (r RecordExpenseRequest) Validate() error {
	var errs []string

	if _, err := time.Parse(transactionDateLayout, strings.TrimSpace(r.TransactionDate)); err != nil {
		errs = append(errs, "transactionDate must be formatted as YYYY-MM-DD")
	}
	if len(r.Payments) == 0 {
		errs = append(errs, "at least one payment account is required")
	}
	if len(r.Categories) == 0 {
		errs = append(errs, "at least one category line is required")
	}

	for _, payment := range r.Payments {
		if strings.TrimSpace(payment.AccountCode) == "" {
			errs = append(errs, "payment accountCode is required")
		}
		if payment.Amount.IsNegative() {
			errs = append(errs, "payment amount cannot be negative")
		}
	}
	for _, category := range r.Categories {
		if strings.TrimSpace(category.AccountCode) == "" {
			errs = append(errs, "category accountCode is required")
		}
		if category.Amount.IsNegative() {
			errs = append(errs, "category amount cannot be negative")
		}
	}
	for _, tax := range r.TaxLines {
		if strings.TrimSpace(tax.AccountCode) == "" {
			errs = append(errs, "tax line accountCode is required")
		}
		if !domain.EntryType(strings.ToUpper(strings.TrimSpace(tax.EntryType))).Valid() {
			errs = append(errs, "tax line entryType must be DEBIT or CREDIT")
		}
		if tax.Amount.IsNegative() {
			errs = append(errs, "tax line amount cannot be negative")
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (r RecordExpenseRequest) ParsedTransactionDate() time.Time {
	date, _ := time.Parse(transactionDateLayout, strings.TrimSpace(r.TransactionDate))
	return date
}
