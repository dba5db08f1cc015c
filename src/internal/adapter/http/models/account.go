package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

type CreateAccountRequest struct {
	Code               string `json:"code"`
	Name               string `json:"name"`
	AccountType        string `json:"accountType"`
	AllowManualJournal *bool  `json:"allowManualJournal"`
}

func (r CreateAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.Code) == "" {
		errs = append(errs, "code is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	accountType := domain.AccountType(strings.ToUpper(strings.TrimSpace(r.AccountType)))
	if !accountType.Valid() {
		errs = append(errs, "accountType must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type AccountResponse struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	AccountType        string          `json:"accountType"`
	AllowManualJournal bool            `json:"allowManualJournal"`
	Balance            decimal.Decimal `json:"balance"`
	CreatedAt          string          `json:"createdAt"`
	UpdatedAt          string          `json:"updatedAt"`
}

type RebuildBalancesResponse struct {
	AccountsUpdated int64 `json:"accountsUpdated"`
}
