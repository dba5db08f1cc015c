package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/models"
	"github.com/sente-books/ledger-service/src/internal/commons"
	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/ledger"
	"github.com/sente-books/ledger-service/src/internal/logger"
	"github.com/sente-books/ledger-service/src/internal/usecase/service_interfaces"
)

// ExpenseService records expenses as immediately posted journals. It
// maps the expense form onto ledger lines and hands the result to the
// posting engine; it never touches balances or transaction state
// itself.
type ExpenseService struct {
	accounts service_interfaces.AccountResolver
	posting  service_interfaces.PostingService
}

func NewExpenseService(accounts service_interfaces.AccountResolver, posting service_interfaces.PostingService) *ExpenseService {
	return &ExpenseService{
		accounts: accounts,
		posting:  posting,
	}
}

func (s *ExpenseService) RecordExpense(ctx context.Context, req models.RecordExpenseRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("expense service record expense request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("expense service record expense validation failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	codes := collectExpenseCodes(req)
	resolved, err := s.accounts.ResolveByCodes(ctx, codes)
	if err != nil {
		logger.Error("expense service resolve accounts failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("failed to record expense", "Unable to record expense right now"), err
	}

	input := ledger.ExpenseInput{
		TransactionDate: req.ParsedTransactionDate(),
		Description:     strings.TrimSpace(req.Description),
	}
	accountsByID := make(map[string]domain.Account, len(resolved))

	resolve := func(code string) (domain.Account, error) {
		code = strings.TrimSpace(code)
		account, ok := resolved[code]
		if !ok {
			return domain.Account{}, fmt.Errorf("account %q: %w", code, domain.ErrAccountNotFound)
		}
		accountsByID[account.ID] = account
		return account, nil
	}

	for _, payment := range req.Payments {
		account, err := resolve(payment.AccountCode)
		if err != nil {
			logger.Error("expense service unknown payment account", err, nil)
			return commons.ErrorResponse[models.TransactionResponse]("Account not found", err.Error()), err
		}
		input.Payments = append(input.Payments, ledger.ExpenseComponent{
			AccountID:   account.ID,
			Amount:      payment.Amount.Round(2),
			Description: strings.TrimSpace(payment.Description),
		})
	}
	for _, category := range req.Categories {
		account, err := resolve(category.AccountCode)
		if err != nil {
			logger.Error("expense service unknown category account", err, nil)
			return commons.ErrorResponse[models.TransactionResponse]("Account not found", err.Error()), err
		}
		input.Categories = append(input.Categories, ledger.ExpenseComponent{
			AccountID:   account.ID,
			Amount:      category.Amount.Round(2),
			Description: strings.TrimSpace(category.Description),
		})
	}
	for _, tax := range req.TaxLines {
		account, err := resolve(tax.AccountCode)
		if err != nil {
			logger.Error("expense service unknown tax account", err, nil)
			return commons.ErrorResponse[models.TransactionResponse]("Account not found", err.Error()), err
		}
		input.TaxLines = append(input.TaxLines, ledger.TaxLine{
			AccountID:   account.ID,
			EntryType:   domain.EntryType(strings.ToUpper(strings.TrimSpace(tax.EntryType))),
			Amount:      tax.Amount.Round(2),
			Description: strings.TrimSpace(tax.Description),
		})
	}

	built, err := ledger.BuildExpense(input, accountsByID)
	if err != nil {
		logger.Error("expense service build expense failed", err, nil)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return commons.ErrorResponse[models.TransactionResponse]("Account not found", err.Error()), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	posted, violations, err := s.posting.PostTransaction(ctx, built)
	if len(violations) > 0 {
		logger.Info("expense service posting rejected", logger.Fields{
			"violationCount": len(violations),
		})
		return commons.ViolationResponse[models.TransactionResponse]("expense validation failed", violations), domain.ErrPostingRejected
	}
	if err != nil {
		logger.Error("expense service post expense failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("failed to record expense", "Unable to record expense right now"), err
	}

	logger.Info("expense service record expense success", logger.Fields{
		"transactionId":     posted.ID,
		"transactionNumber": posted.TransactionNumber,
	})
	return commons.SuccessResponse("expense recorded successfully", mapTransactionToResponse(posted, accountsByID)), nil
}

func collectExpenseCodes(req models.RecordExpenseRequest) []string {
	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		code = strings.TrimSpace(code)
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for _, payment := range req.Payments {
		add(payment.AccountCode)
	}
	for _, category := range req.Categories {
		add(category.AccountCode)
	}
	for _, tax := range req.TaxLines {
		add(tax.AccountCode)
	}
	return codes
}
