package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/models"
	"github.com/sente-books/ledger-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/sente-books/ledger-service/src/internal/commons"
	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/ledger"
	"github.com/sente-books/ledger-service/src/internal/logger"
	"github.com/sente-books/ledger-service/src/internal/usecase/service_interfaces"
)

// JournalService is the posting engine. It owns the transaction state
// machine: drafts are created here, promoted to POSTED after the line
// set validates, cancelled while still drafts, and voided through a
// posted reversal. Account balances only ever move on its watch.
type JournalService struct {
	transactionRepo repo_interfaces.TransactionRepository
	accountRepo     repo_interfaces.AccountRepository
	accounts        service_interfaces.AccountResolver
}

func NewJournalService(
	transactionRepo repo_interfaces.TransactionRepository,
	accountRepo repo_interfaces.AccountRepository,
	accounts service_interfaces.AccountResolver,
) *JournalService {
	return &JournalService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		accounts:        accounts,
	}
}

func (s *JournalService) CreateJournal(ctx context.Context, req models.CreateJournalRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("journal service create journal request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("journal service create journal validation failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	codes := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		codes = append(codes, strings.TrimSpace(line.AccountCode))
	}

	resolved, err := s.accounts.ResolveByCodes(ctx, codes)
	if err != nil {
		logger.Error("journal service resolve accounts failed", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("failed to create journal", "Unable to create journal right now"), err
	}

	input := ledger.ManualJournalInput{
		TransactionDate:       req.ParsedTransactionDate(),
		Description:           strings.TrimSpace(req.Description),
		IsReversal:            req.IsReversal,
		ScheduledReversalDate: req.ParsedScheduledReversalDate(),
	}
	accountsByID := make(map[string]domain.Account, len(resolved))
	for _, line := range req.Lines {
		code := strings.TrimSpace(line.AccountCode)
		account, ok := resolved[code]
		if !ok {
			err := fmt.Errorf("account %q: %w", code, domain.ErrAccountNotFound)
			logger.Error("journal service unknown account code", err, nil)
			return commons.ErrorResponse[models.TransactionResponse]("Account not found", err.Error()), err
		}
		accountsByID[account.ID] = account
		input.Lines = append(input.Lines, ledger.ManualJournalLine{
			AccountID:   account.ID,
			Debit:       roundedAmount(line.Debit),
			Credit:      roundedAmount(line.Credit),
			Description: strings.TrimSpace(line.Description),
		})
	}

	built, err := ledger.BuildManualJournal(input, accountsByID)
	if err != nil {
		logger.Error("journal service build journal failed", err, nil)
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return commons.ErrorResponse[models.TransactionResponse]("Account not found", err.Error()), err
		case errors.Is(err, domain.ErrNoLines):
			return commons.ErrorResponse[models.TransactionResponse]("validation failed", "journal has no lines after dropping blank rows"), err
		default:
			return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
		}
	}

	if !req.Post {
		draft, err := s.transactionRepo.CreateDraft(ctx, built)
		if err != nil {
			logger.Error("journal service create draft failed", err, nil)
			return commons.ErrorResponse[models.TransactionResponse]("failed to create journal", "Unable to save draft right now"), err
		}

		logger.Info("journal service draft created", logger.Fields{
			"transactionId": draft.ID,
		})
		return commons.SuccessResponse("journal draft created", mapTransactionToResponse(draft, accountsByID)), nil
	}

	posted, violations, err := s.postBuilt(ctx, built, accountsByID)
	if len(violations) > 0 {
		return commons.ViolationResponse[models.TransactionResponse]("journal validation failed", violations), domain.ErrPostingRejected
	}
	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("failed to post journal", "Unable to post journal right now"), err
	}

	return commons.SuccessResponse("journal posted successfully", mapTransactionToResponse(posted, accountsByID)), nil
}

// PostJournal promotes a saved draft to POSTED. Validation failures are
// reported in full and the draft is left untouched for correction.
func (s *JournalService) PostJournal(ctx context.Context, req models.PostJournalRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("journal service post journal request", logger.Fields{
		"transactionId": req.TransactionID,
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	transaction, err := s.transactionRepo.GetByID(ctx, strings.TrimSpace(req.TransactionID))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransactionResponse]("Transaction not found"), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to post journal", "Unable to post journal right now"), err
	}

	if transaction.Status != domain.TransactionStatusDraft {
		err := fmt.Errorf("post transaction %s in status %s: %w", transaction.ID, transaction.Status, domain.ErrInvalidState)
		logger.Error("journal service post journal invalid status", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("invalid transaction status", err.Error()), err
	}

	accountsByID, err := s.accountsForLines(ctx, transaction.Lines)
	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("failed to post journal", "Unable to post journal right now"), err
	}

	if violations := ledger.ValidateLines(transaction.Lines, accountsByID); len(violations) > 0 {
		logger.Info("journal service post journal rejected", logger.Fields{
			"transactionId":  transaction.ID,
			"violationCount": len(violations),
		})
		return commons.ViolationResponse[models.TransactionResponse]("journal validation failed", violations), domain.ErrPostingRejected
	}

	posted, err := s.transactionRepo.PostDraft(ctx, transaction.ID, computeDeltas(transaction.Lines, accountsByID))
	if err != nil {
		logger.Error("journal service post draft failed", err, logger.Fields{
			"transactionId": transaction.ID,
		})
		if errors.Is(err, domain.ErrInvalidState) {
			return commons.ErrorResponse[models.TransactionResponse]("invalid transaction status", err.Error()), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to post journal", "Unable to post journal right now"), err
	}

	logger.Info("journal service post journal success", logger.Fields{
		"transactionId":     posted.ID,
		"transactionNumber": posted.TransactionNumber,
	})
	return commons.SuccessResponse("journal posted successfully", mapTransactionToResponse(posted, accountsByID)), nil
}

// CancelJournal abandons a draft. Nothing was posted, so there is
// nothing to unwind.
func (s *JournalService) CancelJournal(ctx context.Context, req models.CancelJournalRequest) (commons.Response[models.TransactionResponse], error) {
	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	id := strings.TrimSpace(req.TransactionID)
	if err := s.transactionRepo.MarkCancelled(ctx, id); err != nil {
		logger.Error("journal service cancel journal failed", err, logger.Fields{
			"transactionId": id,
		})
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			return commons.ErrorResponse[models.TransactionResponse]("Transaction not found"), err
		case errors.Is(err, domain.ErrInvalidState):
			return commons.ErrorResponse[models.TransactionResponse]("invalid transaction status", err.Error()), err
		default:
			return commons.ErrorResponse[models.TransactionResponse]("failed to cancel journal", "Unable to cancel journal right now"), err
		}
	}

	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("failed to cancel journal", "Unable to fetch journal right now"), err
	}

	logger.Info("journal service cancel journal success", logger.Fields{
		"transactionId": id,
	})
	return commons.SuccessResponse("journal cancelled", mapTransactionToResponse(transaction, nil)), nil
}

// VoidTransaction voids a posted transaction by posting its mirror and
// flagging the original VOIDED. History stays on the books; the two
// writes land in one durable transaction.
func (s *JournalService) VoidTransaction(ctx context.Context, req models.VoidTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("journal service void transaction request", logger.Fields{
		"transactionId": req.TransactionID,
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	original, err := s.transactionRepo.GetByID(ctx, strings.TrimSpace(req.TransactionID))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransactionResponse]("Transaction not found"), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to void transaction", "Unable to void transaction right now"), err
	}

	if original.Status != domain.TransactionStatusPosted {
		err := fmt.Errorf("void transaction %s in status %s: %w", original.ID, original.Status, domain.ErrInvalidState)
		logger.Error("journal service void transaction invalid status", err, nil)
		return commons.ErrorResponse[models.TransactionResponse]("invalid transaction status", err.Error()), err
	}

	reversalDate := time.Now().UTC().Truncate(24 * time.Hour)
	if parsed := req.ParsedReversalDate(); parsed != nil {
		reversalDate = *parsed
	}
	reversal := ledger.BuildReversal(original, reversalDate)

	accountsByID, err := s.accountsForLines(ctx, reversal.Lines)
	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("failed to void transaction", "Unable to void transaction right now"), err
	}

	// Flipping a balanced set preserves balance, so violations here
	// mean the stored lines are corrupt, not that the user erred.
	if violations := ledger.ValidateLines(reversal.Lines, accountsByID); len(violations) > 0 {
		err := fmt.Errorf("reversal of %s failed validation", original.ID)
		logger.Error("journal service reversal validation failed", err, logger.Fields{
			"transactionId":  original.ID,
			"violationCount": len(violations),
		})
		return commons.ViolationResponse[models.TransactionResponse]("failed to void transaction", violations), err
	}

	posted, err := s.transactionRepo.VoidWithReversal(ctx, original.ID, reversal, computeDeltas(reversal.Lines, accountsByID))
	if err != nil {
		logger.Error("journal service void transaction failed", err, logger.Fields{
			"transactionId": original.ID,
		})
		if errors.Is(err, domain.ErrInvalidState) {
			return commons.ErrorResponse[models.TransactionResponse]("invalid transaction status", err.Error()), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to void transaction", "Unable to void transaction right now"), err
	}

	logger.Info("journal service void transaction success", logger.Fields{
		"transactionId":  original.ID,
		"reversalId":     posted.ID,
		"reversalNumber": posted.TransactionNumber,
	})
	return commons.SuccessResponse("transaction voided successfully", mapTransactionToResponse(posted, accountsByID)), nil
}

func (s *JournalService) GetTransaction(ctx context.Context, id string) (commons.Response[models.TransactionResponse], error) {
	id = strings.TrimSpace(id)
	if id == "" {
		err := errors.New("transactionId is required")
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	transaction, err := s.transactionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransactionResponse]("Transaction not found"), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to get transaction", "Unable to fetch transaction right now"), err
	}

	accountsByID, err := s.accountsForLines(ctx, transaction.Lines)
	if err != nil {
		accountsByID = nil
	}

	return commons.SuccessResponse("transaction fetched successfully", mapTransactionToResponse(transaction, accountsByID)), nil
}

// ListScheduledReversals serves the external scheduler: posted journals
// whose declared reversal date has arrived. The scheduler calls the
// void operation for each; this service keeps no timers of its own.
func (s *JournalService) ListScheduledReversals(ctx context.Context, onOrBefore time.Time) (commons.Response[models.ScheduledReversalsResponse], error) {
	due, err := s.transactionRepo.ListScheduledReversals(ctx, onOrBefore)
	if err != nil {
		logger.Error("journal service list scheduled reversals failed", err, nil)
		return commons.ErrorResponse[models.ScheduledReversalsResponse]("failed to list scheduled reversals", "Unable to fetch scheduled reversals right now"), err
	}

	response := models.ScheduledReversalsResponse{
		Transactions: make([]models.TransactionResponse, 0, len(due)),
	}
	for _, transaction := range due {
		response.Transactions = append(response.Transactions, mapTransactionToResponse(transaction, nil))
	}

	return commons.SuccessResponse("scheduled reversals fetched successfully", response), nil
}

// PostTransaction implements service_interfaces.PostingService for
// callers that build their own transactions (the expense flow).
func (s *JournalService) PostTransaction(ctx context.Context, transaction domain.Transaction) (domain.Transaction, []ledger.Violation, error) {
	accountsByID, err := s.accountsForLines(ctx, transaction.Lines)
	if err != nil {
		return domain.Transaction{}, nil, err
	}

	posted, violations, err := s.postBuilt(ctx, transaction, accountsByID)
	if len(violations) > 0 || err != nil {
		return domain.Transaction{}, violations, err
	}
	return posted, nil, nil
}

func (s *JournalService) postBuilt(ctx context.Context, transaction domain.Transaction, accountsByID map[string]domain.Account) (domain.Transaction, []ledger.Violation, error) {
	if violations := ledger.ValidateLines(transaction.Lines, accountsByID); len(violations) > 0 {
		logger.Info("journal service posting rejected", logger.Fields{
			"transactionId":  transaction.ID,
			"violationCount": len(violations),
		})
		return domain.Transaction{}, violations, domain.ErrPostingRejected
	}

	posted, err := s.transactionRepo.PostNew(ctx, transaction, computeDeltas(transaction.Lines, accountsByID))
	if err != nil {
		logger.Error("journal service post transaction failed", err, logger.Fields{
			"transactionId": transaction.ID,
		})
		return domain.Transaction{}, nil, err
	}

	return posted, nil, nil
}

func (s *JournalService) accountsForLines(ctx context.Context, lines []domain.LedgerLine) (map[string]domain.Account, error) {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			ids = append(ids, line.AccountID)
		}
	}

	accounts, err := s.accountRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	accountsByID := make(map[string]domain.Account, len(accounts))
	for _, account := range accounts {
		accountsByID[account.ID] = account
	}
	return accountsByID, nil
}

// computeDeltas nets each account's signed effect before the store is
// touched. Deltas are ordered by account ID so concurrent posts lock
// account rows in a consistent order.
func computeDeltas(lines []domain.LedgerLine, accountsByID map[string]domain.Account) []domain.AccountDelta {
	totals := make(map[string]decimal.Decimal)
	for _, line := range lines {
		account := accountsByID[line.AccountID]
		delta := ledger.BalanceDelta(account.Type, line.EntryType, line.Amount)
		totals[line.AccountID] = totals[line.AccountID].Add(delta)
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	deltas := make([]domain.AccountDelta, 0, len(ids))
	for _, id := range ids {
		deltas = append(deltas, domain.AccountDelta{AccountID: id, Delta: totals[id]})
	}
	return deltas
}

func mapTransactionToResponse(transaction domain.Transaction, accountsByID map[string]domain.Account) models.TransactionResponse {
	response := models.TransactionResponse{
		TransactionID:     transaction.ID,
		TransactionNumber: transaction.TransactionNumber,
		TransactionDate:   transaction.TransactionDate.Format("2006-01-02"),
		Description:       transaction.Description,
		Status:            string(transaction.Status),
		SourceType:        string(transaction.SourceType),
		IsReversal:        transaction.IsReversal,
	}
	if transaction.ScheduledReversalDate != nil {
		response.ScheduledReversalDate = transaction.ScheduledReversalDate.Format("2006-01-02")
	}
	if transaction.ReversalOfTransactionID != nil {
		response.ReversalOfTransactionID = *transaction.ReversalOfTransactionID
	}
	if transaction.PostedAt != nil {
		response.PostedAt = transaction.PostedAt.Format(time.RFC3339)
	}

	for _, line := range transaction.Lines {
		lineResponse := models.LedgerLineResponse{
			AccountID:   line.AccountID,
			EntryType:   string(line.EntryType),
			Amount:      line.Amount,
			Description: line.Description,
		}
		if account, ok := accountsByID[line.AccountID]; ok {
			lineResponse.AccountCode = account.Code
		}
		response.Lines = append(response.Lines, lineResponse)
	}

	return response
}

func roundedAmount(amount *decimal.Decimal) *decimal.Decimal {
	if amount == nil {
		return nil
	}
	rounded := amount.Round(2)
	return &rounded
}
