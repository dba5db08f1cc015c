package services

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sente-books/ledger-service/src/internal/adapter/http/models"
	"github.com/sente-books/ledger-service/src/internal/adapter/repository/repo_interfaces"
	"github.com/sente-books/ledger-service/src/internal/commons"
	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/logger"
)

// AccountService is the chart-of-accounts registry. Metadata lookups
// for validation go through a short-lived cache; balance reads always
// hit the store, since the cache may lag behind posting.
type AccountService struct {
	accountRepo   repo_interfaces.AccountRepository
	metadataCache *gocache.Cache
}

func NewAccountService(accountRepo repo_interfaces.AccountRepository) *AccountService {
	return &AccountService{
		accountRepo:   accountRepo,
		metadataCache: gocache.New(time.Minute, 5*time.Minute),
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("account service create account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	allowManualJournal := true
	if req.AllowManualJournal != nil {
		allowManualJournal = *req.AllowManualJournal
	}

	// Balance always starts at zero: the cached balance is the sum of
	// posted line effects, and a new account has none. Opening balances
	// are entered as a journal against an equity account.
	account := domain.Account{
		Code:               strings.TrimSpace(req.Code),
		Name:               strings.TrimSpace(req.Name),
		Type:               domain.AccountType(strings.ToUpper(strings.TrimSpace(req.AccountType))),
		AllowManualJournal: allowManualJournal,
	}

	created, err := s.accountRepo.Create(ctx, account)
	if err != nil {
		logger.Error("account service create account repository failed", err, logger.Fields{
			"code": account.Code,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", err.Error()), err
	}

	logger.Info("account service create account success", logger.Fields{
		"accountId": created.ID,
		"code":      created.Code,
	})
	return commons.SuccessResponse("account created successfully", mapAccountToResponse(created)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, code string) (commons.Response[models.AccountResponse], error) {
	code = strings.TrimSpace(code)
	if code == "" {
		err := errors.New("code is required")
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.accountRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		logger.Error("account service get account failed", err, logger.Fields{
			"code": code,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to fetch account right now"), err
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountToResponse(account)), nil
}

func (s *AccountService) ListAccounts(ctx context.Context) (commons.Response[[]models.AccountResponse], error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		logger.Error("account service list accounts failed", err, nil)
		return commons.ErrorResponse[[]models.AccountResponse]("failed to list accounts", "Unable to fetch accounts right now"), err
	}

	responses := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		responses = append(responses, mapAccountToResponse(account))
	}

	return commons.SuccessResponse("accounts fetched successfully", responses), nil
}

// IsManualEntryAllowed reports whether an account may appear on a
// manual journal. Control accounts (AR, AP, Inventory) answer false.
func (s *AccountService) IsManualEntryAllowed(ctx context.Context, id string) (bool, error) {
	account, err := s.accountRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return account.AllowManualJournal, nil
}

// ResolveByCodes returns account metadata keyed by code for the
// builder and validator. Codes that do not resolve are simply absent.
// Hits are served from the metadata cache; eligibility and type change
// rarely, and balances are never read through this path.
func (s *AccountService) ResolveByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	resolved := make(map[string]domain.Account, len(codes))
	var missing []string
	seen := make(map[string]bool, len(codes))

	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true

		if cached, ok := s.metadataCache.Get(metadataCacheKey(code)); ok {
			resolved[code] = cached.(domain.Account)
			continue
		}
		missing = append(missing, code)
	}

	if len(missing) > 0 {
		accounts, err := s.accountRepo.GetByCodes(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, account := range accounts {
			resolved[account.Code] = account
			s.metadataCache.SetDefault(metadataCacheKey(account.Code), account)
		}
	}

	return resolved, nil
}

func (s *AccountService) RebuildBalances(ctx context.Context) (commons.Response[models.RebuildBalancesResponse], error) {
	logger.Info("account service rebuild balances request", nil)

	updated, err := s.accountRepo.RebuildBalances(ctx)
	if err != nil {
		logger.Error("account service rebuild balances failed", err, nil)
		return commons.ErrorResponse[models.RebuildBalancesResponse]("failed to rebuild balances", "Unable to rebuild balances right now"), err
	}

	s.metadataCache.Flush()

	response := models.RebuildBalancesResponse{AccountsUpdated: updated}
	logger.Info("account service rebuild balances success", logger.Fields{
		"accountsUpdated": updated,
	})
	return commons.SuccessResponse("balances rebuilt successfully", response), nil
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	return models.AccountResponse{
		ID:                 account.ID,
		Code:               account.Code,
		Name:               account.Name,
		AccountType:        string(account.Type),
		AllowManualJournal: account.AllowManualJournal,
		Balance:            account.Balance,
		CreatedAt:          account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          account.UpdatedAt.Format(time.RFC3339),
	}
}

func metadataCacheKey(code string) string {
	return "account:" + code
}
