package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/ledger"
)

type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.accounts {
		if existing.Code == account.Code {
			return domain.Account{}, fmt.Errorf("account code %q: %w", account.Code, domain.ErrDuplicateAccountCode)
		}
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := r.store.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	r.store.accounts[account.ID] = account
	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return account, nil
}

func (r *AccountRepository) GetByCode(_ context.Context, code string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, account := range r.store.accounts {
		if account.Code == code {
			return account, nil
		}
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (r *AccountRepository) GetByCodes(_ context.Context, codes []string) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}

	var accounts []domain.Account
	for _, account := range r.store.accounts {
		if wanted[account.Code] {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (r *AccountRepository) GetByIDs(_ context.Context, ids []string) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var accounts []domain.Account
	for _, id := range ids {
		if account, ok := r.store.accounts[id]; ok {
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (r *AccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	accounts := make([]domain.Account, 0, len(r.store.accounts))
	for _, account := range r.store.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

func (r *AccountRepository) RebuildBalances(_ context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	recomputed := make(map[string]decimal.Decimal, len(r.store.accounts))
	for id := range r.store.accounts {
		recomputed[id] = decimal.Zero
	}

	for _, transaction := range r.store.transactions {
		if transaction.Status != domain.TransactionStatusPosted && transaction.Status != domain.TransactionStatusVoided {
			continue
		}
		for _, line := range transaction.Lines {
			account, ok := r.store.accounts[line.AccountID]
			if !ok {
				continue
			}
			recomputed[line.AccountID] = recomputed[line.AccountID].Add(
				ledger.BalanceDelta(account.Type, line.EntryType, line.Amount),
			)
		}
	}

	now := r.store.now()
	for id, balance := range recomputed {
		account := r.store.accounts[id]
		account.Balance = balance
		account.UpdatedAt = now
		r.store.accounts[id] = account
	}

	return int64(len(recomputed)), nil
}
