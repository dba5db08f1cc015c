package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

type TransactionRepository struct {
	store *Store
}

func (r *TransactionRepository) CreateDraft(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.store.now()
	transaction.Status = domain.TransactionStatusDraft
	transaction.CreatedAt = now
	transaction.UpdatedAt = now

	r.store.transactions[transaction.ID] = copyTransaction(transaction)
	return transaction, nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction, ok := r.store.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	return copyTransaction(transaction), nil
}

func (r *TransactionRepository) PostNew(_ context.Context, transaction domain.Transaction, deltas []domain.AccountDelta) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := r.applyDeltasLocked(deltas); err != nil {
		return domain.Transaction{}, err
	}

	now := r.store.now()
	transaction.TransactionNumber = r.nextNumberLocked(transaction.SourceType)
	transaction.Status = domain.TransactionStatusPosted
	transaction.CreatedAt = now
	transaction.UpdatedAt = now
	transaction.PostedAt = &now

	r.store.transactions[transaction.ID] = copyTransaction(transaction)
	return copyTransaction(transaction), nil
}

func (r *TransactionRepository) PostDraft(_ context.Context, id string, deltas []domain.AccountDelta) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction, ok := r.store.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	if transaction.Status != domain.TransactionStatusDraft {
		return domain.Transaction{}, fmt.Errorf("post draft %s in status %s: %w", id, transaction.Status, domain.ErrInvalidState)
	}

	if err := r.applyDeltasLocked(deltas); err != nil {
		return domain.Transaction{}, err
	}

	now := r.store.now()
	if transaction.TransactionNumber == "" {
		transaction.TransactionNumber = r.nextNumberLocked(transaction.SourceType)
	}
	transaction.Status = domain.TransactionStatusPosted
	transaction.UpdatedAt = now
	transaction.PostedAt = &now

	r.store.transactions[id] = transaction
	return copyTransaction(transaction), nil
}

func (r *TransactionRepository) MarkCancelled(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction, ok := r.store.transactions[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if transaction.Status != domain.TransactionStatusDraft {
		return fmt.Errorf("cancel transaction %s in status %s: %w", id, transaction.Status, domain.ErrInvalidState)
	}

	transaction.Status = domain.TransactionStatusCancelled
	transaction.UpdatedAt = r.store.now()
	r.store.transactions[id] = transaction
	return nil
}

func (r *TransactionRepository) VoidWithReversal(_ context.Context, originalID string, reversal domain.Transaction, deltas []domain.AccountDelta) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	original, ok := r.store.transactions[originalID]
	if !ok {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	if original.Status != domain.TransactionStatusPosted {
		return domain.Transaction{}, fmt.Errorf("void transaction %s in status %s: %w", originalID, original.Status, domain.ErrInvalidState)
	}

	if err := r.applyDeltasLocked(deltas); err != nil {
		return domain.Transaction{}, err
	}

	now := r.store.now()
	original.Status = domain.TransactionStatusVoided
	original.UpdatedAt = now
	r.store.transactions[originalID] = original

	reversal.TransactionNumber = r.nextNumberLocked(domain.SourceTypeReversal)
	reversal.Status = domain.TransactionStatusPosted
	reversal.CreatedAt = now
	reversal.UpdatedAt = now
	reversal.PostedAt = &now
	r.store.transactions[reversal.ID] = copyTransaction(reversal)

	return copyTransaction(reversal), nil
}

func (r *TransactionRepository) ListScheduledReversals(_ context.Context, onOrBefore time.Time) ([]domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var due []domain.Transaction
	for _, transaction := range r.store.transactions {
		if !transaction.IsReversal || transaction.Status != domain.TransactionStatusPosted {
			continue
		}
		if transaction.ScheduledReversalDate == nil || transaction.ScheduledReversalDate.After(onOrBefore) {
			continue
		}
		due = append(due, copyTransaction(transaction))
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledReversalDate.Before(*due[j].ScheduledReversalDate)
	})
	return due, nil
}

func (r *TransactionRepository) applyDeltasLocked(deltas []domain.AccountDelta) error {
	// Verify before mutating so a bad delta leaves nothing half-applied.
	for _, delta := range deltas {
		if _, ok := r.store.accounts[delta.AccountID]; !ok {
			return fmt.Errorf("apply delta to account %q: %w", delta.AccountID, domain.ErrRecordNotFound)
		}
	}

	now := r.store.now()
	for _, delta := range deltas {
		account := r.store.accounts[delta.AccountID]
		account.Balance = account.Balance.Add(delta.Delta)
		account.UpdatedAt = now
		r.store.accounts[delta.AccountID] = account
	}
	return nil
}

func (r *TransactionRepository) nextNumberLocked(sourceType domain.SourceType) string {
	prefix := "JRN"
	switch sourceType {
	case domain.SourceTypeExpense:
		prefix = "EXP"
	case domain.SourceTypeReversal:
		prefix = "REV"
	}

	r.store.sequences[prefix]++
	return fmt.Sprintf("%s-%06d", prefix, r.store.sequences[prefix])
}
