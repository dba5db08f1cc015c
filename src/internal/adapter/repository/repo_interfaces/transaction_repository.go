package repo_interfaces

import (
	"context"
	"time"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

// TransactionRepository owns the durable transaction boundary for every
// posting operation. Each Post*/Void call either applies the full line
// set, its balance deltas and the status change, or leaves the store
// untouched.
type TransactionRepository interface {
	CreateDraft(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	GetByID(ctx context.Context, id string) (domain.Transaction, error)
	PostNew(ctx context.Context, transaction domain.Transaction, deltas []domain.AccountDelta) (domain.Transaction, error)
	PostDraft(ctx context.Context, id string, deltas []domain.AccountDelta) (domain.Transaction, error)
	MarkCancelled(ctx context.Context, id string) error
	VoidWithReversal(ctx context.Context, originalID string, reversal domain.Transaction, deltas []domain.AccountDelta) (domain.Transaction, error)
	ListScheduledReversals(ctx context.Context, onOrBefore time.Time) ([]domain.Transaction, error)
}
