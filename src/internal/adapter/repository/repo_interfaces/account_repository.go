package repo_interfaces

import (
	"context"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByCode(ctx context.Context, code string) (domain.Account, error)
	GetByCodes(ctx context.Context, codes []string) ([]domain.Account, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	RebuildBalances(ctx context.Context) (int64, error)
}
