package service_interfaces

import (
	"context"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

// AccountResolver answers chart-of-accounts lookups for the builder and
// validator. The returned map is keyed by account code and simply omits
// codes that do not resolve.
type AccountResolver interface {
	ResolveByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)
}
