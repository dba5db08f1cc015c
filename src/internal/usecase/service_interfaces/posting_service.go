package service_interfaces

import (
	"context"

	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/ledger"
)

// PostingService is the single gateway through which a built
// transaction becomes POSTED. A non-empty violation list means the
// ledger rules rejected the line set and nothing was written.
type PostingService interface {
	PostTransaction(ctx context.Context, transaction domain.Transaction) (domain.Transaction, []ledger.Violation, error)
}
