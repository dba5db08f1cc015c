package memory

import (
	"sync"
	"time"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

// Store is an in-memory stand-in for the Postgres schema, shared by the
// account and transaction repositories the way the tables share one
// database. A single mutex gives every posting operation the same
// all-or-nothing, serialized semantics the SQL implementation gets from
// its transaction boundary.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
	sequences    map[string]int64
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
		sequences:    make(map[string]int64),
	}
}

func (s *Store) Accounts() *AccountRepository {
	return &AccountRepository{store: s}
}

func (s *Store) Transactions() *TransactionRepository {
	return &TransactionRepository{store: s}
}

func (s *Store) now() time.Time {
	return time.Now().UTC()
}

// copyTransaction detaches a stored transaction so callers can never
// reach the store's line slices. Posted records stay immutable no
// matter what the caller does with the returned value.
func copyTransaction(transaction domain.Transaction) domain.Transaction {
	out := transaction
	out.Lines = append([]domain.LedgerLine(nil), transaction.Lines...)
	if transaction.ScheduledReversalDate != nil {
		value := *transaction.ScheduledReversalDate
		out.ScheduledReversalDate = &value
	}
	if transaction.ReversalOfTransactionID != nil {
		value := *transaction.ReversalOfTransactionID
		out.ReversalOfTransactionID = &value
	}
	if transaction.PostedAt != nil {
		value := *transaction.PostedAt
		out.PostedAt = &value
	}
	return out
}
