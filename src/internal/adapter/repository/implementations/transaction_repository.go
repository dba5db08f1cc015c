package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/logger"
)

// TransactionRepository persists transactions and their lines and is
// the only writer of account balances. Every posting method runs inside
// a single database transaction: the status change, the line inserts
// and the balance deltas land together or not at all.
type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, transaction_number, transaction_date, description, status, source_type,
	is_reversal, scheduled_reversal_date, reversal_of_transaction_id, created_at, updated_at, posted_at`

func (r *TransactionRepository) CreateDraft(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	logger.Info("transaction repository create draft", logger.Fields{
		"transactionId": transaction.ID,
		"sourceType":    transaction.SourceType,
		"lineCount":     len(transaction.Lines),
	})

	transaction.Status = domain.TransactionStatusDraft

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("begin create draft transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	transaction, err = insertTransactionTx(ctx, tx, transaction)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err = insertLinesTx(ctx, tx, transaction.ID, transaction.Lines); err != nil {
		return domain.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Transaction{}, fmt.Errorf("commit create draft transaction: %w", err)
	}

	return transaction, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	const query = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	transaction, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrRecordNotFound
		}
		logger.Error("transaction repository get failed", err, logger.Fields{
			"transactionId": id,
		})
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}

	lines, err := r.linesFor(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	transaction.Lines = lines

	return transaction, nil
}

// PostNew persists a built transaction directly as POSTED, skipping the
// draft step.
func (r *TransactionRepository) PostNew(ctx context.Context, transaction domain.Transaction, deltas []domain.AccountDelta) (domain.Transaction, error) {
	logger.Info("transaction repository post new", logger.Fields{
		"transactionId": transaction.ID,
		"sourceType":    transaction.SourceType,
		"lineCount":     len(transaction.Lines),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("begin post transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	transaction.TransactionNumber, err = allocateTransactionNumber(ctx, tx, transaction.SourceType)
	if err != nil {
		return domain.Transaction{}, err
	}

	transaction.Status = domain.TransactionStatusPosted
	transaction, err = insertTransactionTx(ctx, tx, transaction)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err = insertLinesTx(ctx, tx, transaction.ID, transaction.Lines); err != nil {
		return domain.Transaction{}, err
	}

	if err = applyDeltasTx(ctx, tx, deltas); err != nil {
		return domain.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Transaction{}, fmt.Errorf("commit post transaction: %w", err)
	}

	logger.Info("transaction repository post new success", logger.Fields{
		"transactionId":     transaction.ID,
		"transactionNumber": transaction.TransactionNumber,
	})
	return transaction, nil
}

// PostDraft promotes a saved draft to POSTED. The draft row is locked
// for the duration so concurrent posts of the same draft serialize; the
// first wins, the second sees ErrInvalidState.
func (r *TransactionRepository) PostDraft(ctx context.Context, id string, deltas []domain.AccountDelta) (domain.Transaction, error) {
	logger.Info("transaction repository post draft", logger.Fields{
		"transactionId": id,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("begin post draft transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var status domain.TransactionStatus
	var sourceType domain.SourceType
	var number sql.NullString
	err = tx.QueryRowContext(ctx, `
SELECT status, source_type, transaction_number
FROM transactions
WHERE id = $1
FOR UPDATE`, id).Scan(&status, &sourceType, &number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = domain.ErrRecordNotFound
			return domain.Transaction{}, err
		}
		return domain.Transaction{}, fmt.Errorf("lock draft for posting: %w", err)
	}
	if status != domain.TransactionStatusDraft {
		err = domain.ErrInvalidState
		return domain.Transaction{}, fmt.Errorf("post draft %s in status %s: %w", id, status, err)
	}

	transactionNumber := number.String
	if transactionNumber == "" {
		transactionNumber, err = allocateTransactionNumber(ctx, tx, sourceType)
		if err != nil {
			return domain.Transaction{}, err
		}
	}

	if _, err = execRequiredRows(ctx, tx, `
UPDATE transactions
SET status = 'POSTED',
    transaction_number = $2,
    posted_at = NOW(),
    updated_at = NOW()
WHERE id = $1
  AND status = 'DRAFT'`, id, transactionNumber); err != nil {
		return domain.Transaction{}, err
	}

	if err = applyDeltasTx(ctx, tx, deltas); err != nil {
		return domain.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Transaction{}, fmt.Errorf("commit post draft transaction: %w", err)
	}

	logger.Info("transaction repository post draft success", logger.Fields{
		"transactionId":     id,
		"transactionNumber": transactionNumber,
	})
	return r.GetByID(ctx, id)
}

// MarkCancelled abandons a draft. Nothing was ever applied, so no
// balances move.
func (r *TransactionRepository) MarkCancelled(ctx context.Context, id string) error {
	const query = `
UPDATE transactions
SET status = 'CANCELLED',
    updated_at = NOW()
WHERE id = $1
  AND status = 'DRAFT'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("transaction repository mark cancelled failed", err, logger.Fields{
			"transactionId": id,
		})
		return fmt.Errorf("cancel draft: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel draft rows affected: %w", err)
	}
	if rows == 0 {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return getErr
		}
		return fmt.Errorf("cancel transaction %s in status %s: %w", id, existing.Status, domain.ErrInvalidState)
	}

	return nil
}

// VoidWithReversal marks the original VOIDED and posts the reversing
// transaction in one database transaction. If either write cannot be
// made, neither is.
func (r *TransactionRepository) VoidWithReversal(ctx context.Context, originalID string, reversal domain.Transaction, deltas []domain.AccountDelta) (domain.Transaction, error) {
	logger.Info("transaction repository void with reversal", logger.Fields{
		"originalTransactionId": originalID,
		"reversalId":            reversal.ID,
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("begin void transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE transactions
SET status = 'VOIDED',
    updated_at = NOW()
WHERE id = $1
  AND status = 'POSTED'`, originalID)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("mark transaction voided: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("mark transaction voided rows affected: %w", err)
	}
	if rows == 0 {
		_ = tx.Rollback()
		existing, getErr := r.GetByID(ctx, originalID)
		if getErr != nil {
			err = getErr
			return domain.Transaction{}, err
		}
		err = domain.ErrInvalidState
		return domain.Transaction{}, fmt.Errorf("void transaction %s in status %s: %w", originalID, existing.Status, err)
	}

	reversal.TransactionNumber, err = allocateTransactionNumber(ctx, tx, domain.SourceTypeReversal)
	if err != nil {
		return domain.Transaction{}, err
	}

	reversal.Status = domain.TransactionStatusPosted
	reversal, err = insertTransactionTx(ctx, tx, reversal)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err = insertLinesTx(ctx, tx, reversal.ID, reversal.Lines); err != nil {
		return domain.Transaction{}, err
	}

	if err = applyDeltasTx(ctx, tx, deltas); err != nil {
		return domain.Transaction{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Transaction{}, fmt.Errorf("commit void transaction: %w", err)
	}

	logger.Info("transaction repository void with reversal success", logger.Fields{
		"originalTransactionId": originalID,
		"reversalNumber":        reversal.TransactionNumber,
	})
	return reversal, nil
}

// ListScheduledReversals returns posted journals flagged for automatic
// reversal on or before the given date. The trigger itself lives in an
// external scheduler.
func (r *TransactionRepository) ListScheduledReversals(ctx context.Context, onOrBefore time.Time) ([]domain.Transaction, error) {
	const query = `SELECT ` + transactionColumns + `
FROM transactions
WHERE is_reversal
  AND status = 'POSTED'
  AND scheduled_reversal_date <= $1
ORDER BY scheduled_reversal_date, transaction_number`

	rows, err := r.db.QueryContext(ctx, query, onOrBefore)
	if err != nil {
		logger.Error("transaction repository list scheduled reversals failed", err, nil)
		return nil, fmt.Errorf("list scheduled reversals: %w", err)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled reversal: %w", err)
		}
		transactions = append(transactions, transaction)
	}

	return transactions, rows.Err()
}

func (r *TransactionRepository) linesFor(ctx context.Context, transactionID string) ([]domain.LedgerLine, error) {
	const query = `
SELECT id, transaction_id, account_id, entry_type, amount, description
FROM ledger_lines
WHERE transaction_id = $1
ORDER BY line_no`

	rows, err := r.db.QueryContext(ctx, query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get ledger lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.LedgerLine
	for rows.Next() {
		var line domain.LedgerLine
		if err := rows.Scan(
			&line.ID,
			&line.TransactionID,
			&line.AccountID,
			&line.EntryType,
			&line.Amount,
			&line.Description,
		); err != nil {
			return nil, fmt.Errorf("scan ledger line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var transaction domain.Transaction
	var number sql.NullString
	var scheduled sql.NullTime
	var reversalOf sql.NullString
	var postedAt sql.NullTime

	if err := row.Scan(
		&transaction.ID,
		&number,
		&transaction.TransactionDate,
		&transaction.Description,
		&transaction.Status,
		&transaction.SourceType,
		&transaction.IsReversal,
		&scheduled,
		&reversalOf,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
		&postedAt,
	); err != nil {
		return domain.Transaction{}, err
	}

	transaction.TransactionNumber = number.String
	if scheduled.Valid {
		value := scheduled.Time
		transaction.ScheduledReversalDate = &value
	}
	if reversalOf.Valid {
		value := reversalOf.String
		transaction.ReversalOfTransactionID = &value
	}
	if postedAt.Valid {
		value := postedAt.Time
		transaction.PostedAt = &value
	}

	return transaction, nil
}

func insertTransactionTx(ctx context.Context, tx *sql.Tx, transaction domain.Transaction) (domain.Transaction, error) {
	const query = `
INSERT INTO transactions (
	id,
	transaction_number,
	transaction_date,
	description,
	status,
	source_type,
	is_reversal,
	scheduled_reversal_date,
	reversal_of_transaction_id,
	posted_at
) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9,
	CASE WHEN $5 = 'POSTED' THEN NOW() ELSE NULL END)
RETURNING created_at, updated_at, posted_at`

	var postedAt sql.NullTime
	if err := tx.QueryRowContext(
		ctx,
		query,
		transaction.ID,
		transaction.TransactionNumber,
		transaction.TransactionDate,
		transaction.Description,
		transaction.Status,
		transaction.SourceType,
		transaction.IsReversal,
		transaction.ScheduledReversalDate,
		transaction.ReversalOfTransactionID,
	).Scan(&transaction.CreatedAt, &transaction.UpdatedAt, &postedAt); err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if postedAt.Valid {
		value := postedAt.Time
		transaction.PostedAt = &value
	}

	return transaction, nil
}

func insertLinesTx(ctx context.Context, tx *sql.Tx, transactionID string, lines []domain.LedgerLine) error {
	const query = `
INSERT INTO ledger_lines (
	id,
	transaction_id,
	line_no,
	account_id,
	entry_type,
	amount,
	description
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i, line := range lines {
		if _, err := tx.ExecContext(
			ctx,
			query,
			line.ID,
			transactionID,
			i+1,
			line.AccountID,
			line.EntryType,
			line.Amount,
			line.Description,
		); err != nil {
			return fmt.Errorf("insert ledger line %d: %w", i+1, err)
		}
	}

	return nil
}

// applyDeltasTx serializes concurrent posts per account through the row
// lock the UPDATE takes; a lost update on the cached balance would be a
// correctness violation, not a performance issue.
func applyDeltasTx(ctx context.Context, tx *sql.Tx, deltas []domain.AccountDelta) error {
	const query = `
UPDATE accounts
SET balance = balance + $2::numeric,
    updated_at = NOW()
WHERE id = $1`

	for _, delta := range deltas {
		if _, err := execRequiredRows(ctx, tx, query, delta.AccountID, delta.Delta); err != nil {
			return err
		}
	}

	return nil
}

func allocateTransactionNumber(ctx context.Context, tx *sql.Tx, sourceType domain.SourceType) (string, error) {
	const query = `
INSERT INTO transaction_sequences (prefix, last_value)
VALUES ($1, 1)
ON CONFLICT (prefix) DO UPDATE SET last_value = transaction_sequences.last_value + 1
RETURNING last_value`

	prefix := numberPrefix(sourceType)
	var value int64
	if err := tx.QueryRowContext(ctx, query, prefix).Scan(&value); err != nil {
		return "", fmt.Errorf("allocate transaction number: %w", err)
	}

	return fmt.Sprintf("%s-%06d", prefix, value), nil
}

func numberPrefix(sourceType domain.SourceType) string {
	switch sourceType {
	case domain.SourceTypeExpense:
		return "EXP"
	case domain.SourceTypeReversal:
		return "REV"
	default:
		return "JRN"
	}
}

func execRequiredRows(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("execute posting statement: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	if rows == 0 {
		return 0, errors.New("posting failed: expected row was not updated")
	}
	return rows, nil
}
