package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/sente-books/ledger-service/src/internal/domain"
	"github.com/sente-books/ledger-service/src/internal/logger"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, code, name, account_type, allow_manual_journal, balance, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository create", logger.Fields{
		"code":        account.Code,
		"accountType": account.Type,
	})

	const query = `
INSERT INTO accounts (
	code,
	name,
	account_type,
	allow_manual_journal,
	balance
) VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.Code,
		account.Name,
		account.Type,
		account.AllowManualJournal,
		account.Balance,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			logger.Info("account repository duplicate code", logger.Fields{
				"code": account.Code,
			})
			return domain.Account{}, fmt.Errorf("account code %q: %w", account.Code, domain.ErrDuplicateAccountCode)
		}
		logger.Error("account repository create failed", err, logger.Fields{
			"code": account.Code,
		})
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *AccountRepository) GetByCode(ctx context.Context, code string) (domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1`
	return r.getOne(ctx, query, code)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	var account domain.Account
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&account.ID,
		&account.Code,
		&account.Name,
		&account.Type,
		&account.AllowManualJournal,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		logger.Error("account repository get failed", err, nil)
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetByCodes(ctx context.Context, codes []string) ([]domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE code = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(codes))
	if err != nil {
		logger.Error("account repository get by codes failed", err, nil)
		return nil, fmt.Errorf("get accounts by codes: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func (r *AccountRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		logger.Error("account repository get by ids failed", err, nil)
		return nil, fmt.Errorf("get accounts by ids: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("account repository list failed", err, nil)
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	return scanAccounts(rows)
}

// RebuildBalances recomputes every cached balance from posted ledger
// lines, the source of truth. Lines of VOIDED transactions stay in the
// sum: their effect was applied at post time and is negated by the
// reversal's own POSTED lines.
func (r *AccountRepository) RebuildBalances(ctx context.Context) (int64, error) {
	logger.Info("account repository rebuild balances", nil)

	const query = `
UPDATE accounts a
SET balance = COALESCE((
	SELECT SUM(
		CASE
			WHEN a.account_type IN ('ASSET', 'EXPENSE') AND l.entry_type = 'DEBIT' THEN l.amount
			WHEN a.account_type NOT IN ('ASSET', 'EXPENSE') AND l.entry_type = 'CREDIT' THEN l.amount
			ELSE -l.amount
		END
	)
	FROM ledger_lines l
	JOIN transactions t ON t.id = l.transaction_id
	WHERE l.account_id = a.id
	  AND t.status IN ('POSTED', 'VOIDED')
), 0),
    updated_at = NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		logger.Error("account repository rebuild balances failed", err, nil)
		return 0, fmt.Errorf("rebuild account balances: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rebuild account balances rows affected: %w", err)
	}

	logger.Info("account repository rebuild balances success", logger.Fields{
		"accountsUpdated": rows,
	})
	return rows, nil
}

func scanAccounts(rows *sql.Rows) ([]domain.Account, error) {
	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Code,
			&account.Name,
			&account.Type,
			&account.AllowManualJournal,
			&account.Balance,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}
