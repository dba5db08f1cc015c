package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

// BalanceDelta returns the signed effect of one ledger line on its
// account's running balance. Assets and expenses grow with debits;
// liabilities, equity and revenue grow with credits. The convention is
// fixed and never configurable per account.
func BalanceDelta(accountType domain.AccountType, entryType domain.EntryType, amount decimal.Decimal) decimal.Decimal {
	if accountType.DebitNormal() == (entryType == domain.EntryTypeDebit) {
		return amount
	}
	return amount.Neg()
}
