package domain

import "github.com/shopspring/decimal"

// AccountDelta is the net signed balance effect of a transaction's
// lines on one account, computed with the double-entry sign convention
// before the posting transaction begins.
type AccountDelta struct {
	AccountID string
	Delta     decimal.Decimal
}
