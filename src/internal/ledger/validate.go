package ledger

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sente-books/ledger-service/src/internal/domain"
)

// balanceTolerance absorbs decimal rounding in the currency's minor
// unit. It does not allow true imbalance: anything at or above one
// cent of difference is rejected.
var balanceTolerance = decimal.New(1, -2)

// ValidateLines enforces the posting rules on a candidate line set.
// Accounts is the resolved metadata for every account the lines may
// reference, keyed by account ID. All rules are checked and every
// violation is returned; nothing short-circuits.
func ValidateLines(lines []domain.LedgerLine, accounts map[string]domain.Account) []Violation {
	var violations []Violation

	if len(lines) < 2 {
		violations = append(violations, Violation{
			Code:    ViolationTooFewLines,
			Message: fmt.Sprintf("at least 2 lines are required to balance, got %d", len(lines)),
		})
	}

	for _, line := range lines {
		if _, ok := accounts[line.AccountID]; !ok {
			violations = append(violations, Violation{
				Code:    ViolationUnknownAccount,
				Message: fmt.Sprintf("line references unknown account %q", line.AccountID),
			})
		}
	}

	for _, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			violations = append(violations, Violation{
				Code:    ViolationNonPositiveAmount,
				Message: fmt.Sprintf("line amount must be greater than zero, got %s", line.Amount.StringFixed(2)),
			})
		}
	}

	if restricted := controlAccountCodes(lines, accounts); len(restricted) > 0 {
		violations = append(violations, Violation{
			Code:         ViolationControlAccount,
			Message:      fmt.Sprintf("accounts %v do not allow manual journal entries", restricted),
			AccountCodes: restricted,
		})
	}

	var hasDebit, hasCredit bool
	for _, line := range lines {
		switch line.EntryType {
		case domain.EntryTypeDebit:
			hasDebit = true
		case domain.EntryTypeCredit:
			hasCredit = true
		}
	}
	if len(lines) > 0 && (!hasDebit || !hasCredit) {
		violations = append(violations, Violation{
			Code:    ViolationMixedDirection,
			Message: "lines must include at least one debit and one credit",
		})
	}

	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	for _, line := range lines {
		switch line.EntryType {
		case domain.EntryTypeDebit:
			debitTotal = debitTotal.Add(line.Amount)
		case domain.EntryTypeCredit:
			creditTotal = creditTotal.Add(line.Amount)
		}
	}
	difference := debitTotal.Sub(creditTotal)
	if len(lines) > 0 && difference.Abs().GreaterThanOrEqual(balanceTolerance) {
		violations = append(violations, Violation{
			Code: ViolationImbalance,
			Message: fmt.Sprintf(
				"debits (%s) do not equal credits (%s), difference %s",
				debitTotal.StringFixed(2), creditTotal.StringFixed(2), difference.StringFixed(2),
			),
		})
	}

	return violations
}

func controlAccountCodes(lines []domain.LedgerLine, accounts map[string]domain.Account) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok || account.AllowManualJournal {
			continue
		}
		if !seen[account.Code] {
			seen[account.Code] = true
			codes = append(codes, account.Code)
		}
	}
	sort.Strings(codes)
	return codes
}
