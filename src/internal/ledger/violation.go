package ledger

type ViolationCode string

const (
	ViolationTooFewLines       ViolationCode = "TOO_FEW_LINES"
	ViolationUnknownAccount    ViolationCode = "UNKNOWN_ACCOUNT"
	ViolationNonPositiveAmount ViolationCode = "NON_POSITIVE_AMOUNT"
	ViolationControlAccount    ViolationCode = "CONTROL_ACCOUNT"
	ViolationMixedDirection    ViolationCode = "MIXED_DIRECTION"
	ViolationImbalance         ViolationCode = "IMBALANCE"
)

// Violation describes a single business-rule failure on a candidate line
// set. Violations are values, not errors: the validator collects every
// problem so callers can show them all at once.
type Violation struct {
	Code         ViolationCode `json:"code"`
	Message      string        `json:"message"`
	AccountCodes []string      `json:"accountCodes,omitempty"`
}
