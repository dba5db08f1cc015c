package domain

import "errors"

var ErrRecordNotFound = errors.New("Record not found")
var ErrAccountNotFound = errors.New("Account not found")
var ErrDuplicateAccountCode = errors.New("Account code already exists")
var ErrNoLines = errors.New("transaction has no ledger lines")
var ErrInvalidState = errors.New("transaction status does not allow this operation")
var ErrPostingRejected = errors.New("posting rejected by ledger validation")
