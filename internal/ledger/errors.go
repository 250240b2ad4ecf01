package ledger

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrAlreadyMember       = errors.New("user is already a member")
	ErrOwnerIsMember       = errors.New("owner cannot be added as a member")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrNotPending          = errors.New("transaction is not pending")
	ErrInvalidCurrency     = errors.New("invalid currency")
)
