package types

import (
	"errors"
	"fmt"
)

// Error is one member of the engine's closed error set. Every operation
// either fully commits or fails with exactly one of these values; codes are
// stable across releases so observers can match on them.
type Error struct {
	Code uint32
	Name string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Name, e.Code, e.Msg)
}

// Engine errors. Codes follow the on-chain convention of starting custom
// program errors at 6000, in declaration order.
var (
	ErrNotInitialized           = &Error{6000, "NotInitialized", "global config is not initialized"}
	ErrAlreadyInitialized       = &Error{6001, "AlreadyInitialized", "global config is already initialized"}
	ErrInvalidAuthority         = &Error{6002, "InvalidAuthority", "caller is not the config authority"}
	ErrInvalidWithdrawAuthority = &Error{6003, "InvalidWithdrawAuthority", "caller is not the withdraw authority"}
	ErrInvalidFeeRecipient      = &Error{6004, "InvalidFeeRecipient", "fee recipient does not match global config"}
	ErrDuplicateCurve           = &Error{6005, "DuplicateCurve", "bonding curve already exists for this mint"}
	ErrCurveNotFound            = &Error{6006, "CurveNotFound", "no bonding curve exists for this mint"}
	ErrMinBuy                   = &Error{6007, "MinBuy", "buy amount must be greater than 0"}
	ErrMinSell                  = &Error{6008, "MinSell", "sell amount must be greater than 0"}
	ErrInsufficientTokens       = &Error{6009, "InsufficientTokens", "not enough tokens available"}
	ErrInsufficientSOL          = &Error{6010, "InsufficientSOL", "not enough SOL to cover cost and fee"}
	ErrMaxSOLCostExceeded       = &Error{6011, "MaxSOLCostExceeded", "cost exceeds the max SOL amount"}
	ErrMinSOLOutputExceeded     = &Error{6012, "MinSOLOutputExceeded", "output is below the min SOL amount"}
	ErrBondingCurveComplete     = &Error{6013, "BondingCurveComplete", "bonding curve is complete"}
	ErrBondingCurveNotComplete  = &Error{6014, "BondingCurveNotComplete", "bonding curve is not complete"}
	ErrCurveNotWithdrawable     = &Error{6015, "CurveNotWithdrawable", "bonding curve has already been withdrawn"}
	ErrArithmeticOverflow       = &Error{6016, "ArithmeticOverflow", "arithmetic overflow"}
	ErrCreatorTransferLimit     = &Error{6017, "CreatorTransferLimit", "creator transfer allowance exceeded"}
)

var errByCode = func() map[uint32]*Error {
	all := []*Error{
		ErrNotInitialized,
		ErrAlreadyInitialized,
		ErrInvalidAuthority,
		ErrInvalidWithdrawAuthority,
		ErrInvalidFeeRecipient,
		ErrDuplicateCurve,
		ErrCurveNotFound,
		ErrMinBuy,
		ErrMinSell,
		ErrInsufficientTokens,
		ErrInsufficientSOL,
		ErrMaxSOLCostExceeded,
		ErrMinSOLOutputExceeded,
		ErrBondingCurveComplete,
		ErrBondingCurveNotComplete,
		ErrCurveNotWithdrawable,
		ErrArithmeticOverflow,
		ErrCreatorTransferLimit,
	}
	m := make(map[uint32]*Error, len(all))
	for _, e := range all {
		m[e.Code] = e
	}
	return m
}()

// ErrorFromCode resolves a numeric code back to its engine error.
func ErrorFromCode(code uint32) (*Error, bool) {
	e, ok := errByCode[code]
	return e, ok
}

// CodeOf extracts the engine error code from err, unwrapping as needed.
// Returns false if err does not carry an engine error.
func CodeOf(err error) (uint32, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// ValidationError represents input validation failures outside the closed
// engine error set (malformed CLI input, nil collaborators).
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

// Collaborator wiring errors.
var (
	ErrNilStore  = errors.New("store is nil")
	ErrNilLedger = errors.New("ledger is nil")
)
