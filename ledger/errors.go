// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"
)

// Class groups ledger errors by the kind of precondition they report.
type Class uint8

const (
	ClassUnknown Class = iota
	// ClassValidation reports malformed input. Checked before any storage is touched.
	ClassValidation
	// ClassAuthorization reports a capability mismatch.
	ClassAuthorization
	// ClassArithmetic reports an overflow or underflow on a counter or balance.
	ClassArithmetic
	// ClassState reports an account in the wrong lifecycle state.
	ClassState
)

func (c Class) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassAuthorization:
		return "authorization"
	case ClassArithmetic:
		return "arithmetic"
	case ClassState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is a caller-visible ledger failure. Every distinct precondition has its
// own *Error value so callers can match it with errors.Is.
type Error struct {
	Class Class
	Code  uint32
	Msg   string
}

// NewError returns a new ledger error. Codes below 6000 are reserved for the
// ledger itself; programs number their errors from 6000 upwards.
func NewError(class Class, code uint32, msg string) *Error {
	return &Error{Class: class, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Class, e.Code, e.Msg)
}

// ClassOf returns the class of the first ledger error in [err]'s chain.
func ClassOf(err error) Class {
	var lerr *Error
	if errors.As(err, &lerr) {
		return lerr.Class
	}
	return ClassUnknown
}

var (
	ErrMaxSeedLengthExceeded = NewError(ClassValidation, 1, "length of a seed or number of seeds exceeds the maximum")
	ErrInvalidSeeds          = NewError(ClassValidation, 2, "provided seeds do not result in a valid address")
	ErrBumpSeedNotFound      = NewError(ClassValidation, 3, "no bump seed yields a valid address")
	ErrSeedsMismatch         = NewError(ClassAuthorization, 4, "seeds do not derive the expected address")

	ErrUnauthorized     = NewError(ClassAuthorization, 10, "unauthorized")
	ErrMissingSignature = NewError(ClassAuthorization, 11, "missing required signature")

	ErrInsufficientBalance = NewError(ClassArithmetic, 20, "insufficient balance")
	ErrOverflow            = NewError(ClassArithmetic, 21, "arithmetic overflow")

	ErrAccountAlreadyInUse          = NewError(ClassState, 30, "account already in use")
	ErrAccountNotFound              = NewError(ClassState, 31, "account not found")
	ErrAccountOwnedByWrongProgram   = NewError(ClassState, 32, "account owned by a different program")
	ErrAccountDiscriminatorMismatch = NewError(ClassState, 33, "account discriminator did not match")
	ErrAccountDidNotSerialize       = NewError(ClassState, 34, "account does not fit its allocation")
	ErrInsufficientFundsForRent     = NewError(ClassState, 35, "insufficient funds for storage deposit")
)
