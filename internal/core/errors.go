package core

import "errors"

// ValidationError marks failures that are detected before any write is
// attempted. Operations return them synchronously and never send the
// offending record to the store.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

var (
	ErrEmptyTitle     = ValidationError("chore title is required")
	ErrNoAssignee     = ValidationError("chore must be assigned to a member")
	ErrInvalidRepeat  = ValidationError("unknown repeat policy")
	ErrEmptyItemName  = ValidationError("payment item name is required")
	ErrInvalidAmount  = ValidationError("amount is not a valid number")
	ErrNegativeAmount = ValidationError("amount cannot be negative")
	ErrNoMembers      = ValidationError("at least one member must be selected")
	ErrNoOwner        = ValidationError("group owner is required")
	ErrEmptyJoinCode  = ValidationError("join code is required")
)

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}
