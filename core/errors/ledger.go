package errors

import stderrors "errors"

// Error kinds shared by every native program. Packages wrap these with
// context; callers match them with errors.Is.
var (
	ErrAuthorization       = stderrors.New("authorization error")
	ErrAlreadyInitialized  = stderrors.New("already initialized")
	ErrNotFound            = stderrors.New("not found")
	ErrAddressMismatch     = stderrors.New("address mismatch")
	ErrArithmeticOverflow  = stderrors.New("arithmetic overflow")
	ErrInsufficientBalance = stderrors.New("insufficient balance")
	ErrInvalidArgument     = stderrors.New("invalid argument")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrAuthorization, "authorization"},
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrNotFound, "not_found"},
	{ErrAddressMismatch, "address_mismatch"},
	{ErrArithmeticOverflow, "arithmetic_overflow"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrInvalidArgument, "invalid_argument"},
}

// Kind returns the name of the error kind err wraps. Errors outside the
// taxonomy are reported as "internal" and a nil error as "".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
