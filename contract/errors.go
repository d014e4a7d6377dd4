package contract

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every entry point fails with exactly one of these roots,
// usually wrapped with call context; nothing is retried internally and no
// partial mutation survives a failure.
var (
	// authorization
	ErrUnauthorized = errors.New("unauthorized")
	ErrReentrancy   = errors.New("reentrant call rejected")

	// insufficient capacity
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientVested  = errors.New("insufficient vested balance")
	ErrLockedBalance       = errors.New("amount exceeds transferable balance")
	ErrInsufficientFunds   = errors.New("insufficient unlocked treasury funds")

	// temporal
	ErrOutsideWindow = errors.New("outside allowed time window")

	// lifecycle state
	ErrWrongState = errors.New("wrong lifecycle state")
	ErrNotFound   = errors.New("not found")

	// policy
	ErrPolicy = errors.New("parameter out of allowed range")
)

// errf wraps a taxonomy root with call context.
func errf(root error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{root}, args...)...)
}
