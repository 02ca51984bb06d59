// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates missing or malformed user input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked indicates the account reached the failed-login threshold.
	ErrAccountLocked = errors.New("account locked")

	// ErrUnauthenticated indicates there is no usable session identity.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates an authenticated caller lacks the role or ownership.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFoundOrForbidden merges missing and not-owned resources so existence is not leaked.
	ErrNotFoundOrForbidden = errors.New("not found or forbidden")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a unique constraint violation (e.g., email taken).
	ErrConflict = errors.New("conflict")

	// ErrAdminExists is raised by the store when a second admin would be created.
	ErrAdminExists = errors.New("admin already exists")
)

// ValidationError carries the inline message rendered next to the form.
type ValidationError struct {
	Msg string
}

// Validation builds a user-correctable error.
func Validation(msg string) error {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
