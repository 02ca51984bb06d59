package errs

import "errors"

// Kind tags an error with the outcome class the presentation layer renders.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindAccountLocked
	KindUnauthenticated
	KindForbidden
	KindNotFoundOrForbidden
	KindNotFound
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:            "internal_error",
	KindValidation:          "validation_error",
	KindInvalidCredentials:  "invalid_credentials",
	KindAccountLocked:       "account_locked",
	KindUnauthenticated:     "unauthenticated",
	KindForbidden:           "forbidden",
	KindNotFoundOrForbidden: "not_found_or_forbidden",
	KindNotFound:            "not_found",
	KindConflict:            "conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindInternal]
}

// order matters: ErrNotFoundOrForbidden is checked before its narrower cousins.
var kindTable = []struct {
	err  error
	kind Kind
}{
	{ErrValidation, KindValidation},
	{ErrInvalidCredentials, KindInvalidCredentials},
	{ErrAccountLocked, KindAccountLocked},
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrNotFoundOrForbidden, KindNotFoundOrForbidden},
	{ErrForbidden, KindForbidden},
	{ErrNotFound, KindNotFound},
	{ErrConflict, KindConflict},
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindInternal
}
