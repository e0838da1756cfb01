// Package apperrors classifies failures into the three kinds the gate
// service and the client report: authorization denials, provider failures
// and validation failures.
package apperrors

import (
	"github.com/pkg/errors"
)

var (
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrValidation          = errors.New("validation failed")
)

// ProviderError wraps a failure from the database, object store or auth
// provider. Error() returns the provider's message unchanged.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func Provider(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Op: op, Err: err}
}

// Denied returns an AuthorizationDenied error with a user facing message.
func Denied(msg string) error {
	return &kindError{kind: ErrAuthorizationDenied, msg: msg}
}

// Invalid returns a ValidationFailure with a user facing message.
func Invalid(msg string) error {
	return &kindError{kind: ErrValidation, msg: msg}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

func IsProvider(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

func IsDenied(err error) bool {
	return errors.Is(err, ErrAuthorizationDenied)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
