// Package errors defines the failure kinds a deployment run can end with.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinel error kinds. Every error returned by the deploy procedure matches
// exactly one of these with errors.Is.
var (
	ErrAccountNotFound = stderrors.New("lpdeploy: signing account not found")
	ErrConfiguration   = stderrors.New("lpdeploy: configuration error")
	ErrNetwork         = stderrors.New("lpdeploy: network error")
	ErrDeployment      = stderrors.New("lpdeploy: deployment failed")
	ErrAborted         = stderrors.New("lpdeploy: aborted by operator")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrAccountNotFound, "account_not_found"},
	{ErrConfiguration, "configuration"},
	{ErrNetwork, "network"},
	{ErrDeployment, "deployment"},
	{ErrAborted, "aborted"},
}

// Error wraps a cause with the operation that failed and its kind.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Wrap returns an *Error of the given kind. Returns nil if err is nil.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// New returns an *Error of the given kind with a formatted cause.
func New(kind error, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Configuration wraps err as ErrConfiguration.
func Configuration(op string, err error) error { return Wrap(ErrConfiguration, op, err) }

// Network wraps err as ErrNetwork.
func Network(op string, err error) error { return Wrap(ErrNetwork, op, err) }

// Deployment wraps err as ErrDeployment.
func Deployment(op string, err error) error { return Wrap(ErrDeployment, op, err) }

// KindName returns a short name for the kind of err, suitable as a log
// attribute. Errors outside the taxonomy report "unknown".
func KindName(err error) string {
	for _, k := range kinds {
		if stderrors.Is(err, k.err) {
			return k.name
		}
	}
	return "unknown"
}
