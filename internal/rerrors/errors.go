// Package rerrors defines the error taxonomy surfaced at the resolver's
// boundary: validation failures, transport-security refusals, and
// not-found outcomes, each formatted for an actionable CLI message.
package rerrors

import (
	"errors"
	"fmt"
)

// SecurityError reports a transport-security policy violation: an
// unpinned fetch over an insecure scheme, or a scheme upgrade that
// failed because no secure remote exists.
type SecurityError struct {
	URL    string
	Reason string
}

func (e *SecurityError) Error() string {
	return fmt.Sprintf("Error: refusing insecure git transport\n  Context: %s (%s)\n  Fix: pin a commit SHA, or host the repository over https/ssh", e.URL, e.Reason)
}

// MessageError reports a malformed specifier, an unresolvable version
// token, or a subprocess failure with user-actionable stderr.
type MessageError struct {
	Context string
	Detail  string
	Err     error
}

func (e *MessageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Error: %s\n  Context: %s\n  Fix: %v", e.Context, e.Detail, e.Err)
	}
	return fmt.Sprintf("Error: %s\n  Context: %s", e.Context, e.Detail)
}

func (e *MessageError) Unwrap() error { return e.Err }

// NotFoundError reports that a specifier was valid but no ref matched
// the requested version.
type NotFoundError struct {
	Version string
	Remote  string
	Known   []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Error: version %q not found\n  Context: remote %s has refs %v\n  Fix: choose one of the listed refs, a commit SHA, or a satisfiable semver range", e.Version, e.Remote, e.Known)
}

// IsSecurityError reports whether err is (or wraps) a *SecurityError.
func IsSecurityError(err error) bool {
	var target *SecurityError
	return errors.As(err, &target)
}

// IsMessageError reports whether err is (or wraps) a *MessageError.
func IsMessageError(err error) bool {
	var target *MessageError
	return errors.As(err, &target)
}

// IsNotFoundError reports whether err is (or wraps) a *NotFoundError.
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
