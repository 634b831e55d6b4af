// api/errors/auth_errors.go
package errors

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidRole  = errors.New("invalid role")
	// ErrMalformedAssignment marks a field agent identity whose serialized
	// secretariat assignment list failed to parse or was empty. Access is
	// denied (empty scope), never widened.
	ErrMalformedAssignment = errors.New("malformed secretariat assignment")
)
