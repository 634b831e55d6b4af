// api/errors/resident_errors.go
package errors

import "errors"

var (
	ErrResidentNotFound      = errors.New("resident not found")
	ErrInvalidResidentData   = errors.New("invalid resident data")
	ErrDatabaseOperation     = errors.New("database operation failed")
	ErrInternalServer        = errors.New("internal server error")
	ErrInvalidPagination     = errors.New("invalid pagination parameters")
	ErrInvalidSearchCriteria = errors.New("invalid search criteria")
)
