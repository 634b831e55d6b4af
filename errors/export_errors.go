// api/errors/export_errors.go
package errors

import "errors"

var (
	ErrExportJobConflict = errors.New("export job already exists")
	ErrExportJobNotFound = errors.New("export job not found")
	ErrExportLockHeld    = errors.New("export job lock already held")
)
