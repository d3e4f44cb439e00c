// Package services implements the application layer over the flow store.
package services

import (
	"errors"

	"github.com/kmare/flowsync/pkg/persistence"
)

var (
	// ErrFlowNotFound mirrors the persistence sentinel at the service
	// boundary.
	ErrFlowNotFound = persistence.ErrFlowNotFound

	// Validation errors (HTTP 400 at the web edge).
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidFlow    = errors.New("flow definition is invalid")
)

// IsValidationError reports whether an error should surface as a client
// error rather than a server fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrInvalidFlow)
}
