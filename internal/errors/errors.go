// Package errors holds the error taxonomy shared by the stores, the chat core
// and the HTTP and live-connection layers.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidParticipant = errors.New("invalid participant")
	ErrNotFound           = errors.New("not found")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrDeliveryBestEffort = errors.New("live delivery failed")
	ErrEmptyMessage       = errors.New("message must carry text or at least one attachment")
	ErrMessageTooLong     = errors.New("message text too long")
	ErrInvalidVerb        = errors.New("invalid notification verb")
	ErrConnectionClosed   = errors.New("connection closed")
)

// Persistence wraps a storage error so that callers can match both the
// taxonomy and the driver error.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceFailure, op, err)
}
