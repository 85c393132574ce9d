// Package conversation derives the canonical key that groups every message
// exchanged between two users.
package conversation

import (
	"fmt"
	"strings"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
)

const (
	namespace = "dm"
	separator = ":"
)

// DeriveKey returns "dm:<lo>:<hi>" where lo and hi are the two identifiers in
// lexicographic order. The result does not depend on argument order.
//
// Identifiers containing the separator are rejected, otherwise ("a:b", "c")
// and ("a", "b:c") would produce the same key.
func DeriveKey(a, b string) (string, error) {
	if err := validate(a, b); err != nil {
		return "", err
	}
	if b < a {
		a, b = b, a
	}
	return namespace + separator + a + separator + b, nil
}

// Participants splits a key produced by DeriveKey back into its two user ids.
// Keys with the ids out of order name no conversation.
func Participants(key string) (string, string, error) {
	parts := strings.Split(key, separator)
	if len(parts) != 3 || parts[0] != namespace {
		return "", "", fmt.Errorf("%w: malformed conversation key %q", apperrors.ErrNotFound, key)
	}
	if err := validate(parts[1], parts[2]); err != nil {
		return "", "", err
	}
	if parts[1] > parts[2] {
		return "", "", fmt.Errorf("%w: conversation key %q is not canonical", apperrors.ErrNotFound, key)
	}
	return parts[1], parts[2], nil
}

// Other returns the participant of key that is not userID. It fails with
// ErrInvalidParticipant when userID is not part of the conversation.
func Other(key, userID string) (string, error) {
	a, b, err := Participants(key)
	if err != nil {
		return "", err
	}
	switch userID {
	case a:
		return b, nil
	case b:
		return a, nil
	}
	return "", fmt.Errorf("%w: %s is not a participant of %s", apperrors.ErrInvalidParticipant, userID, key)
}

func validate(a, b string) error {
	switch {
	case a == "" || b == "":
		return fmt.Errorf("%w: empty identifier", apperrors.ErrInvalidParticipant)
	case a == b:
		return fmt.Errorf("%w: a user cannot converse with themselves", apperrors.ErrInvalidParticipant)
	case strings.Contains(a, separator) || strings.Contains(b, separator):
		return fmt.Errorf("%w: identifier contains %q", apperrors.ErrInvalidParticipant, separator)
	}
	return nil
}
