package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrValidation marks bad input shape or range. The message is meant for the user.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates the record being created already exists.
	ErrConflict = errors.New("conflict")

	// ErrNotFound indicates an operation referenced a record that is not stored.
	ErrNotFound = errors.New("not found")

	// ErrTransient marks failures that are worth retrying or substituting a default for.
	ErrTransient = errors.New("transient failure")

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
)

var kinds = []error{ErrValidation, ErrConflict, ErrNotFound, ErrTransient, ErrUnauthorized}

// Message strips the kind prefix from a wrapped error so the remaining text can
// be shown to the user as is.
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			if trimmed := strings.TrimPrefix(msg, kind.Error()+": "); trimmed != msg {
				return trimmed
			}
		}
	}
	return msg
}
