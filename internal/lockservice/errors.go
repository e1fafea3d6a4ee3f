package lockservice

import (
	"errors"
	"fmt"
)

// Kind classifies a lock error so the transport layer can pick a
// status code without parsing messages.
type Kind int

// The closed set of failure classes raised by the registry.
const (
	KindInvalidInput Kind = iota
	KindNotFound
	KindUnauthorized
	KindTimeout
	KindInternal
)

// Error carries a classification alongside the operator-facing
// message. Messages are surfaced verbatim in HTTP error bodies.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// ErrDetectorNotFound is raised for lock operations on a detector
// outside the seeded inventory.
func ErrDetectorNotFound(detector string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("Detector %s not found in the list of detectors", detector),
	}
}

// ErrUnauthorizedAction is raised when a non-forced take or release
// hits a lock held by a different identity.
func ErrUnauthorizedAction(action Action, detector, fullName string) *Error {
	return &Error{
		Kind:    KindUnauthorized,
		Message: fmt.Sprintf("Unauthorized %s action for lock of detector %s by user %s", action, detector, fullName),
	}
}

// KindOf extracts the classification of err. Foreign errors map to
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
