package clsag

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedEncoding is returned when a point or scalar fails its
	// canonical decode. Malformed material is rejected before any hashing.
	ErrMalformedEncoding = errors.New("clsag: malformed point or scalar encoding")

	// ErrRingSizeInvalid is returned for an empty ring, a real index out of
	// range, or a response vector whose length differs from the ring.
	ErrRingSizeInvalid = errors.New("clsag: invalid ring size")

	// ErrInvalidSecret is returned when the signing secret does not open the
	// claimed ring slot.
	ErrInvalidSecret = errors.New("clsag: secret does not match ring position")

	// ErrSessionState is returned for a round message submitted out of
	// order. Out-of-order messages are rejected, never buffered.
	ErrSessionState = errors.New("clsag: message not valid in current session state")

	// ErrSessionClosed is returned once a session has reached a terminal
	// state. A session never re-enters commitment collection.
	ErrSessionClosed = errors.New("clsag: session already terminated")

	ErrSessionTimeout   = errors.New("clsag: session timed out")
	ErrSessionCancelled = errors.New("clsag: session cancelled")
)

// SessionAbortedError identifies the participant whose partial response was
// inconsistent with its published commitments.
type SessionAbortedError struct {
	Participant uint32
}

func (e *SessionAbortedError) Error() string {
	return fmt.Sprintf("clsag: session aborted by participant %d", e.Participant)
}
