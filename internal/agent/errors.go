package agent

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindCredential Kind = "credential"
	KindNotFound   Kind = "not_found"
	KindNetwork    Kind = "network"
	KindMalformed  Kind = "malformed"
)

// Error is a categorized failure of a remote agent call.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("agent %s: %s (status %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("agent %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the same call may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindMalformed
}

// UserMessage is the notification shown for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindCredential:
		return "The voice companion rejected our credentials. Please check the API key configuration."
	case KindNotFound:
		return "The configured voice companion could not be found. Please check the agent id."
	case KindMalformed:
		return "The voice companion sent an unexpected reply. Please try again."
	default:
		return "We couldn't reach the voice companion. Check your connection and try again."
	}
}

// KindOf returns the kind of an agent error, or "" for other errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

func kindForStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindCredential
	case status == 404:
		return KindNotFound
	case status == 408 || status == 429 || status >= 500:
		return KindNetwork
	default:
		return KindMalformed
	}
}
