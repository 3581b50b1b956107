package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures so the monitor can report them
// without ending the session.
type ErrorKind int

const (
	// NetworkFailure covers transport errors: DNS, connect, timeouts.
	NetworkFailure ErrorKind = iota
	// AuthFailure covers rejected credentials (HTTP 401/403).
	AuthFailure
	// MalformedResponse covers undecodable or empty provider payloads.
	MalformedResponse
	// ProviderError covers everything the provider reports itself:
	// non-auth HTTP errors and in-band API error objects.
	ProviderError
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case AuthFailure:
		return "authentication failure"
	case MalformedResponse:
		return "malformed response"
	default:
		return "provider error"
	}
}

// Error wraps a provider failure with its classification.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err, defaulting to ProviderError for
// errors that did not originate in this package.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ProviderError
}

// Client generates an explanation for a terminal transcript.
type Client interface {
	Explain(ctx context.Context, transcript string) (string, error)
}
