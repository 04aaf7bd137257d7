package submit

import (
	"errors"
	"fmt"
)

// Kind classifies why a calculation did not produce a result.
type Kind string

const (
	KindEncode    Kind = "encode"
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
	KindTimeout   Kind = "timeout"
)

// Error is returned by Client implementations and carried in Outcome.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("calculate (%s, status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("calculate (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a submission error of the given kind.
func IsKind(err error, kind Kind) bool {
	var subErr *Error
	if !errors.As(err, &subErr) {
		return false
	}
	return subErr.Kind == kind
}

// Describe renders err as a short message fit for the status line.
func Describe(err error) string {
	var subErr *Error
	if !errors.As(err, &subErr) {
		return err.Error()
	}
	switch subErr.Kind {
	case KindTimeout:
		return "The calculation service did not answer in time."
	case KindTransport:
		return "Could not reach the calculation service."
	case KindStatus:
		return fmt.Sprintf("The calculation service rejected the request (HTTP %d).", subErr.Status)
	case KindDecode:
		return "The calculation service sent an unreadable response."
	default:
		return subErr.Error()
	}
}
