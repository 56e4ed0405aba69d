package environment

import (
	"errors"
	"fmt"
)

var (
	ErrTransport         = errors.New("hdc2080: bus transfer failed")
	ErrInvalidHandle     = errors.New("hdc2080: handle is nil")
	ErrNotInitialized    = errors.New("hdc2080: handle is not initialized")
	ErrMissingDependency = errors.New("hdc2080: missing dependency")
	ErrIdentityMismatch  = errors.New("hdc2080: unexpected chip identity")
	ErrTimeout           = errors.New("hdc2080: measurement timed out")
	ErrResetFailed       = fmt.Errorf("hdc2080: soft reset failed: %w", ErrTransport)
)

// Status codes reported by Code.
const (
	CodeOK             = 0
	CodeTransport      = 1
	CodeInvalidHandle  = 2
	CodeNotInitialized = 3
	CodeTimeout        = 4
	CodeIdentity       = 5
	CodeReset          = 6
)

// Code maps an error returned by the driver to its numeric status. Init
// failures keep their own numbering: a failed identity read is 4 and a failed
// soft reset is 6.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrInvalidHandle):
		return CodeInvalidHandle
	case errors.Is(err, ErrNotInitialized), errors.Is(err, ErrMissingDependency):
		return CodeNotInitialized
	case errors.Is(err, errIdentityRead), errors.Is(err, ErrTimeout):
		return CodeTimeout
	case errors.Is(err, ErrIdentityMismatch):
		return CodeIdentity
	case errors.Is(err, ErrResetFailed):
		return CodeReset
	default:
		return CodeTransport
	}
}

var errIdentityRead = fmt.Errorf("hdc2080: identity read failed: %w", ErrTransport)

func transportErr(op string, reg byte, err error) error {
	return fmt.Errorf("%w: %s register %#04x: %w", ErrTransport, op, reg, err)
}
