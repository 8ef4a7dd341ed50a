package cbpre

import (
	"errors"
	"fmt"
)

var (
	// ErrBackend indicates an arithmetic, randomness or pairing failure inside
	// the pairing backend. It is fatal to the operation and never retried.
	ErrBackend = errors.New("cbpre: backend failure")

	// ErrInvalidKey indicates a key pair that cannot serve the operation, for
	// example a public-only key where a secret is required.
	ErrInvalidKey = errors.New("cbpre: invalid key")

	// ErrInvalidCiphertextLevel indicates an operation applied to the wrong
	// ciphertext level, such as re-encrypting a re-encrypted ciphertext.
	ErrInvalidCiphertextLevel = errors.New("cbpre: invalid ciphertext level")

	// ErrMalformedInput indicates an encoding of the wrong size or one that does
	// not decode to valid scalars and group elements.
	ErrMalformedInput = errors.New("cbpre: malformed input")

	// ErrInvalidLength indicates a requested output or buffer length outside the
	// supported range.
	ErrInvalidLength = errors.New("cbpre: invalid length")

	// ErrLibraryClosed is returned by every operation on a closed Library.
	ErrLibraryClosed = errors.New("cbpre: library closed")

	// ErrUnknownBackend indicates a Config.Backend name that is not registered.
	ErrUnknownBackend = errors.New("cbpre: unknown pairing backend")

	// ErrNotFound indicates that a discrete-log search exhausted its range.
	ErrNotFound = errors.New("cbpre: discrete log not found")
)

// Error wraps an error kind with the name of the failing operation.
type Error struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cbpre.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorf creates a new Error of the given kind.
func errorf(op string, kind error, format string, args ...any) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
	}
}

// wrapError attaches kind to a lower-level error, keeping both matchable with
// errors.Is.
func wrapError(op string, kind error, err error) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %w", kind, err),
	}
}
