package cbpre

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// MaxSymmetricKeyLength is the longest key SymmetricKey can extract: the HKDF
// output bound for SHA-256.
const MaxSymmetricKeyLength = 255 * sha256.Size

var symmetricKeyInfo = []byte("cb-pre-go message key")

// Message is a plaintext: one element of the target group GT. Random messages
// serve as ephemeral key material; SymmetricKey turns one into bytes for a
// symmetric cipher.
type Message struct {
	m       pairing.GT
	backend pairing.Backend
}

// Element returns the underlying GT element.
func (m *Message) Element() pairing.GT { return m.m }

// Equal reports whether both messages are the same group element.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil || m.m == nil || other.m == nil {
		return false
	}
	return m.m.Equal(other.m)
}

// SymmetricKey extracts length bytes from the message with HKDF-SHA256 over its
// canonical encoding. The same message and length always yield the same key.
func (m *Message) SymmetricKey(length int) ([]byte, error) {
	const op = "SymmetricKey"
	if m == nil || m.m == nil {
		return nil, errorf(op, ErrMalformedInput, "nil message")
	}
	if length <= 0 || length > MaxSymmetricKeyLength {
		return nil, errorf(op, ErrInvalidLength, "key length %d outside [1, %d]", length, MaxSymmetricKeyLength)
	}
	secret := m.m.Bytes()
	defer ZeroizeBytes(secret)

	key := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, symmetricKeyInfo), key); err != nil {
		ZeroizeBytes(key)
		return nil, wrapError(op, ErrBackend, err)
	}
	return key, nil
}

// Free drops the element reference. Messages are often key material, so
// callers release them as soon as the derived key has been extracted.
func (m *Message) Free() {
	if m == nil {
		return
	}
	m.m = nil
}

// RandomMessage samples a uniformly random element of GT from the Library's
// CSPRNG.
func (l *Library) RandomMessage(ctx context.Context) (*Message, error) {
	const op = "RandomMessage"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	x, err := l.backend.RandomGT(l.rand)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	l.log.Debug(ctx, "random message sampled")
	return &Message{m: x, backend: l.backend}, nil
}

// DeriveSymmetricKey is Message.SymmetricKey behind the Library's lifecycle
// check.
func (l *Library) DeriveSymmetricKey(m *Message, length int) ([]byte, error) {
	const op = "DeriveSymmetricKey"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireMessage(m); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	return m.SymmetricKey(length)
}

// NewMessage wraps a GT element produced elsewhere, for example by integer
// embedding. The element is validated by the backend.
func (l *Library) NewMessage(x pairing.GT) (*Message, error) {
	const op = "NewMessage"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if x == nil {
		return nil, errorf(op, ErrMalformedInput, "nil element")
	}
	if err := l.backend.ValidateGT(x); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	return &Message{m: x, backend: l.backend}, nil
}

func (l *Library) requireMessage(m *Message) error {
	if m == nil || m.m == nil {
		return errors.New("nil message")
	}
	if !l.owns(m.backend) {
		return fmt.Errorf("message for backend %q", backendName(m.backend))
	}
	return nil
}
