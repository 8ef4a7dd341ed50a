package cbpre

import (
	"context"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
)

// Encrypt produces a LevelOriginal ciphertext of m under kp:
//
//	r  ← random scalar
//	C1 = m · Z^r
//	C2 = g^r
//
// Only public material is used, so a public-only view of the owner's key pair
// encrypts just as well as the secret key pair.
func (l *Library) Encrypt(ctx context.Context, kp *KeyPair, m *Message) (*Ciphertext, error) {
	const op = "Encrypt"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireKey(kp); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	if err := l.requireMessage(m); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}

	r, err := l.backend.RandomScalar(l.rand)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	defer r.Free()

	c1, err := m.m.Mul(kp.z.Exp(r))
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}

	ct := &Ciphertext{
		level:   LevelOriginal,
		c1:      c1,
		c2G:     kp.params.g.Exp(r),
		backend: l.backend,
	}
	l.log.Debug(ctx, "message encrypted", logging.CiphertextLevel(ct.level))
	return ct, nil
}
