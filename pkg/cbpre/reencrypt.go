package cbpre

import (
	"context"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
)

// ApplyToken turns a LevelOriginal ciphertext into a LevelReEncrypted one for
// the token's delegate: C2' = e(C2, token) = e(g,g2)^(r·a·b), C1 unchanged.
// The proxy learns nothing about the plaintext or either secret.
//
// Re-encryption is single hop: a LevelReEncrypted input fails with
// ErrInvalidCiphertextLevel.
func (l *Library) ApplyToken(ctx context.Context, t *Token, ct *Ciphertext) (*Ciphertext, error) {
	const op = "ApplyToken"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireToken(t); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	if err := l.requireCiphertext(ct); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	if ct.level != LevelOriginal {
		return nil, errorf(op, ErrInvalidCiphertextLevel, "cannot re-encrypt a %s ciphertext", ct.level)
	}

	c2T, err := l.backend.Pair(ct.c2G, t.rk)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}

	out := &Ciphertext{
		level:   LevelReEncrypted,
		c1:      ct.c1,
		c2T:     c2T,
		backend: l.backend,
	}
	l.log.Debug(ctx, "ciphertext re-encrypted", logging.CiphertextLevel(out.level))
	return out, nil
}
