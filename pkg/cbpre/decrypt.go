package cbpre

import (
	"context"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Decrypt recovers the plaintext element of ct with the secret of kp:
//
//	original:     unmask = e(C2, g2)^a      (kp is the owner)
//	re-encrypted: unmask = C2^(1/a)         (kp is the delegate)
//	m = C1 · unmask^-1
//
// The result is always a raw GT element. Recovering a small embedded integer
// is the separate DecodeInteger operation.
//
// A key pair that is not the intended recipient yields an unrelated element,
// not an error: the ciphertext carries no recipient binding.
func (l *Library) Decrypt(ctx context.Context, kp *KeyPair, ct *Ciphertext) (*Message, error) {
	const op = "Decrypt"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireSecret(kp); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	if err := l.requireCiphertext(ct); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}

	var unmask pairing.GT
	switch ct.level {
	case LevelOriginal:
		e, err := l.backend.Pair(ct.c2G, kp.params.g2)
		if err != nil {
			return nil, wrapError(op, ErrBackend, err)
		}
		unmask = e.Exp(kp.sk)
	case LevelReEncrypted:
		inv, err := l.backend.InvertScalar(kp.sk)
		if err != nil {
			return nil, wrapError(op, ErrBackend, err)
		}
		unmask = ct.c2T.Exp(inv)
		inv.Free()
	default:
		return nil, errorf(op, ErrInvalidCiphertextLevel, "level %q", byte(ct.level))
	}

	m, err := ct.c1.Mul(unmask.Inv())
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	l.log.Debug(ctx, "ciphertext decrypted", logging.CiphertextLevel(ct.level), logging.Redacted("plaintext"))
	return &Message{m: m, backend: l.backend}, nil
}
