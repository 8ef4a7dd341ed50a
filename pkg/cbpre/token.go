package cbpre

import (
	"context"
	"errors"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Token is the re-encryption credential pk2_delegate^a_delegator =
// g2^(a·b). It is stateless and transforms any number of the delegator's
// original ciphertexts. Holding it reveals neither secret nor any plaintext.
type Token struct {
	rk      pairing.G2
	backend pairing.Backend
}

// Element returns the G2 element of the token.
func (t *Token) Element() pairing.G2 { return t.rk }

// Equal reports whether both tokens hold the same element.
func (t *Token) Equal(other *Token) bool {
	if t == nil || other == nil || t.rk == nil || other.rk == nil {
		return false
	}
	return t.rk.Equal(other.rk)
}

// Free drops the element reference.
func (t *Token) Free() {
	if t == nil {
		return
	}
	t.rk = nil
}

// GenerateToken derives the token from delegator to the holder of
// delegatePK2. delegatePK2 is untrusted input: the backend validates it as a
// member of G2 before it is raised to the delegator's secret.
func (l *Library) GenerateToken(ctx context.Context, delegator *KeyPair, delegatePK2 pairing.G2) (*Token, error) {
	const op = "GenerateToken"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireSecret(delegator); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	if delegatePK2 == nil {
		return nil, errorf(op, ErrMalformedInput, "nil delegate public key")
	}
	if err := l.backend.ValidateG2(delegatePK2); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	if delegatePK2.IsIdentity() {
		return nil, errorf(op, ErrMalformedInput, "delegate public key is the identity")
	}

	t := &Token{rk: delegatePK2.Exp(delegator.sk), backend: l.backend}
	l.log.Debug(ctx, "re-encryption token generated")
	return t, nil
}

// GenerateTokenFor is GenerateToken for a delegate whose full public key pair
// is at hand. It additionally rejects a delegate on different scheme
// parameters, whose re-encrypted ciphertexts would never decrypt.
func (l *Library) GenerateTokenFor(ctx context.Context, delegator, delegate *KeyPair) (*Token, error) {
	const op = "GenerateTokenFor"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireKey(delegate); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	if err := l.requireSecret(delegator); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	if !delegator.params.Equal(delegate.params) {
		return nil, wrapError(op, ErrInvalidKey, errors.New("delegate uses different scheme parameters"))
	}
	return l.GenerateToken(ctx, delegator, delegate.pk2)
}

func (l *Library) requireToken(t *Token) error {
	if t == nil || t.rk == nil {
		return errors.New("nil token")
	}
	if !l.owns(t.backend) {
		return errors.New("token for another backend")
	}
	return nil
}
