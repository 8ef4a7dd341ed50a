package cbpre

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// KeyKind tags a key pair as carrying its secret scalar or not. The values are
// the type byte of the key encoding.
type KeyKind byte

const (
	KeySecret KeyKind = 's'
	KeyPublic KeyKind = 'p'
)

func (k KeyKind) String() string {
	switch k {
	case KeySecret:
		return "secret"
	case KeyPublic:
		return "public"
	default:
		return "unknown"
	}
}

// KeyPair is one principal's identity: the secret scalar a (secret key pairs
// only), the scheme generators g and g2, pk = g^a, pk2 = g2^a and the cached
// Z = e(g,g2)^a used by Encrypt.
//
// A KeyPair is immutable after construction and safe for concurrent reads.
// Calling Free while another goroutine still uses the KeyPair is unsafe.
type KeyPair struct {
	kind    KeyKind
	sk      *pairing.Scalar
	params  *Params
	pk      pairing.G1
	pk2     pairing.G2
	z       pairing.GT
	backend pairing.Backend
}

// Kind reports whether the key pair carries its secret.
func (kp *KeyPair) Kind() KeyKind { return kp.kind }

// IsSecret reports whether the key pair carries a usable secret scalar.
func (kp *KeyPair) IsSecret() bool {
	return kp != nil && kp.kind == KeySecret && !kp.sk.IsZero()
}

// Params returns the scheme generators of the key pair.
func (kp *KeyPair) Params() *Params { return kp.params }

// PK returns g^a.
func (kp *KeyPair) PK() pairing.G1 { return kp.pk }

// PK2 returns g2^a, the value a delegator needs to issue a token to this key.
func (kp *KeyPair) PK2() pairing.G2 { return kp.pk2 }

// Z returns e(g,g2)^a.
func (kp *KeyPair) Z() pairing.GT { return kp.z }

// PublicKey returns a public-only view. The view shares the immutable public
// elements and never references the secret.
func (kp *KeyPair) PublicKey() *KeyPair {
	if kp == nil {
		return nil
	}
	return &KeyPair{
		kind:    KeyPublic,
		params:  kp.params,
		pk:      kp.pk,
		pk2:     kp.pk2,
		z:       kp.z,
		backend: kp.backend,
	}
}

// Equal compares every field including the secret, in constant time for the
// secret bytes.
func (kp *KeyPair) Equal(other *KeyPair) bool {
	if kp == nil || other == nil || kp.pk == nil || other.pk == nil {
		return false
	}
	if kp.kind != other.kind || !kp.params.Equal(other.params) {
		return false
	}
	if !kp.pk.Equal(other.pk) || !kp.pk2.Equal(other.pk2) || !kp.z.Equal(other.z) {
		return false
	}
	if kp.kind != KeySecret {
		return true
	}
	return scalarsEqual(kp.backend, kp.sk, other.sk)
}

// Free zeroizes the secret scalar and drops every reference. The key pair is
// unusable afterwards.
func (kp *KeyPair) Free() {
	if kp == nil {
		return
	}
	kp.sk.Free()
	kp.sk = nil
	kp.params = nil
	kp.pk = nil
	kp.pk2 = nil
	kp.z = nil
	runtime.SetFinalizer(kp, nil)
}

// GenerateKeyPair samples a fresh secret a ≠ 0 against the Library's scheme
// parameters and returns a secret key pair.
func (l *Library) GenerateKeyPair(ctx context.Context) (*KeyPair, error) {
	const op = "GenerateKeyPair"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	kp, err := l.newKeyPair(l.params)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	l.log.Debug(ctx, "key pair generated", logging.Redacted("secret"))
	return kp, nil
}

// GenerateKeyPairFor generates a key pair against imported parameters, for a
// principal joining a deployment whose generators it learned from a peer's
// public key.
func (l *Library) GenerateKeyPairFor(ctx context.Context, params *Params) (*KeyPair, error) {
	const op = "GenerateKeyPairFor"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, errorf(op, ErrMalformedInput, "nil params")
	}
	if err := l.checkParams(params); err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	kp, err := l.newKeyPair(params)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	l.log.Debug(ctx, "key pair generated", "imported_params", true, logging.Redacted("secret"))
	return kp, nil
}

// DeriveNextKeyPair returns a new secret key pair with the same generators as
// existing and an independent fresh secret. It is used for key rotation.
func (l *Library) DeriveNextKeyPair(ctx context.Context, existing *KeyPair) (*KeyPair, error) {
	const op = "DeriveNextKeyPair"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireSecret(existing); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	kp, err := l.newKeyPair(existing.params)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	l.log.Debug(ctx, "key pair derived", logging.Redacted("secret"))
	return kp, nil
}

func (l *Library) newKeyPair(params *Params) (*KeyPair, error) {
	a, err := l.backend.RandomScalar(l.rand)
	if err != nil {
		return nil, err
	}
	kp, err := l.assembleKeyPair(params, a)
	if err != nil {
		a.Free()
		return nil, err
	}
	return kp, nil
}

// assembleKeyPair computes the public elements for secret a. Ownership of a
// moves to the returned key pair.
func (l *Library) assembleKeyPair(params *Params, a *pairing.Scalar) (*KeyPair, error) {
	base, err := l.backend.Pair(params.g, params.g2)
	if err != nil {
		return nil, fmt.Errorf("pair generators: %w", err)
	}
	kp := &KeyPair{
		kind:    KeySecret,
		sk:      a,
		params:  params,
		pk:      params.g.Exp(a),
		pk2:     params.g2.Exp(a),
		z:       base.Exp(a),
		backend: l.backend,
	}
	// Backstop only: Free is the point where the secret is zeroed.
	runtime.SetFinalizer(kp, (*KeyPair).Free)
	return kp, nil
}

// requireKey checks that kp is live and built on this Library's backend.
func (l *Library) requireKey(kp *KeyPair) error {
	if kp == nil {
		return errors.New("nil key pair")
	}
	if kp.pk == nil || kp.params == nil {
		return errors.New("released key pair")
	}
	if !l.owns(kp.backend) {
		return fmt.Errorf("key pair for backend %q", backendName(kp.backend))
	}
	return nil
}

// requireSecret additionally checks for the secret scalar.
func (l *Library) requireSecret(kp *KeyPair) error {
	if err := l.requireKey(kp); err != nil {
		return err
	}
	if !kp.IsSecret() {
		return fmt.Errorf("%s key pair has no secret", kp.kind)
	}
	return nil
}

func scalarsEqual(b pairing.Backend, x, y *pairing.Scalar) bool {
	n := b.ScalarSize()
	bx, by := make([]byte, n), make([]byte, n)
	defer ZeroizeBytes(bx, by)
	x.FillBytes(bx)
	y.FillBytes(by)
	return constantTimeEqual(bx, by)
}
