package pairing

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"sort"
)

// Backend names accepted by Lookup.
const (
	NameBLS12381 = "bls12381"
	NameBN256    = "bn256"
)

var (
	// ErrInvalidElement reports bytes or values that are not a member of the
	// expected group.
	ErrInvalidElement = errors.New("pairing: invalid group element")

	// ErrInvalidScalar reports a scalar outside [1, order) or of the wrong width.
	ErrInvalidScalar = errors.New("pairing: invalid scalar")

	// ErrForeignElement reports an element created by a different backend.
	ErrForeignElement = errors.New("pairing: element belongs to another backend")
)

// G1 is an element of the first source group.
type G1 interface {
	// Exp returns p^k.
	Exp(k *Scalar) G1
	IsIdentity() bool
	// Bytes returns the canonical fixed-width encoding.
	Bytes() []byte
	// Equal reports whether both elements are the same group element.
	Equal(other G1) bool
}

// G2 is an element of the second source group.
type G2 interface {
	Exp(k *Scalar) G2
	IsIdentity() bool
	Bytes() []byte
	Equal(other G2) bool
}

// GT is an element of the target group.
type GT interface {
	Exp(k *Scalar) GT
	// Mul returns x·y. It fails when y was created by another backend.
	Mul(y GT) (GT, error)
	// Inv returns x^-1.
	Inv() GT
	IsIdentity() bool
	Bytes() []byte
	Equal(other GT) bool
}

// Backend is the pairing library consumed by cbpre.
type Backend interface {
	// Name returns the registry name of the backend.
	Name() string
	// Order returns a copy of the prime order shared by G1, G2 and GT.
	Order() *big.Int

	ScalarSize() int
	G1Size() int
	G2Size() int
	GTSize() int

	// RandomScalar samples uniformly from [1, order).
	RandomScalar(r io.Reader) (*Scalar, error)
	// InvertScalar returns k^-1 mod order.
	InvertScalar(k *Scalar) (*Scalar, error)
	// MulScalar returns a·b mod order.
	MulScalar(a, b *Scalar) *Scalar
	// DecodeScalar parses a fixed-width big-endian scalar in [1, order).
	DecodeScalar(b []byte) (*Scalar, error)

	// RandomG1 returns a uniformly random non-identity element of G1.
	RandomG1(r io.Reader) (G1, error)
	RandomG2(r io.Reader) (G2, error)
	RandomGT(r io.Reader) (GT, error)

	// Pair evaluates e(p, q).
	Pair(p G1, q G2) (GT, error)

	DecodeG1(b []byte) (G1, error)
	DecodeG2(b []byte) (G2, error)
	DecodeGT(b []byte) (GT, error)

	// ValidateG1 checks that p was produced by this backend and lies in the
	// prime-order subgroup.
	ValidateG1(p G1) error
	ValidateG2(q G2) error
	ValidateGT(x GT) error
}

var registry = map[string]func() Backend{
	NameBLS12381: func() Backend { return NewBLS12381() },
	NameBN256:    func() Backend { return NewBN256() },
}

// Lookup returns a fresh instance of the named backend.
func Lookup(name string) (Backend, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pairing backend %q", name)
	}
	return ctor(), nil
}

// Names lists the registered backends in lexical order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
