package pairing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"runtime"
)

// Scalar is an exponent modulo the group order. Secret keys and encryption
// randomness are Scalars, so callers own them exclusively and release them with
// Free.
//
// Concurrency Safety:
//   - Read-only methods are safe to call concurrently.
//   - Calling Free while another goroutine still uses the Scalar is a data race;
//     the caller must ensure exclusive ownership before Free.
type Scalar struct {
	v *big.Int
}

func newScalar(v *big.Int) *Scalar {
	s := &Scalar{v: v}
	// Ensure the limbs are cleared if the Scalar becomes unreachable
	runtime.SetFinalizer(s, (*Scalar).Free)
	return s
}

// NewScalar reduces v modulo the order of b and wraps it. The result may be zero,
// which is accepted for exponent arithmetic but rejected by DecodeScalar.
func NewScalar(b Backend, v *big.Int) *Scalar {
	x := new(big.Int).Mod(v, b.Order())
	return newScalar(x)
}

// value returns the limbs, treating a nil or freed Scalar as zero.
func (s *Scalar) value() *big.Int {
	if s == nil || s.v == nil {
		return new(big.Int)
	}
	return s.v
}

// IsZero reports whether s is zero or has been freed.
func (s *Scalar) IsZero() bool {
	return s == nil || s.v == nil || s.v.Sign() == 0
}

// BigInt returns a copy of the value.
// WARNING: big.Int arithmetic is not constant-time; use for tests and
// display-free bookkeeping only.
func (s *Scalar) BigInt() *big.Int {
	if s == nil || s.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(s.v)
}

// Clone returns an independent copy that must be freed separately.
func (s *Scalar) Clone() *Scalar {
	if s == nil || s.v == nil {
		return nil
	}
	return newScalar(new(big.Int).Set(s.v))
}

// FillBytes writes the big-endian value into dst, left padded with zeros.
func (s *Scalar) FillBytes(dst []byte) {
	if s == nil || s.v == nil {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	s.v.FillBytes(dst)
}

// Free zeroizes the limbs and drops the reference.
func (s *Scalar) Free() {
	if s == nil || s.v == nil {
		return
	}
	wipeInt(s.v)
	s.v = nil
	runtime.SetFinalizer(s, nil)
}

func wipeInt(x *big.Int) {
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	runtime.KeepAlive(words)
	x.SetInt64(0)
}

// field implements the scalar half of Backend for a prime order.
type field struct {
	order *big.Int
	size  int
}

func newField(order *big.Int) field {
	return field{
		order: new(big.Int).Set(order),
		size:  (order.BitLen() + 7) / 8,
	}
}

func (f field) Order() *big.Int { return new(big.Int).Set(f.order) }

func (f field) ScalarSize() int { return f.size }

func (f field) RandomScalar(r io.Reader) (*Scalar, error) {
	if r == nil {
		r = rand.Reader
	}
	bound := new(big.Int).Sub(f.order, big.NewInt(1))
	k, err := rand.Int(r, bound)
	if err != nil {
		return nil, fmt.Errorf("sample scalar: %w", err)
	}
	return newScalar(k.Add(k, big.NewInt(1))), nil
}

func (f field) InvertScalar(k *Scalar) (*Scalar, error) {
	if k.IsZero() {
		return nil, fmt.Errorf("invert: %w", ErrInvalidScalar)
	}
	inv := new(big.Int).ModInverse(k.v, f.order)
	if inv == nil {
		return nil, fmt.Errorf("invert: %w", ErrInvalidScalar)
	}
	return newScalar(inv), nil
}

func (f field) MulScalar(a, b *Scalar) *Scalar {
	x := new(big.Int)
	if !a.IsZero() && !b.IsZero() {
		x.Mul(a.v, b.v)
		x.Mod(x, f.order)
	}
	return newScalar(x)
}

func (f field) DecodeScalar(b []byte) (*Scalar, error) {
	if len(b) != f.size {
		return nil, fmt.Errorf("scalar is %d bytes, want %d: %w", len(b), f.size, ErrInvalidScalar)
	}
	k := new(big.Int).SetBytes(b)
	if k.Sign() == 0 || k.Cmp(f.order) >= 0 {
		wipeInt(k)
		return nil, ErrInvalidScalar
	}
	return newScalar(k), nil
}

// orderMinusOne returns order-1 as a Scalar. x^(order-1)·x == 1 holds exactly
// for members of the order-r subgroup, which lets backends whose scalars are
// reduced mod r test membership without exponentiating by r itself.
func (f field) orderMinusOne() *Scalar {
	return &Scalar{v: new(big.Int).Sub(f.order, big.NewInt(1))}
}
