package pairing

import (
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"

	bls "github.com/cloudflare/circl/ecc/bls12381"
)

// blsScalarSize is the width of a BLS12-381 scalar field element.
const blsScalarSize = 32

// blsBackend adapts cloudflare/circl ecc/bls12381. G1 and G2 use compressed
// point encodings.
type blsBackend struct {
	field
	gtBase *bls.Gt
	g1Size int
	g2Size int
	gtSize int
}

// NewBLS12381 returns the circl BLS12-381 backend.
func NewBLS12381() Backend {
	gt := bls.Pair(bls.G1Generator(), bls.G2Generator())
	gtBytes, _ := gt.MarshalBinary()
	return &blsBackend{
		field:  newField(new(big.Int).SetBytes(bls.Order())),
		gtBase: gt,
		g1Size: len(bls.G1Generator().BytesCompressed()),
		g2Size: len(bls.G2Generator().BytesCompressed()),
		gtSize: len(gtBytes),
	}
}

func (b *blsBackend) Name() string { return NameBLS12381 }
func (b *blsBackend) G1Size() int  { return b.g1Size }
func (b *blsBackend) G2Size() int  { return b.g2Size }
func (b *blsBackend) GTSize() int  { return b.gtSize }

func (b *blsBackend) RandomG1(r io.Reader) (G1, error) {
	k, err := b.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	defer k.Free()
	s := toCirclScalar(k, b.size)
	defer wipeCirclScalar(s)
	p := new(bls.G1)
	p.ScalarMult(s, bls.G1Generator())
	return newBLSG1(p), nil
}

func (b *blsBackend) RandomG2(r io.Reader) (G2, error) {
	k, err := b.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	defer k.Free()
	s := toCirclScalar(k, b.size)
	defer wipeCirclScalar(s)
	q := new(bls.G2)
	q.ScalarMult(s, bls.G2Generator())
	return newBLSG2(q), nil
}

func (b *blsBackend) RandomGT(r io.Reader) (GT, error) {
	k, err := b.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	defer k.Free()
	s := toCirclScalar(k, b.size)
	defer wipeCirclScalar(s)
	x := new(bls.Gt)
	x.Exp(b.gtBase, s)
	return newBLSGT(x), nil
}

func (b *blsBackend) Pair(p G1, q G2) (GT, error) {
	pp, ok := p.(blsG1)
	if !ok || pp.p == nil {
		return nil, fmt.Errorf("pair: G1 %w", ErrForeignElement)
	}
	qq, ok := q.(blsG2)
	if !ok || qq.p == nil {
		return nil, fmt.Errorf("pair: G2 %w", ErrForeignElement)
	}
	return newBLSGT(bls.Pair(pp.p, qq.p)), nil
}

func (b *blsBackend) DecodeG1(buf []byte) (G1, error) {
	if len(buf) != b.g1Size {
		return nil, fmt.Errorf("G1 is %d bytes, want %d: %w", len(buf), b.g1Size, ErrInvalidElement)
	}
	p := new(bls.G1)
	if err := p.SetBytes(buf); err != nil {
		return nil, fmt.Errorf("G1: %v: %w", err, ErrInvalidElement)
	}
	if !p.IsOnG1() {
		return nil, fmt.Errorf("G1 outside the order-r subgroup: %w", ErrInvalidElement)
	}
	return newBLSG1(p), nil
}

func (b *blsBackend) DecodeG2(buf []byte) (G2, error) {
	if len(buf) != b.g2Size {
		return nil, fmt.Errorf("G2 is %d bytes, want %d: %w", len(buf), b.g2Size, ErrInvalidElement)
	}
	q := new(bls.G2)
	if err := q.SetBytes(buf); err != nil {
		return nil, fmt.Errorf("G2: %v: %w", err, ErrInvalidElement)
	}
	if !q.IsOnG2() {
		return nil, fmt.Errorf("G2 outside the order-r subgroup: %w", ErrInvalidElement)
	}
	return newBLSG2(q), nil
}

func (b *blsBackend) DecodeGT(buf []byte) (GT, error) {
	if len(buf) != b.gtSize {
		return nil, fmt.Errorf("GT is %d bytes, want %d: %w", len(buf), b.gtSize, ErrInvalidElement)
	}
	x := new(bls.Gt)
	if err := x.UnmarshalBinary(buf); err != nil {
		return nil, fmt.Errorf("GT: %v: %w", err, ErrInvalidElement)
	}
	e := newBLSGT(x)
	if err := b.ValidateGT(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (b *blsBackend) ValidateG1(p G1) error {
	pp, ok := p.(blsG1)
	if !ok || pp.p == nil {
		return fmt.Errorf("G1 %w", ErrForeignElement)
	}
	if !pp.p.IsOnG1() {
		return fmt.Errorf("G1 outside the order-r subgroup: %w", ErrInvalidElement)
	}
	return nil
}

func (b *blsBackend) ValidateG2(q G2) error {
	qq, ok := q.(blsG2)
	if !ok || qq.p == nil {
		return fmt.Errorf("G2 %w", ErrForeignElement)
	}
	if !qq.p.IsOnG2() {
		return fmt.Errorf("G2 outside the order-r subgroup: %w", ErrInvalidElement)
	}
	return nil
}

func (b *blsBackend) ValidateGT(x GT) error {
	xx, ok := x.(blsGT)
	if !ok || xx.x == nil {
		return fmt.Errorf("GT %w", ErrForeignElement)
	}
	// circl reduces exponents mod r, so test x^(r-1)·x = 1 instead of x^r = 1.
	s := toCirclScalar(b.orderMinusOne(), b.size)
	t := new(bls.Gt)
	t.Exp(xx.x, s)
	t.Mul(t, xx.x)
	if !t.IsIdentity() {
		return fmt.Errorf("GT outside the order-r subgroup: %w", ErrInvalidElement)
	}
	return nil
}

func toCirclScalar(k *Scalar, size int) *bls.Scalar {
	buf := make([]byte, size)
	k.FillBytes(buf)
	s := new(bls.Scalar)
	s.SetBytes(buf)
	for i := range buf {
		buf[i] = 0
	}
	return s
}

func wipeCirclScalar(s *bls.Scalar) { s.SetUint64(0) }

type blsG1 struct {
	p   *bls.G1
	enc []byte
}

func newBLSG1(p *bls.G1) blsG1 { return blsG1{p: p, enc: p.BytesCompressed()} }

func (e blsG1) Exp(k *Scalar) G1 {
	s := toCirclScalar(k, blsScalarSize)
	defer wipeCirclScalar(s)
	out := new(bls.G1)
	out.ScalarMult(s, e.p)
	return newBLSG1(out)
}

func (e blsG1) IsIdentity() bool { return e.p.IsIdentity() }
func (e blsG1) Bytes() []byte    { return clone(e.enc) }

func (e blsG1) Equal(other G1) bool {
	o, ok := other.(blsG1)
	return ok && subtle.ConstantTimeCompare(e.enc, o.enc) == 1
}

type blsG2 struct {
	p   *bls.G2
	enc []byte
}

func newBLSG2(p *bls.G2) blsG2 { return blsG2{p: p, enc: p.BytesCompressed()} }

func (e blsG2) Exp(k *Scalar) G2 {
	s := toCirclScalar(k, blsScalarSize)
	defer wipeCirclScalar(s)
	out := new(bls.G2)
	out.ScalarMult(s, e.p)
	return newBLSG2(out)
}

func (e blsG2) IsIdentity() bool { return e.p.IsIdentity() }
func (e blsG2) Bytes() []byte    { return clone(e.enc) }

func (e blsG2) Equal(other G2) bool {
	o, ok := other.(blsG2)
	return ok && subtle.ConstantTimeCompare(e.enc, o.enc) == 1
}

type blsGT struct {
	x   *bls.Gt
	enc []byte
}

func newBLSGT(x *bls.Gt) blsGT {
	enc, _ := x.MarshalBinary()
	return blsGT{x: x, enc: enc}
}

func (e blsGT) Exp(k *Scalar) GT {
	s := toCirclScalar(k, blsScalarSize)
	defer wipeCirclScalar(s)
	out := new(bls.Gt)
	out.Exp(e.x, s)
	return newBLSGT(out)
}

func (e blsGT) Mul(y GT) (GT, error) {
	o, ok := y.(blsGT)
	if !ok || o.x == nil {
		return nil, fmt.Errorf("mul: GT %w", ErrForeignElement)
	}
	out := new(bls.Gt)
	out.Mul(e.x, o.x)
	return newBLSGT(out), nil
}

func (e blsGT) Inv() GT {
	out := new(bls.Gt)
	out.Inv(e.x)
	return newBLSGT(out)
}

func (e blsGT) IsIdentity() bool { return e.x.IsIdentity() }
func (e blsGT) Bytes() []byte    { return clone(e.enc) }

func (e blsGT) Equal(other GT) bool {
	o, ok := other.(blsGT)
	return ok && subtle.ConstantTimeCompare(e.enc, o.enc) == 1
}
