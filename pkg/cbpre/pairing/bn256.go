package pairing

import (
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/bn256"
)

// bn256Backend adapts golang.org/x/crypto/bn256. That package writes every
// group additively, so Exp maps to ScalarMult and GT multiplication to Add.
type bn256Backend struct {
	field
	gtBase   *bn256.GT // e(g1, g2) for the fixed base points
	identity []byte    // encoding of 1 ∈ GT
	g1Size   int
	g2Size   int
	gtSize   int
}

// NewBN256 returns the x/crypto BN256 backend.
func NewBN256() Backend {
	one := big.NewInt(1)
	g1 := new(bn256.G1).ScalarBaseMult(one)
	g2 := new(bn256.G2).ScalarBaseMult(one)
	gt := bn256.Pair(g1, g2)
	return &bn256Backend{
		field:    newField(bn256.Order),
		gtBase:   gt,
		identity: new(bn256.GT).ScalarMult(gt, new(big.Int)).Marshal(),
		g1Size:   len(g1.Marshal()),
		g2Size:   len(g2.Marshal()),
		gtSize:   len(gt.Marshal()),
	}
}

func (b *bn256Backend) Name() string { return NameBN256 }
func (b *bn256Backend) G1Size() int  { return b.g1Size }
func (b *bn256Backend) G2Size() int  { return b.g2Size }
func (b *bn256Backend) GTSize() int  { return b.gtSize }

func (b *bn256Backend) RandomG1(r io.Reader) (G1, error) {
	k, err := b.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	defer k.Free()
	return newBNG1(new(bn256.G1).ScalarBaseMult(k.value())), nil
}

func (b *bn256Backend) RandomG2(r io.Reader) (G2, error) {
	k, err := b.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	defer k.Free()
	return newBNG2(new(bn256.G2).ScalarBaseMult(k.value())), nil
}

func (b *bn256Backend) RandomGT(r io.Reader) (GT, error) {
	k, err := b.RandomScalar(r)
	if err != nil {
		return nil, err
	}
	defer k.Free()
	return newBNGT(new(bn256.GT).ScalarMult(b.gtBase, k.value()), b.identity), nil
}

func (b *bn256Backend) Pair(p G1, q G2) (GT, error) {
	pp, ok := p.(bnG1)
	if !ok || pp.p == nil {
		return nil, fmt.Errorf("pair: G1 %w", ErrForeignElement)
	}
	qq, ok := q.(bnG2)
	if !ok || qq.p == nil {
		return nil, fmt.Errorf("pair: G2 %w", ErrForeignElement)
	}
	return newBNGT(bn256.Pair(pp.p, qq.p), b.identity), nil
}

func (b *bn256Backend) DecodeG1(buf []byte) (G1, error) {
	if len(buf) != b.g1Size {
		return nil, fmt.Errorf("G1 is %d bytes, want %d: %w", len(buf), b.g1Size, ErrInvalidElement)
	}
	p, ok := new(bn256.G1).Unmarshal(buf)
	if !ok {
		return nil, fmt.Errorf("G1 not on curve: %w", ErrInvalidElement)
	}
	e := newBNG1(p)
	if err := canonical("G1", e.enc, buf); err != nil {
		return nil, err
	}
	// The BN256 G1 curve has cofactor one, so curve membership suffices.
	return e, nil
}

func (b *bn256Backend) DecodeG2(buf []byte) (G2, error) {
	if len(buf) != b.g2Size {
		return nil, fmt.Errorf("G2 is %d bytes, want %d: %w", len(buf), b.g2Size, ErrInvalidElement)
	}
	q, ok := new(bn256.G2).Unmarshal(buf)
	if !ok {
		return nil, fmt.Errorf("G2 not on twist: %w", ErrInvalidElement)
	}
	e := newBNG2(q)
	if err := canonical("G2", e.enc, buf); err != nil {
		return nil, err
	}
	if err := b.ValidateG2(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (b *bn256Backend) DecodeGT(buf []byte) (GT, error) {
	if len(buf) != b.gtSize {
		return nil, fmt.Errorf("GT is %d bytes, want %d: %w", len(buf), b.gtSize, ErrInvalidElement)
	}
	x, ok := new(bn256.GT).Unmarshal(buf)
	if !ok {
		return nil, fmt.Errorf("GT: %w", ErrInvalidElement)
	}
	e := newBNGT(x, b.identity)
	if err := canonical("GT", e.enc, buf); err != nil {
		return nil, err
	}
	if err := b.ValidateGT(e); err != nil {
		return nil, err
	}
	return e, nil
}

func (b *bn256Backend) ValidateG1(p G1) error {
	if pp, ok := p.(bnG1); !ok || pp.p == nil {
		return fmt.Errorf("G1 %w", ErrForeignElement)
	}
	return nil
}

func (b *bn256Backend) ValidateG2(q G2) error {
	qq, ok := q.(bnG2)
	if !ok || qq.p == nil {
		return fmt.Errorf("G2 %w", ErrForeignElement)
	}
	// The twist has a large cofactor: require q^r = O.
	if !isZero(new(bn256.G2).ScalarMult(qq.p, b.order).Marshal()) {
		return fmt.Errorf("G2 outside the order-r subgroup: %w", ErrInvalidElement)
	}
	return nil
}

func (b *bn256Backend) ValidateGT(x GT) error {
	xx, ok := x.(bnGT)
	if !ok || xx.x == nil {
		return fmt.Errorf("GT %w", ErrForeignElement)
	}
	r := new(bn256.GT).ScalarMult(xx.x, b.order).Marshal()
	if subtle.ConstantTimeCompare(r, b.identity) != 1 {
		return fmt.Errorf("GT outside the order-r subgroup: %w", ErrInvalidElement)
	}
	return nil
}

// bn256 Marshal normalizes the point in place, so elements cache their encoding
// once at construction and are read-only afterwards.
type bnG1 struct {
	p   *bn256.G1
	enc []byte
}

func newBNG1(p *bn256.G1) bnG1 { return bnG1{p: p, enc: p.Marshal()} }

func (e bnG1) Exp(k *Scalar) G1 { return newBNG1(new(bn256.G1).ScalarMult(e.p, k.value())) }
func (e bnG1) IsIdentity() bool { return isZero(e.enc) }
func (e bnG1) Bytes() []byte    { return clone(e.enc) }

func (e bnG1) Equal(other G1) bool {
	o, ok := other.(bnG1)
	return ok && subtle.ConstantTimeCompare(e.enc, o.enc) == 1
}

type bnG2 struct {
	p   *bn256.G2
	enc []byte
}

func newBNG2(p *bn256.G2) bnG2 { return bnG2{p: p, enc: p.Marshal()} }

func (e bnG2) Exp(k *Scalar) G2 { return newBNG2(new(bn256.G2).ScalarMult(e.p, k.value())) }
func (e bnG2) IsIdentity() bool { return isZero(e.enc) }
func (e bnG2) Bytes() []byte    { return clone(e.enc) }

func (e bnG2) Equal(other G2) bool {
	o, ok := other.(bnG2)
	return ok && subtle.ConstantTimeCompare(e.enc, o.enc) == 1
}

type bnGT struct {
	x        *bn256.GT
	enc      []byte
	identity []byte
}

func newBNGT(x *bn256.GT, identity []byte) bnGT {
	return bnGT{x: x, enc: x.Marshal(), identity: identity}
}

func (e bnGT) Exp(k *Scalar) GT {
	return newBNGT(new(bn256.GT).ScalarMult(e.x, k.value()), e.identity)
}

func (e bnGT) Mul(y GT) (GT, error) {
	o, ok := y.(bnGT)
	if !ok || o.x == nil {
		return nil, fmt.Errorf("mul: GT %w", ErrForeignElement)
	}
	return newBNGT(new(bn256.GT).Add(e.x, o.x), e.identity), nil
}

func (e bnGT) Inv() GT {
	return newBNGT(new(bn256.GT).Neg(e.x), e.identity)
}

func (e bnGT) IsIdentity() bool {
	return subtle.ConstantTimeCompare(e.enc, e.identity) == 1
}

func (e bnGT) Bytes() []byte { return clone(e.enc) }

func (e bnGT) Equal(other GT) bool {
	o, ok := other.(bnGT)
	return ok && subtle.ConstantTimeCompare(e.enc, o.enc) == 1
}

// canonical rejects encodings bn256 accepts but would not produce. Unmarshal
// does not reduce coordinates mod p, so x and x+p both parse to the same point.
func canonical(what string, enc, buf []byte) error {
	if subtle.ConstantTimeCompare(enc, buf) != 1 {
		return fmt.Errorf("%s encoding is not canonical: %w", what, ErrInvalidElement)
	}
	return nil
}

func isZero(buf []byte) bool {
	var acc byte
	for _, v := range buf {
		acc |= v
	}
	return acc == 0
}

func clone(buf []byte) []byte {
	out := make([]byte, len(buf))
	copy(out, buf)
	return out
}
