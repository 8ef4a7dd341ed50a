package cbpre

import (
	"errors"
	"fmt"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Wire formats. Every entity has one fixed layout per variant, with elements
// in the backend's canonical fixed-width encoding and scalars big-endian:
//
//	KeyPair     [kind:1][g][g2][pk][pk2][Z]        + [a] when kind = 's'
//	Ciphertext  [level:1][C1][C2]                  C2 ∈ G1 for '1', GT for '2'
//	Token       [rk ∈ G2]
//	Message     [m ∈ GT]
//	Params      [g][g2]
//
// EncodedSize reports the exact length for an instance, Encode writes into a
// buffer of exactly that length and the Library's Decode methods reject any
// other length with ErrMalformedInput.

const tagSize = 1

// fieldWriter appends fixed-width fields to a preallocated buffer.
type fieldWriter struct {
	buf []byte
	off int
}

func (w *fieldWriter) put(b []byte) {
	w.off += copy(w.buf[w.off:], b)
}

func (w *fieldWriter) putByte(b byte) {
	w.buf[w.off] = b
	w.off++
}

// fieldReader consumes fixed-width fields; sizes are checked up front so
// advance never runs past the end.
type fieldReader struct {
	data []byte
}

func (r *fieldReader) advance(n int) []byte {
	out := r.data[:n]
	r.data = r.data[n:]
	return out
}

func checkBuffer(dst []byte, want int) error {
	if len(dst) != want {
		return fmt.Errorf("buffer is %d bytes, want %d", len(dst), want)
	}
	return nil
}

// =============================================================================
// Params
// =============================================================================

// EncodedSize returns the exact encoded length of the parameters.
func (p *Params) EncodedSize() int {
	return p.backend.G1Size() + p.backend.G2Size()
}

// Encode writes the parameters into dst, which must be EncodedSize bytes.
func (p *Params) Encode(dst []byte) error {
	const op = "Params.Encode"
	if p == nil || p.g == nil {
		return errorf(op, ErrMalformedInput, "nil params")
	}
	if err := checkBuffer(dst, p.EncodedSize()); err != nil {
		return wrapError(op, ErrInvalidLength, err)
	}
	w := fieldWriter{buf: dst}
	w.put(p.g.Bytes())
	w.put(p.g2.Bytes())
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Params) MarshalBinary() ([]byte, error) {
	if p == nil || p.g == nil {
		return nil, errorf("Params.MarshalBinary", ErrMalformedInput, "nil params")
	}
	out := make([]byte, p.EncodedSize())
	if err := p.Encode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeParams parses scheme parameters, for example to pass as Config.Params
// when opening a Library in another process.
func (l *Library) DecodeParams(data []byte) (*Params, error) {
	const op = "DecodeParams"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	want := l.backend.G1Size() + l.backend.G2Size()
	if len(data) != want {
		return nil, errorf(op, ErrMalformedInput, "params are %d bytes, want %d", len(data), want)
	}
	r := fieldReader{data: data}
	p, err := l.readParams(&r)
	if err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	return p, nil
}

func (l *Library) readParams(r *fieldReader) (*Params, error) {
	g, err := l.backend.DecodeG1(r.advance(l.backend.G1Size()))
	if err != nil {
		return nil, fmt.Errorf("g: %w", err)
	}
	g2, err := l.backend.DecodeG2(r.advance(l.backend.G2Size()))
	if err != nil {
		return nil, fmt.Errorf("g2: %w", err)
	}
	p := &Params{backend: l.backend, g: g, g2: g2}
	if err := l.checkParams(p); err != nil {
		return nil, err
	}
	return p, nil
}

// =============================================================================
// KeyPair
// =============================================================================

func keyPairSize(b pairing.Backend, kind KeyKind) int {
	n := tagSize + 2*b.G1Size() + 2*b.G2Size() + b.GTSize()
	if kind == KeySecret {
		n += b.ScalarSize()
	}
	return n
}

// EncodedSize returns the exact encoded length of this key pair's variant.
func (kp *KeyPair) EncodedSize() int {
	return keyPairSize(kp.backend, kp.kind)
}

// Encode writes the key pair into dst, which must be EncodedSize bytes. A
// secret key pair's encoding contains the secret; callers should zeroize dst
// once it is no longer needed.
func (kp *KeyPair) Encode(dst []byte) error {
	const op = "KeyPair.Encode"
	if kp == nil || kp.pk == nil || kp.params == nil {
		return errorf(op, ErrInvalidKey, "released key pair")
	}
	if err := checkBuffer(dst, kp.EncodedSize()); err != nil {
		return wrapError(op, ErrInvalidLength, err)
	}
	w := fieldWriter{buf: dst}
	w.putByte(byte(kp.kind))
	w.put(kp.params.g.Bytes())
	w.put(kp.params.g2.Bytes())
	w.put(kp.pk.Bytes())
	w.put(kp.pk2.Bytes())
	w.put(kp.z.Bytes())
	if kp.kind == KeySecret {
		kp.sk.FillBytes(dst[w.off:])
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (kp *KeyPair) MarshalBinary() ([]byte, error) {
	if kp == nil || kp.backend == nil {
		return nil, errorf("KeyPair.MarshalBinary", ErrInvalidKey, "nil key pair")
	}
	out := make([]byte, kp.EncodedSize())
	if err := kp.Encode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// KeyPairSize returns the encoded length of a key pair of the given kind.
func (l *Library) KeyPairSize(kind KeyKind) int {
	return keyPairSize(l.backend, kind)
}

// DecodeKeyPair parses a key pair and checks that its elements are consistent:
// pk = g^a, pk2 = g2^a and Z = e(g,g2)^a for secret key pairs, and
// e(pk,g2) = Z = e(g,pk2) for public ones.
func (l *Library) DecodeKeyPair(data []byte) (*KeyPair, error) {
	const op = "DecodeKeyPair"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if len(data) < tagSize {
		return nil, errorf(op, ErrMalformedInput, "empty input")
	}
	kind := KeyKind(data[0])
	if kind != KeySecret && kind != KeyPublic {
		return nil, errorf(op, ErrMalformedInput, "unknown key kind %q", data[0])
	}
	if want := keyPairSize(l.backend, kind); len(data) != want {
		return nil, errorf(op, ErrMalformedInput, "%s key pair is %d bytes, want %d", kind, len(data), want)
	}

	kp, err := l.readKeyPair(kind, &fieldReader{data: data[tagSize:]})
	if err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	return kp, nil
}

func (l *Library) readKeyPair(kind KeyKind, r *fieldReader) (*KeyPair, error) {
	b := l.backend
	params, err := l.readParams(r)
	if err != nil {
		return nil, err
	}
	pk, err := b.DecodeG1(r.advance(b.G1Size()))
	if err != nil {
		return nil, fmt.Errorf("pk: %w", err)
	}
	pk2, err := b.DecodeG2(r.advance(b.G2Size()))
	if err != nil {
		return nil, fmt.Errorf("pk2: %w", err)
	}
	z, err := b.DecodeGT(r.advance(b.GTSize()))
	if err != nil {
		return nil, fmt.Errorf("Z: %w", err)
	}
	if pk.IsIdentity() || pk2.IsIdentity() {
		return nil, errors.New("identity public key")
	}

	if kind == KeyPublic {
		if err := l.checkPublicConsistency(params, pk, pk2, z); err != nil {
			return nil, err
		}
		return &KeyPair{kind: KeyPublic, params: params, pk: pk, pk2: pk2, z: z, backend: b}, nil
	}

	a, err := b.DecodeScalar(r.advance(b.ScalarSize()))
	if err != nil {
		return nil, fmt.Errorf("secret: %w", err)
	}
	kp, err := l.assembleKeyPair(params, a)
	if err != nil {
		a.Free()
		return nil, err
	}
	if !kp.pk.Equal(pk) || !kp.pk2.Equal(pk2) || !kp.z.Equal(z) {
		kp.Free()
		return nil, errors.New("public elements do not match the secret")
	}
	return kp, nil
}

func (l *Library) checkPublicConsistency(params *Params, pk pairing.G1, pk2 pairing.G2, z pairing.GT) error {
	left, err := l.backend.Pair(pk, params.g2)
	if err != nil {
		return err
	}
	right, err := l.backend.Pair(params.g, pk2)
	if err != nil {
		return err
	}
	if !left.Equal(z) || !right.Equal(z) {
		return errors.New("public elements are inconsistent")
	}
	return nil
}

// =============================================================================
// Ciphertext
// =============================================================================

func ciphertextSize(b pairing.Backend, level Level) int {
	n := tagSize + b.GTSize()
	if level == LevelReEncrypted {
		return n + b.GTSize()
	}
	return n + b.G1Size()
}

// EncodedSize returns the exact encoded length for the ciphertext's level.
func (ct *Ciphertext) EncodedSize() int {
	return ciphertextSize(ct.backend, ct.level)
}

// Encode writes the ciphertext into dst, which must be EncodedSize bytes.
func (ct *Ciphertext) Encode(dst []byte) error {
	const op = "Ciphertext.Encode"
	if ct == nil || ct.c1 == nil {
		return errorf(op, ErrMalformedInput, "released ciphertext")
	}
	if err := checkBuffer(dst, ct.EncodedSize()); err != nil {
		return wrapError(op, ErrInvalidLength, err)
	}
	w := fieldWriter{buf: dst}
	w.putByte(byte(ct.level))
	w.put(ct.c1.Bytes())
	switch ct.level {
	case LevelOriginal:
		w.put(ct.c2G.Bytes())
	case LevelReEncrypted:
		w.put(ct.c2T.Bytes())
	default:
		return errorf(op, ErrInvalidCiphertextLevel, "level %q", byte(ct.level))
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (ct *Ciphertext) MarshalBinary() ([]byte, error) {
	if ct == nil || ct.backend == nil {
		return nil, errorf("Ciphertext.MarshalBinary", ErrMalformedInput, "nil ciphertext")
	}
	out := make([]byte, ct.EncodedSize())
	if err := ct.Encode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CiphertextSize returns the encoded length of a ciphertext of the given level.
func (l *Library) CiphertextSize(level Level) int {
	return ciphertextSize(l.backend, level)
}

// DecodeCiphertext parses a ciphertext of either level.
func (l *Library) DecodeCiphertext(data []byte) (*Ciphertext, error) {
	const op = "DecodeCiphertext"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if len(data) < tagSize {
		return nil, errorf(op, ErrMalformedInput, "empty input")
	}
	level := Level(data[0])
	if level != LevelOriginal && level != LevelReEncrypted {
		return nil, errorf(op, ErrMalformedInput, "unknown ciphertext level %q", data[0])
	}
	if want := ciphertextSize(l.backend, level); len(data) != want {
		return nil, errorf(op, ErrMalformedInput, "%s ciphertext is %d bytes, want %d", level, len(data), want)
	}

	b := l.backend
	r := fieldReader{data: data[tagSize:]}
	c1, err := b.DecodeGT(r.advance(b.GTSize()))
	if err != nil {
		return nil, wrapError(op, ErrMalformedInput, fmt.Errorf("C1: %w", err))
	}
	ct := &Ciphertext{level: level, c1: c1, backend: b}
	if level == LevelOriginal {
		ct.c2G, err = b.DecodeG1(r.advance(b.G1Size()))
	} else {
		ct.c2T, err = b.DecodeGT(r.advance(b.GTSize()))
	}
	if err != nil {
		return nil, wrapError(op, ErrMalformedInput, fmt.Errorf("C2: %w", err))
	}
	return ct, nil
}

// =============================================================================
// Token
// =============================================================================

// EncodedSize returns the exact encoded length of the token.
func (t *Token) EncodedSize() int {
	return t.backend.G2Size()
}

// Encode writes the token into dst, which must be EncodedSize bytes.
func (t *Token) Encode(dst []byte) error {
	const op = "Token.Encode"
	if t == nil || t.rk == nil {
		return errorf(op, ErrMalformedInput, "released token")
	}
	if err := checkBuffer(dst, t.EncodedSize()); err != nil {
		return wrapError(op, ErrInvalidLength, err)
	}
	copy(dst, t.rk.Bytes())
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *Token) MarshalBinary() ([]byte, error) {
	if t == nil || t.backend == nil {
		return nil, errorf("Token.MarshalBinary", ErrMalformedInput, "nil token")
	}
	out := make([]byte, t.EncodedSize())
	if err := t.Encode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// TokenSize returns the encoded length of a token.
func (l *Library) TokenSize() int {
	return l.backend.G2Size()
}

// DecodeToken parses a token.
func (l *Library) DecodeToken(data []byte) (*Token, error) {
	const op = "DecodeToken"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if want := l.backend.G2Size(); len(data) != want {
		return nil, errorf(op, ErrMalformedInput, "token is %d bytes, want %d", len(data), want)
	}
	rk, err := l.backend.DecodeG2(data)
	if err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	if rk.IsIdentity() {
		return nil, errorf(op, ErrMalformedInput, "token is the identity")
	}
	return &Token{rk: rk, backend: l.backend}, nil
}

// =============================================================================
// Message
// =============================================================================

// EncodedSize returns the exact encoded length of the message.
func (m *Message) EncodedSize() int {
	return m.backend.GTSize()
}

// Encode writes the message into dst, which must be EncodedSize bytes.
func (m *Message) Encode(dst []byte) error {
	const op = "Message.Encode"
	if m == nil || m.m == nil {
		return errorf(op, ErrMalformedInput, "released message")
	}
	if err := checkBuffer(dst, m.EncodedSize()); err != nil {
		return wrapError(op, ErrInvalidLength, err)
	}
	enc := m.m.Bytes()
	copy(dst, enc)
	ZeroizeBytes(enc)
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Message) MarshalBinary() ([]byte, error) {
	if m == nil || m.backend == nil {
		return nil, errorf("Message.MarshalBinary", ErrMalformedInput, "nil message")
	}
	out := make([]byte, m.EncodedSize())
	if err := m.Encode(out); err != nil {
		return nil, err
	}
	return out, nil
}

// MessageSize returns the encoded length of a message.
func (l *Library) MessageSize() int {
	return l.backend.GTSize()
}

// DecodeMessage parses a message.
func (l *Library) DecodeMessage(data []byte) (*Message, error) {
	const op = "DecodeMessage"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if want := l.backend.GTSize(); len(data) != want {
		return nil, errorf(op, ErrMalformedInput, "message is %d bytes, want %d", len(data), want)
	}
	x, err := l.backend.DecodeGT(data)
	if err != nil {
		return nil, wrapError(op, ErrMalformedInput, err)
	}
	return &Message{m: x, backend: l.backend}, nil
}
