package cbpre

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/dlog"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// DefaultIntegerMax is the search bound DecodeInteger uses when
// IntegerOptions.Max is zero.
const DefaultIntegerMax = 1 << 20

// IntegerOptions bound the discrete-log search run by DecodeInteger.
type IntegerOptions struct {
	// Max is the largest integer that can be recovered. Zero selects
	// DefaultIntegerMax.
	Max uint64

	// Mode selects the search algorithm. The zero value is baby-step
	// giant-step.
	Mode dlog.Mode
}

func (o IntegerOptions) max() uint64 {
	if o.Max == 0 {
		return DefaultIntegerMax
	}
	return o.Max
}

// EncodeInteger embeds x as the message e(g,g2)^x for the scheme parameters of
// kp. The ciphertexts it produces decrypt to this element for the owner and for
// any delegate on the same parameters, and DecodeInteger recovers x from it.
func (l *Library) EncodeInteger(kp *KeyPair, x uint64) (*Message, error) {
	const op = "EncodeInteger"
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireKey(kp); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	base, err := l.integerBase(kp.params)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	var m pairing.GT
	if x == 0 {
		m, err = base.Mul(base.Inv())
		if err != nil {
			return nil, wrapError(op, ErrBackend, err)
		}
	} else {
		k := pairing.NewScalar(l.backend, new(big.Int).SetUint64(x))
		m = base.Exp(k)
		k.Free()
	}
	return &Message{m: m, backend: l.backend}, nil
}

// DecodeInteger recovers x from a decrypted message e(g,g2)^x. It fails with
// ErrNotFound when x exceeds opts.Max or the message is not an embedded
// integer at all.
//
// Every call builds a fresh search table; callers decoding many values should
// use IntegerSolver once and reuse it.
func (l *Library) DecodeInteger(ctx context.Context, kp *KeyPair, m *Message, opts IntegerOptions) (uint64, error) {
	const op = "DecodeInteger"
	s, err := l.integerSolver(op, kp, opts)
	if err != nil {
		return 0, err
	}
	return l.solveInteger(ctx, op, s, m)
}

// IntegerSolver returns a reusable discrete-log solver for the integer
// embedding of kp's scheme parameters.
func (l *Library) IntegerSolver(kp *KeyPair, opts IntegerOptions) (*dlog.Solver, error) {
	return l.integerSolver("IntegerSolver", kp, opts)
}

// DecodeIntegerWith is DecodeInteger with a solver from IntegerSolver.
func (l *Library) DecodeIntegerWith(ctx context.Context, s *dlog.Solver, m *Message) (uint64, error) {
	const op = "DecodeIntegerWith"
	if s == nil {
		return 0, errorf(op, ErrMalformedInput, "nil solver")
	}
	return l.solveInteger(ctx, op, s, m)
}

func (l *Library) integerSolver(op string, kp *KeyPair, opts IntegerOptions) (*dlog.Solver, error) {
	if err := l.ready(op); err != nil {
		return nil, err
	}
	if err := l.requireKey(kp); err != nil {
		return nil, wrapError(op, ErrInvalidKey, err)
	}
	base, err := l.integerBase(kp.params)
	if err != nil {
		return nil, wrapError(op, ErrBackend, err)
	}
	s, err := dlog.New(l.backend, base, opts.max(), opts.Mode)
	if err != nil {
		if errors.Is(err, dlog.ErrRangeTooLarge) {
			return nil, wrapError(op, ErrInvalidLength, err)
		}
		return nil, wrapError(op, ErrBackend, err)
	}
	return s, nil
}

func (l *Library) solveInteger(ctx context.Context, op string, s *dlog.Solver, m *Message) (uint64, error) {
	if err := l.ready(op); err != nil {
		return 0, err
	}
	if err := l.requireMessage(m); err != nil {
		return 0, wrapError(op, ErrMalformedInput, err)
	}
	x, err := s.Solve(ctx, m.m)
	switch {
	case err == nil:
	case errors.Is(err, dlog.ErrNotFound):
		return 0, wrapError(op, ErrNotFound, fmt.Errorf("search bound %d: %w", s.Max(), err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return 0, &Error{Op: op, Err: err}
	default:
		return 0, wrapError(op, ErrBackend, err)
	}
	l.log.Debug(ctx, "integer recovered", "mode", s.Mode().String(), logging.Redacted("value"))
	return x, nil
}

func (l *Library) integerBase(p *Params) (pairing.GT, error) {
	return l.backend.Pair(p.g, p.g2)
}
