package dlog_test

import (
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/dlog"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

func newBase(t *testing.T, b pairing.Backend) pairing.GT {
	t.Helper()
	base, err := b.RandomGT(rand.Reader)
	require.NoError(t, err)
	return base
}

func TestSolve(t *testing.T) {
	ctx := context.Background()
	for _, name := range pairing.Names() {
		b, err := pairing.Lookup(name)
		require.NoError(t, err)
		base := newBase(t, b)

		for _, mode := range []dlog.Mode{dlog.BabyStepGiantStep, dlog.BruteForce} {
			t.Run(name+"/"+mode.String(), func(t *testing.T) {
				const max = 300
				s, err := dlog.New(b, base, max, mode)
				require.NoError(t, err)
				require.Equal(t, uint64(max), s.Max())

				for _, x := range []uint64{0, 1, 2, 17, 18, 255, 299, 300} {
					got, err := s.Solve(ctx, s.Exp(x))
					require.NoError(t, err, "x=%d", x)
					require.Equal(t, x, got)
				}

				_, err = s.Solve(ctx, s.Exp(max+1))
				require.ErrorIs(t, err, dlog.ErrNotFound)

				_, err = s.Solve(ctx, newBase(t, b))
				require.ErrorIs(t, err, dlog.ErrNotFound)
			})
		}
	}
}

func TestSolveSmallRanges(t *testing.T) {
	ctx := context.Background()
	b := pairing.NewBN256()
	base := newBase(t, b)

	for max := uint64(0); max <= 10; max++ {
		s, err := dlog.New(b, base, max, dlog.BabyStepGiantStep)
		require.NoError(t, err)
		for x := uint64(0); x <= max; x++ {
			got, err := s.Solve(ctx, s.Exp(x))
			require.NoError(t, err, "max=%d x=%d", max, x)
			require.Equal(t, x, got)
		}
		_, err = s.Solve(ctx, s.Exp(max+1))
		require.ErrorIs(t, err, dlog.ErrNotFound, "max=%d", max)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	b := pairing.NewBLS12381()
	base := newBase(t, b)

	_, err := dlog.New(nil, base, 10, dlog.BruteForce)
	require.Error(t, err)

	_, err = dlog.New(b, nil, 10, dlog.BruteForce)
	require.Error(t, err)

	one, err := base.Mul(base.Inv())
	require.NoError(t, err)
	_, err = dlog.New(b, one, 10, dlog.BruteForce)
	require.Error(t, err, "identity base")

	_, err = dlog.New(b, newBase(t, pairing.NewBN256()), 10, dlog.BruteForce)
	require.ErrorIs(t, err, pairing.ErrForeignElement)

	_, err = dlog.New(b, base, 10, dlog.Mode(42))
	require.Error(t, err)

	_, err = dlog.New(b, base, 1<<62, dlog.BabyStepGiantStep)
	require.ErrorIs(t, err, dlog.ErrRangeTooLarge)
}

func TestSolveHonorsContext(t *testing.T) {
	b := pairing.NewBN256()
	s, err := dlog.New(b, newBase(t, b), 1<<16, dlog.BruteForce)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Solve(ctx, s.Exp(5000))
	require.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}
