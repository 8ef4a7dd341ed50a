// Package dlog recovers small exponents in the target group of a pairing
// backend: given base and y = base^x with 0 <= x <= Max it returns x.
//
// It backs integer plaintexts, where a value x is embedded as e(g,g2)^x and
// decryption yields only the group element. The search is linear in Max for
// BruteForce and proportional to sqrt(Max) for BabyStepGiantStep, so it is
// useful only for small plaintext spaces such as counters or votes.
//
// A Solver precomputes its tables in New and is read-only afterwards; Solve is
// safe for concurrent use.
package dlog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Mode selects the search algorithm.
type Mode int

const (
	// BabyStepGiantStep trades a table of about sqrt(Max) elements for a
	// search of the same order. It is the default.
	BabyStepGiantStep Mode = iota
	// BruteForce walks base^0, base^1, ... up to base^Max with no table.
	BruteForce
)

func (m Mode) String() string {
	switch m {
	case BabyStepGiantStep:
		return "bsgs"
	case BruteForce:
		return "brute-force"
	default:
		return "unknown"
	}
}

// MaxTableSize bounds the baby-step table.
const MaxTableSize = 1 << 22

// checkEvery is how many steps run between context checks.
const checkEvery = 1 << 10

var (
	// ErrNotFound reports that no exponent in [0, Max] matches.
	ErrNotFound = errors.New("dlog: exponent not found in range")

	// ErrRangeTooLarge reports a Max whose baby-step table would exceed
	// MaxTableSize.
	ErrRangeTooLarge = errors.New("dlog: range too large")
)

// Solver finds exponents of a fixed base.
type Solver struct {
	backend  pairing.Backend
	base     pairing.GT
	identity pairing.GT
	max      uint64
	mode     Mode

	// Baby-step giant-step state.
	step  uint64            // baby steps per giant step
	table map[string]uint64 // encoding of base^j -> j, for j < step
	giant pairing.GT        // base^-step
}

// New validates base and prepares a Solver for exponents in [0, max].
func New(b pairing.Backend, base pairing.GT, max uint64, mode Mode) (*Solver, error) {
	if b == nil {
		return nil, errors.New("dlog: nil backend")
	}
	if base == nil {
		return nil, errors.New("dlog: nil base")
	}
	if err := b.ValidateGT(base); err != nil {
		return nil, fmt.Errorf("dlog: base: %w", err)
	}
	if base.IsIdentity() {
		return nil, errors.New("dlog: base is the identity")
	}

	identity, err := base.Mul(base.Inv())
	if err != nil {
		return nil, fmt.Errorf("dlog: %w", err)
	}
	s := &Solver{backend: b, base: base, identity: identity, max: max, mode: mode}

	switch mode {
	case BruteForce:
	case BabyStepGiantStep:
		if err := s.buildTable(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("dlog: unknown mode %d", mode)
	}
	return s, nil
}

// Max returns the largest exponent the Solver searches for.
func (s *Solver) Max() uint64 { return s.max }

// Mode returns the search algorithm.
func (s *Solver) Mode() Mode { return s.mode }

func (s *Solver) buildTable() error {
	if s.max/MaxTableSize >= MaxTableSize {
		return fmt.Errorf("%w: max %d needs more than %d baby steps", ErrRangeTooLarge, s.max, MaxTableSize)
	}
	step := ceilSqrt(s.max)

	table := make(map[string]uint64, step)
	cur := s.identity
	for j := uint64(0); j < step; j++ {
		table[string(cur.Bytes())] = j
		next, err := cur.Mul(s.base)
		if err != nil {
			return fmt.Errorf("dlog: %w", err)
		}
		cur = next
	}

	// After the loop cur = base^step.
	s.step = step
	s.table = table
	s.giant = cur.Inv()
	return nil
}

// Solve returns x in [0, Max] with base^x = y. It fails with ErrNotFound when
// no such x exists and with ctx.Err() when ctx is cancelled mid-search.
func (s *Solver) Solve(ctx context.Context, y pairing.GT) (uint64, error) {
	if y == nil {
		return 0, errors.New("dlog: nil element")
	}
	if err := s.backend.ValidateGT(y); err != nil {
		return 0, fmt.Errorf("dlog: %w", err)
	}
	if s.mode == BruteForce {
		return s.bruteForce(ctx, y)
	}
	return s.babyStepGiantStep(ctx, y)
}

func (s *Solver) bruteForce(ctx context.Context, y pairing.GT) (uint64, error) {
	cur := s.identity
	for x := uint64(0); ; x++ {
		if x%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if cur.Equal(y) {
			return x, nil
		}
		if x == s.max {
			return 0, ErrNotFound
		}
		next, err := cur.Mul(s.base)
		if err != nil {
			return 0, fmt.Errorf("dlog: %w", err)
		}
		cur = next
	}
}

func (s *Solver) babyStepGiantStep(ctx context.Context, y pairing.GT) (uint64, error) {
	// x = i·step + j; gamma = y·base^(-i·step).
	gamma := y
	for i := uint64(0); i <= s.max/s.step; i++ {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if j, ok := s.table[string(gamma.Bytes())]; ok {
			x := i*s.step + j
			if x <= s.max {
				return x, nil
			}
			return 0, ErrNotFound
		}
		next, err := gamma.Mul(s.giant)
		if err != nil {
			return 0, fmt.Errorf("dlog: %w", err)
		}
		gamma = next
	}
	return 0, ErrNotFound
}

// Exp returns base^x, the embedding Solve inverts.
func (s *Solver) Exp(x uint64) pairing.GT {
	if x == 0 {
		return s.identity
	}
	k := pairing.NewScalar(s.backend, new(big.Int).SetUint64(x))
	defer k.Free()
	return s.base.Exp(k)
}

// ceilSqrt returns the smallest n with n·n > max, so that every x in [0, max]
// is i·n + j with i, j < n. max must be below MaxTableSize².
func ceilSqrt(max uint64) uint64 {
	n := uint64(math.Sqrt(float64(max + 1)))
	for n*n < max+1 {
		n++
	}
	for n > 1 && (n-1)*(n-1) >= max+1 {
		n--
	}
	if n == 0 {
		n = 1
	}
	return n
}
