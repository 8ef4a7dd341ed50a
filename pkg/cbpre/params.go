package cbpre

import (
	"errors"
	"fmt"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Params are the scheme generators g ∈ G1 and g2 ∈ G2. Delegation only works
// between key pairs that share them, so a deployment fixes one Params value and
// every principal's key pair is generated against it.
type Params struct {
	backend pairing.Backend
	g       pairing.G1
	g2      pairing.G2
}

// G returns the generator of G1.
func (p *Params) G() pairing.G1 { return p.g }

// G2 returns the generator of G2.
func (p *Params) G2() pairing.G2 { return p.g2 }

// BackendName returns the name of the pairing backend the generators live on.
func (p *Params) BackendName() string {
	if p == nil || p.backend == nil {
		return ""
	}
	return p.backend.Name()
}

// Equal reports whether both values hold the same generators.
func (p *Params) Equal(other *Params) bool {
	if p == nil || other == nil || p.g == nil || other.g == nil {
		return false
	}
	return p.BackendName() == other.BackendName() && p.g.Equal(other.g) && p.g2.Equal(other.g2)
}

func (l *Library) sampleParams() (*Params, error) {
	g, err := l.backend.RandomG1(l.rand)
	if err != nil {
		return nil, fmt.Errorf("sample g: %w", err)
	}
	g2, err := l.backend.RandomG2(l.rand)
	if err != nil {
		return nil, fmt.Errorf("sample g2: %w", err)
	}
	return &Params{backend: l.backend, g: g, g2: g2}, nil
}

func (l *Library) checkParams(p *Params) error {
	if p.g == nil || p.g2 == nil {
		return errors.New("empty params")
	}
	if !l.owns(p.backend) {
		return fmt.Errorf("params for backend %q", p.BackendName())
	}
	if err := l.backend.ValidateG1(p.g); err != nil {
		return err
	}
	if err := l.backend.ValidateG2(p.g2); err != nil {
		return err
	}
	if p.g.IsIdentity() || p.g2.IsIdentity() {
		return errors.New("identity generator")
	}
	return nil
}
