package cbpre

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"sync/atomic"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Library is the group context: one initialized pairing backend plus the
// scheme parameters shared by every key pair it generates. All cryptographic
// operations are methods on a Library.
//
// A Library holds no mutable state besides its closed flag, so its methods are
// safe for concurrent use. Independent Libraries do not interfere.
type Library struct {
	backend pairing.Backend
	params  *Params
	rand    io.Reader
	log     logging.Logger
	closed  atomic.Bool
}

// Open initializes the pairing backend named by cfg and fixes the scheme
// parameters. It must precede every other call.
func Open(cfg Config) (*Library, error) {
	const op = "Open"

	b, err := pairing.Lookup(cfg.backendName())
	if err != nil {
		return nil, wrapError(op, ErrUnknownBackend, err)
	}

	l := &Library{
		backend: b,
		rand:    cfg.Rand,
		log:     logging.ForLibrary(cfg.logger(), b.Name()),
	}
	if l.rand == nil {
		l.rand = rand.Reader
	}

	if cfg.Params != nil {
		if err := l.checkParams(cfg.Params); err != nil {
			return nil, wrapError(op, ErrMalformedInput, err)
		}
		l.params = cfg.Params
	} else {
		p, err := l.sampleParams()
		if err != nil {
			return nil, wrapError(op, ErrBackend, err)
		}
		l.params = p
	}

	l.log.Info(context.Background(), "library opened", "imported_params", cfg.Params != nil)
	return l, nil
}

// Close finalizes the Library. Every entity derived from it should be released
// first. The second call returns ErrLibraryClosed.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	if !l.closed.CompareAndSwap(false, true) {
		return ErrLibraryClosed
	}
	l.log.Info(context.Background(), "library closed")
	return nil
}

// Backend returns the pairing backend the Library was opened with.
func (l *Library) Backend() pairing.Backend {
	return l.backend
}

// Params returns the scheme parameters used by GenerateKeyPair.
func (l *Library) Params() *Params {
	return l.params
}

// ready guards every operation entry point.
func (l *Library) ready(op string) error {
	if l == nil || l.backend == nil {
		return &Error{Op: op, Err: errors.New("nil library")}
	}
	if l.closed.Load() {
		return &Error{Op: op, Err: ErrLibraryClosed}
	}
	return nil
}

// owns reports whether an entity built on backend b may be mixed with this
// Library's elements.
func (l *Library) owns(b pairing.Backend) bool {
	return b != nil && b.Name() == l.backend.Name()
}
