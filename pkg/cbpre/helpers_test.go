package cbpre_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-pre-go/pkg/cbpre"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
)

// forEachBackend runs fn against a fresh Library per registered backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, lib *cbpre.Library)) {
	t.Helper()
	for _, name := range cbpre.Backends() {
		t.Run(name, func(t *testing.T) {
			lib := openLibrary(t, cbpre.Config{Backend: name})
			fn(t, lib)
		})
	}
}

func openLibrary(t *testing.T, cfg cbpre.Config) *cbpre.Library {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	lib, err := cbpre.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func newKeyPair(t *testing.T, lib *cbpre.Library) *cbpre.KeyPair {
	t.Helper()
	kp, err := lib.GenerateKeyPair(t.Context())
	require.NoError(t, err)
	t.Cleanup(kp.Free)
	return kp
}

func newMessage(t *testing.T, lib *cbpre.Library) *cbpre.Message {
	t.Helper()
	m, err := lib.RandomMessage(t.Context())
	require.NoError(t, err)
	return m
}
