package cbpre_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-pre-go/pkg/cbpre"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

func TestOpenDefaults(t *testing.T) {
	lib := openLibrary(t, cbpre.Config{})
	assert.Equal(t, pairing.NameBLS12381, lib.Backend().Name())
	require.NotNil(t, lib.Params())
	assert.Equal(t, pairing.NameBLS12381, lib.Params().BackendName())
	assert.False(t, lib.Params().G().IsIdentity())
	assert.False(t, lib.Params().G2().IsIdentity())
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := cbpre.Open(cbpre.Config{Backend: "curve25519", Logger: logging.Discard()})
	require.ErrorIs(t, err, cbpre.ErrUnknownBackend)

	var opErr *cbpre.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "Open", opErr.Op)
	assert.True(t, strings.HasPrefix(err.Error(), "cbpre.Open: "), err.Error())
}

func TestIndependentLibrariesSampleDistinctParams(t *testing.T) {
	a := openLibrary(t, cbpre.Config{})
	b := openLibrary(t, cbpre.Config{})
	assert.False(t, a.Params().Equal(b.Params()))
}

func TestOpenWithImportedParams(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)

		peer := openLibrary(t, cbpre.Config{Backend: lib.Backend().Name(), Params: lib.Params()})
		require.True(t, peer.Params().Equal(lib.Params()))
		bob, err := peer.GenerateKeyPair(ctx)
		require.NoError(t, err)
		defer bob.Free()

		m := newMessage(t, lib)
		ct, err := lib.Encrypt(ctx, alice, m)
		require.NoError(t, err)
		token, err := lib.GenerateTokenFor(ctx, alice, bob.PublicKey())
		require.NoError(t, err)
		ct2, err := lib.ApplyToken(ctx, token, ct)
		require.NoError(t, err)

		got, err := peer.Decrypt(ctx, bob, ct2)
		require.NoError(t, err)
		assert.True(t, got.Equal(m))
	})
}

func TestOpenRejectsForeignParams(t *testing.T) {
	bls := openLibrary(t, cbpre.Config{Backend: pairing.NameBLS12381})
	_, err := cbpre.Open(cbpre.Config{Backend: pairing.NameBN256, Params: bls.Params(), Logger: logging.Discard()})
	require.ErrorIs(t, err, cbpre.ErrMalformedInput)
}

func TestCloseIsSingleShot(t *testing.T) {
	lib, err := cbpre.Open(cbpre.Config{Logger: logging.Discard()})
	require.NoError(t, err)
	ctx := context.Background()
	alice, err := lib.GenerateKeyPair(ctx)
	require.NoError(t, err)
	defer alice.Free()
	m, err := lib.RandomMessage(ctx)
	require.NoError(t, err)

	require.NoError(t, lib.Close())
	require.ErrorIs(t, lib.Close(), cbpre.ErrLibraryClosed)

	_, err = lib.GenerateKeyPair(ctx)
	assert.ErrorIs(t, err, cbpre.ErrLibraryClosed)
	_, err = lib.RandomMessage(ctx)
	assert.ErrorIs(t, err, cbpre.ErrLibraryClosed)
	_, err = lib.Encrypt(ctx, alice, m)
	assert.ErrorIs(t, err, cbpre.ErrLibraryClosed)
	_, err = lib.DecodeMessage(nil)
	assert.ErrorIs(t, err, cbpre.ErrLibraryClosed)
	_, err = lib.DeriveSymmetricKey(m, 32)
	assert.ErrorIs(t, err, cbpre.ErrLibraryClosed)

	// Entities stay readable after Close.
	_, err = m.SymmetricKey(32)
	assert.NoError(t, err)
}

func TestLibraryLogsWithoutSecrets(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	lib := openLibrary(t, cbpre.Config{Logger: logging.New(slog.New(handler))})
	ctx := t.Context()

	alice := newKeyPair(t, lib)
	m := newMessage(t, lib)
	ct, err := lib.Encrypt(ctx, alice, m)
	require.NoError(t, err)
	_, err = lib.Decrypt(ctx, alice, ct)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "library opened")
	assert.Contains(t, out, "backend=bls12381")
	assert.Contains(t, out, "secret="+logging.Placeholder())
	assert.Contains(t, out, "plaintext="+logging.Placeholder())
	assert.Contains(t, out, "ciphertext_level=original")
}

func TestVersionInfo(t *testing.T) {
	assert.NotEmpty(t, cbpre.WrapperVersion())
	assert.Equal(t, pairing.Names(), cbpre.Backends())
	assert.True(t, strings.HasPrefix(cbpre.BackendVersion(pairing.NameBLS12381), "github.com/cloudflare/circl@"))
	assert.True(t, strings.HasPrefix(cbpre.BackendVersion(pairing.NameBN256), "golang.org/x/crypto@"))
	assert.Empty(t, cbpre.BackendVersion("nope"))
}
