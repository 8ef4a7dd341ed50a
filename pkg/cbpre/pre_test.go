package cbpre_test

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-pre-go/pkg/cbpre"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// TestDelegationScenario walks the owner→proxy→delegate flow end to end.
func TestDelegationScenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)
		bob := newKeyPair(t, lib)
		m := newMessage(t, lib)

		ct, err := lib.Encrypt(ctx, alice, m)
		require.NoError(t, err)
		require.Equal(t, cbpre.LevelOriginal, ct.Level())
		require.NotNil(t, ct.C2G())
		require.Nil(t, ct.C2T())

		got, err := lib.Decrypt(ctx, alice, ct)
		require.NoError(t, err)
		assert.True(t, got.Equal(m), "owner decryption of original ciphertext")

		token, err := lib.GenerateToken(ctx, alice, bob.PK2())
		require.NoError(t, err)

		ct2, err := lib.ApplyToken(ctx, token, ct)
		require.NoError(t, err)
		require.Equal(t, cbpre.LevelReEncrypted, ct2.Level())
		require.Nil(t, ct2.C2G())
		require.NotNil(t, ct2.C2T())
		assert.True(t, ct2.C1().Equal(ct.C1()), "re-encryption keeps C1")

		got, err = lib.Decrypt(ctx, bob, ct2)
		require.NoError(t, err)
		assert.True(t, got.Equal(m), "delegate decryption of re-encrypted ciphertext")

		// The ciphertext carries no recipient binding: A opening B's
		// ciphertext gets an unrelated element.
		wrong, err := lib.Decrypt(ctx, alice, ct2)
		require.NoError(t, err)
		assert.False(t, wrong.Equal(m), "delegator must not recover m from the re-encrypted ciphertext")

		// B cannot open A's original ciphertext.
		wrong, err = lib.Decrypt(ctx, bob, ct)
		require.NoError(t, err)
		assert.False(t, wrong.Equal(m), "delegate must not recover m from the original ciphertext")

		// Both ends derive the same symmetric key.
		k1, err := m.SymmetricKey(32)
		require.NoError(t, err)
		k2, err := got.SymmetricKey(32)
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
	})
}

func TestSingleHop(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)
		bob := newKeyPair(t, lib)
		carol := newKeyPair(t, lib)

		ct, err := lib.Encrypt(ctx, alice, newMessage(t, lib))
		require.NoError(t, err)
		ab, err := lib.GenerateToken(ctx, alice, bob.PK2())
		require.NoError(t, err)
		bc, err := lib.GenerateToken(ctx, bob, carol.PK2())
		require.NoError(t, err)

		ct2, err := lib.ApplyToken(ctx, ab, ct)
		require.NoError(t, err)

		_, err = lib.ApplyToken(ctx, bc, ct2)
		require.ErrorIs(t, err, cbpre.ErrInvalidCiphertextLevel)
		_, err = lib.ApplyToken(ctx, ab, ct2)
		require.ErrorIs(t, err, cbpre.ErrInvalidCiphertextLevel)
	})
}

func TestTokenIsReusable(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)
		bob := newKeyPair(t, lib)
		token, err := lib.GenerateToken(ctx, alice, bob.PK2())
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			m := newMessage(t, lib)
			ct, err := lib.Encrypt(ctx, alice, m)
			require.NoError(t, err)
			ct2, err := lib.ApplyToken(ctx, token, ct)
			require.NoError(t, err)
			got, err := lib.Decrypt(ctx, bob, ct2)
			require.NoError(t, err)
			require.True(t, got.Equal(m), "message %d", i)
		}

		again, err := lib.GenerateTokenFor(ctx, alice, bob.PublicKey())
		require.NoError(t, err)
		assert.True(t, again.Equal(token), "token generation is deterministic")
	})
}

func TestKeySecrecy(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)
		bob := newKeyPair(t, lib)
		pub := alice.PublicKey()

		require.Equal(t, cbpre.KeyPublic, pub.Kind())
		require.False(t, pub.IsSecret())
		require.True(t, alice.IsSecret())
		assert.True(t, pub.PK().Equal(alice.PK()))
		assert.True(t, pub.Z().Equal(alice.Z()))
		assert.False(t, pub.Equal(alice))

		m := newMessage(t, lib)
		ct, err := lib.Encrypt(ctx, pub, m)
		require.NoError(t, err, "public view encrypts")

		_, err = lib.Decrypt(ctx, pub, ct)
		require.ErrorIs(t, err, cbpre.ErrInvalidKey)

		_, err = lib.GenerateToken(ctx, pub, bob.PK2())
		require.ErrorIs(t, err, cbpre.ErrInvalidKey)

		_, err = lib.DeriveNextKeyPair(ctx, pub)
		require.ErrorIs(t, err, cbpre.ErrInvalidKey)

		got, err := lib.Decrypt(ctx, alice, ct)
		require.NoError(t, err)
		assert.True(t, got.Equal(m), "ciphertext under public view opens with the secret key pair")
	})
}

func TestDeriveNextKeyPair(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)

		next, err := lib.DeriveNextKeyPair(ctx, alice)
		require.NoError(t, err)
		t.Cleanup(next.Free)

		assert.True(t, next.Params().Equal(alice.Params()), "generators carry over")
		assert.False(t, next.PK().Equal(alice.PK()), "secret is fresh")
		assert.False(t, next.Equal(alice))

		m := newMessage(t, lib)
		ct, err := lib.Encrypt(ctx, alice, m)
		require.NoError(t, err)

		wrong, err := lib.Decrypt(ctx, next, ct)
		require.NoError(t, err)
		assert.False(t, wrong.Equal(m), "derived key must not open the old key's ciphertext")

		// Rotation by delegation: old key hands its ciphertexts to the new one.
		token, err := lib.GenerateTokenFor(ctx, alice, next)
		require.NoError(t, err)
		ct2, err := lib.ApplyToken(ctx, token, ct)
		require.NoError(t, err)
		got, err := lib.Decrypt(ctx, next, ct2)
		require.NoError(t, err)
		assert.True(t, got.Equal(m))
	})
}

func TestEncryptionIsRandomized(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)
		m := newMessage(t, lib)

		ct1, err := lib.Encrypt(ctx, alice, m)
		require.NoError(t, err)
		ct2, err := lib.Encrypt(ctx, alice, m)
		require.NoError(t, err)

		assert.False(t, ct1.Equal(ct2))
		assert.False(t, ct1.C1().Equal(ct2.C1()))
		assert.False(t, ct1.C2G().Equal(ct2.C2G()))

		for _, ct := range []*cbpre.Ciphertext{ct1, ct2} {
			got, err := lib.Decrypt(ctx, alice, ct)
			require.NoError(t, err)
			assert.True(t, got.Equal(m))
		}
	})
}

func TestGenerateTokenRejectsBadDelegate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)

		_, err := lib.GenerateToken(ctx, alice, nil)
		require.ErrorIs(t, err, cbpre.ErrMalformedInput)

		zero := pairing.NewScalar(lib.Backend(), big.NewInt(0))
		identity := lib.Params().G2().Exp(zero)
		_, err = lib.GenerateToken(ctx, alice, identity)
		require.ErrorIs(t, err, cbpre.ErrMalformedInput)

		other := openLibrary(t, cbpre.Config{Backend: otherBackend(lib)})
		stranger := newKeyPair(t, other)
		_, err = lib.GenerateToken(ctx, alice, stranger.PK2())
		require.ErrorIs(t, err, cbpre.ErrMalformedInput)
	})
}

func TestGenerateTokenForRejectsForeignParams(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)

		sibling := openLibrary(t, cbpre.Config{Backend: lib.Backend().Name()})
		bob, err := sibling.GenerateKeyPair(ctx)
		require.NoError(t, err)
		defer bob.Free()

		_, err = lib.GenerateTokenFor(ctx, alice, bob)
		require.ErrorIs(t, err, cbpre.ErrInvalidKey)

		joined, err := lib.GenerateKeyPairFor(ctx, alice.Params())
		require.NoError(t, err)
		defer joined.Free()
		_, err = lib.GenerateTokenFor(ctx, alice, joined)
		require.NoError(t, err)
	})
}

func TestFreedEntitiesAreRejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice, err := lib.GenerateKeyPair(ctx)
		require.NoError(t, err)
		m := newMessage(t, lib)
		ct, err := lib.Encrypt(ctx, alice, m)
		require.NoError(t, err)

		alice.Free()
		alice.Free()
		require.False(t, alice.IsSecret())

		_, err = lib.Decrypt(ctx, alice, ct)
		require.ErrorIs(t, err, cbpre.ErrInvalidKey)
		_, err = lib.Encrypt(ctx, alice, m)
		require.ErrorIs(t, err, cbpre.ErrInvalidKey)

		ct.Free()
		bob := newKeyPair(t, lib)
		_, err = lib.Decrypt(ctx, bob, ct)
		require.ErrorIs(t, err, cbpre.ErrMalformedInput)

		m.Free()
		_, err = lib.Encrypt(ctx, bob, m)
		require.ErrorIs(t, err, cbpre.ErrMalformedInput)
	})
}

func TestConcurrentOperations(t *testing.T) {
	forEachBackend(t, func(t *testing.T, lib *cbpre.Library) {
		ctx := t.Context()
		alice := newKeyPair(t, lib)
		bob := newKeyPair(t, lib)
		token, err := lib.GenerateToken(ctx, alice, bob.PK2())
		require.NoError(t, err)

		const workers = 8
		var wg sync.WaitGroup
		errs := make(chan string, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m, err := lib.RandomMessage(ctx)
				if err != nil {
					errs <- err.Error()
					return
				}
				ct, err := lib.Encrypt(ctx, alice, m)
				if err != nil {
					errs <- err.Error()
					return
				}
				ct2, err := lib.ApplyToken(ctx, token, ct)
				if err != nil {
					errs <- err.Error()
					return
				}
				got, err := lib.Decrypt(ctx, bob, ct2)
				if err != nil {
					errs <- err.Error()
					return
				}
				if !got.Equal(m) {
					errs <- "round trip mismatch"
				}
			}()
		}
		wg.Wait()
		close(errs)
		for e := range errs {
			t.Error(e)
		}
	})
}

func otherBackend(lib *cbpre.Library) string {
	if lib.Backend().Name() == pairing.NameBLS12381 {
		return pairing.NameBN256
	}
	return pairing.NameBLS12381
}
