// Package cbpre implements single-hop proxy re-encryption over a bilinear
// pairing, following the AFGH construction.
//
// A data owner A encrypts a message under their own key pair. Later A issues a
// re-encryption token for a delegate B to a semi-trusted proxy. The proxy
// applies the token and B decrypts the result with B's own secret. The proxy
// never sees a plaintext or a secret key.
//
//	lib, err := cbpre.Open(cbpre.Config{})
//	if err != nil {
//	    return err
//	}
//	defer lib.Close()
//
//	alice, _ := lib.GenerateKeyPair(ctx)
//	bob, _ := lib.GenerateKeyPair(ctx)
//	defer alice.Free()
//	defer bob.Free()
//
//	m, _ := lib.RandomMessage(ctx)
//	ct, _ := lib.Encrypt(ctx, alice.PublicKey(), m)
//
//	token, _ := lib.GenerateToken(ctx, alice, bob.PK2())
//	ct2, _ := lib.ApplyToken(ctx, token, ct)
//
//	got, _ := lib.Decrypt(ctx, bob, ct2) // got.Equal(m)
//	key, _ := got.SymmetricKey(32)
//
// # Messages
//
// Plaintexts are elements of the target group GT. In practice a random message
// is sampled, encrypted, and turned into a symmetric key with
// Message.SymmetricKey on both ends. Small integers can be carried with
// EncodeInteger and recovered with DecodeInteger.
//
// # Levels
//
// Encrypt produces a LevelOriginal ciphertext that both the owner and, after
// ApplyToken, a delegate can open. ApplyToken produces a LevelReEncrypted
// ciphertext, which cannot be re-encrypted again.
//
// # Parameters
//
// Delegation requires that delegator and delegate share the generators g and
// g2. A Library samples them once in Open and every key pair it generates uses
// them; another process joins the deployment by passing them as Config.Params
// or by generating against KeyPair.Params of a decoded peer key.
//
// # Memory Management
//
// Secret key pairs hold a scalar that Free overwrites. Call Free as soon as a
// key pair is no longer required; finalizers exist only as a safety net.
// MarshalBinary of a secret key pair returns the secret; zeroize the buffer
// with ZeroizeBytes after use.
//
// # Concurrency
//
// Library methods and read-only entity methods are safe for concurrent use.
// Free must not race with other use of the same entity.
package cbpre
