// Package pairing defines the capability set that cbpre consumes from a
// pairing-friendly curve library, and ships adapters for two of them.
//
// A Backend exposes three prime-order groups G1, G2 and GT of the same order
// together with a bilinear map e: G1 × G2 → GT. The core never touches curve
// arithmetic directly; it only calls the methods declared here.
//
// # Backends
//
//   - BLS12381 (cloudflare/circl ecc/bls12381), the default
//   - BN256 (golang.org/x/crypto/bn256)
//
// Look a backend up by name with Lookup:
//
//	b, err := pairing.Lookup(pairing.NameBLS12381)
//	if err != nil {
//	    return err
//	}
//
// # Notation
//
// Both groups are written multiplicatively in the API: Exp is the group
// exponent (scalar multiplication on the curve), Mul and Inv act on GT.
//
// # Memory Management
//
// Scalars may hold secrets and must be released with Free, which overwrites the
// limbs before dropping the reference. A finalizer is set as a safety net only.
// Group elements carry no secret material.
package pairing
