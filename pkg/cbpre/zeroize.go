package cbpre

import "runtime"

// ZeroizeBytes overwrites each buffer with zeros. Use it on the encoding of a
// secret key pair, on message encodings, and on keys returned by
// SymmetricKey once they are no longer needed.
//
// Copies held by the pairing backend or moved by the garbage collector are out
// of reach; KeyPair.Free and Message.Free release those references.
func ZeroizeBytes(bufs ...[]byte) {
	for _, buf := range bufs {
		clear(buf)
		// Keep the stores from being eliminated (golang/go#33325).
		runtime.KeepAlive(buf)
	}
}
