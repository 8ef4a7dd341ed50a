package cbpre

import (
	"crypto/subtle"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

func constantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

func backendName(b pairing.Backend) string {
	if b == nil {
		return "none"
	}
	return b.Name()
}
