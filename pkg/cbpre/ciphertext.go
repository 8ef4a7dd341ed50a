package cbpre

import (
	"errors"
	"fmt"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Level tags a ciphertext as re-encryptable or terminal. The values are the
// level byte of the ciphertext encoding.
type Level byte

const (
	// LevelOriginal is a level-2 ciphertext under the owner's key: C2 ∈ G1. It
	// can be re-encrypted once.
	LevelOriginal Level = '1'

	// LevelReEncrypted is a level-1 ciphertext for the delegate: C2 ∈ GT. It is
	// terminal.
	LevelReEncrypted Level = '2'
)

func (l Level) String() string {
	switch l {
	case LevelOriginal:
		return "original"
	case LevelReEncrypted:
		return "re-encrypted"
	default:
		return "unknown"
	}
}

// Ciphertext is C1 = m·Z^r together with either C2G = g^r (LevelOriginal) or
// C2T = e(g^r, token) (LevelReEncrypted). Exactly one of C2G and C2T is set.
type Ciphertext struct {
	level   Level
	c1      pairing.GT
	c2G     pairing.G1
	c2T     pairing.GT
	backend pairing.Backend
}

// Level returns the ciphertext level.
func (ct *Ciphertext) Level() Level { return ct.level }

// C1 returns the masked message.
func (ct *Ciphertext) C1() pairing.GT { return ct.c1 }

// C2G returns g^r for LevelOriginal ciphertexts and nil otherwise.
func (ct *Ciphertext) C2G() pairing.G1 { return ct.c2G }

// C2T returns the paired mask for LevelReEncrypted ciphertexts and nil
// otherwise.
func (ct *Ciphertext) C2T() pairing.GT { return ct.c2T }

// Equal compares level and every populated field.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	if ct == nil || other == nil || ct.c1 == nil || other.c1 == nil {
		return false
	}
	if ct.level != other.level || !ct.c1.Equal(other.c1) {
		return false
	}
	switch ct.level {
	case LevelOriginal:
		return ct.c2G.Equal(other.c2G)
	case LevelReEncrypted:
		return ct.c2T.Equal(other.c2T)
	default:
		return false
	}
}

// Free drops every element reference.
func (ct *Ciphertext) Free() {
	if ct == nil {
		return
	}
	ct.c1 = nil
	ct.c2G = nil
	ct.c2T = nil
}

// requireCiphertext checks that ct is live, built on this backend and has the
// C2 field its level calls for.
func (l *Library) requireCiphertext(ct *Ciphertext) error {
	if ct == nil || ct.c1 == nil {
		return errors.New("nil ciphertext")
	}
	if !l.owns(ct.backend) {
		return fmt.Errorf("ciphertext for backend %q", backendName(ct.backend))
	}
	switch ct.level {
	case LevelOriginal:
		if ct.c2G == nil || ct.c2T != nil {
			return errors.New("original ciphertext without C2 in G1")
		}
	case LevelReEncrypted:
		if ct.c2T == nil || ct.c2G != nil {
			return errors.New("re-encrypted ciphertext without C2 in GT")
		}
	default:
		return fmt.Errorf("unknown level %q", byte(ct.level))
	}
	return nil
}
