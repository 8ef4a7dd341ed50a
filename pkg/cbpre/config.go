package cbpre

import (
	"io"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

// Config expresses the knobs of a Library. The zero value is ready to use: the
// BLS12-381 backend, crypto/rand and slog.Default().
type Config struct {
	// Backend names the pairing backend, see pairing.Names. Leaving it empty
	// selects pairing.NameBLS12381.
	Backend string

	// Params imports the scheme generators of an existing deployment, typically
	// taken from a decoded key pair with KeyPair.Params. When nil, Open samples
	// fresh generators and every key pair of the Library shares them.
	Params *Params

	// Rand is the entropy source for every scalar and group element sampled by
	// the Library. Nil selects crypto/rand.Reader. It must be a CSPRNG.
	Rand io.Reader

	// Logger receives operation logs. Nil selects logging.New(nil).
	Logger logging.Logger
}

func (c Config) backendName() string {
	if c.Backend == "" {
		return pairing.NameBLS12381
	}
	return c.Backend
}

func (c Config) logger() logging.Logger {
	if c.Logger == nil {
		return logging.New(nil)
	}
	return c.Logger
}
