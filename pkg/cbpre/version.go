package cbpre

import (
	"runtime/debug"

	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

var (
	Version = "v0.0.0-in-progress"

	// backendModules maps each pairing backend to the module implementing it.
	backendModules = map[string]string{
		pairing.NameBLS12381: "github.com/cloudflare/circl",
		pairing.NameBN256:    "golang.org/x/crypto",
	}
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// BackendVersion returns the module path and version of the library behind the
// named pairing backend, as recorded in the binary's build information. It
// returns "unknown" when build information is unavailable (for example in
// tests) and "" for an unregistered backend.
func BackendVersion(name string) string {
	path, ok := backendModules[name]
	if !ok {
		return ""
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return path + "@unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == path {
			return path + "@" + dep.Version
		}
	}
	return path + "@unknown"
}

// Backends lists the pairing backends compiled into this binary.
func Backends() []string {
	return pairing.Names()
}
