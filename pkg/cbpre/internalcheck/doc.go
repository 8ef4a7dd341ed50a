// Package internalcheck holds source-level policy tests for the cbpre
// packages.
//
// The tests load pkg/cbpre, pkg/cbpre/pairing and pkg/cbpre/dlog with
// golang.org/x/tools/go/packages and fail on patterns that leak or compare
// secret material unsafely. The package has no exported API.
package internalcheck
