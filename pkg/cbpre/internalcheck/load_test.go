package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

var checkedPackages = []string{
	"github.com/coinbase/cb-pre-go/pkg/cbpre",
	"github.com/coinbase/cb-pre-go/pkg/cbpre/dlog",
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing",
}

func loadChecked(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()
	pkgs, err := packages.Load(&packages.Config{Mode: mode}, checkedPackages...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if n := packages.PrintErrors(pkgs); n > 0 {
		t.Fatalf("load packages: %d errors", n)
	}
	if len(pkgs) != len(checkedPackages) {
		t.Fatalf("loaded %d packages, want %d", len(pkgs), len(checkedPackages))
	}
	return pkgs
}
