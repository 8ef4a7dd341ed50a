package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"cbpre"}, args...))
	require.NoError(t, err, "cbpre %s: %s", strings.Join(args, " "), errOut.String())
	return out.String()
}

func TestDelegationFlow(t *testing.T) {
	for _, backend := range []string{"bls12381", "bn256"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			p := func(name string) string { return filepath.Join(dir, name) }
			b := []string{"--backend", backend}

			run(t, append(b, "keygen", "--out", p("alice.key"))...)
			run(t, append(b, "keygen", "--params-from", p("alice.key"), "--out", p("bob.key"))...)
			run(t, append(b, "public", "--in", p("bob.key"), "--out", p("bob.pub"))...)
			run(t, append(b, "public", "--in", p("alice.key"), "--out", p("alice.pub"))...)

			run(t, append(b, "encrypt", "--key", p("alice.pub"), "--out", p("msg.ct"), "--message-out", p("msg.m"))...)
			run(t, append(b, "token", "--from", p("alice.key"), "--to", p("bob.pub"), "--out", p("a2b.tok"))...)
			run(t, append(b, "reencrypt", "--token", p("a2b.tok"), "--in", p("msg.ct"), "--out", p("msg.ct2"))...)
			run(t, append(b, "decrypt", "--key", p("bob.key"), "--in", p("msg.ct2"), "--out", p("got.m"))...)

			want := run(t, append(b, "key", "--in", p("msg.m"), "--length", "32")...)
			got := run(t, append(b, "key", "--in", p("got.m"), "--length", "32")...)
			require.Equal(t, want, got)
			require.NotEmpty(t, strings.TrimSpace(got))
		})
	}
}

func TestIntegerFlow(t *testing.T) {
	dir := t.TempDir()
	p := func(name string) string { return filepath.Join(dir, name) }

	run(t, "keygen", "--out", p("alice.key"))
	run(t, "derive", "--in", p("alice.key"), "--out", p("alice2.key"))
	run(t, "public", "--in", p("alice2.key"), "--out", p("alice2.pub"))
	run(t, "encrypt", "--key", p("alice.key"), "--integer", "1234", "--out", p("n.ct"))
	run(t, "token", "--from", p("alice.key"), "--to", p("alice2.pub"), "--out", p("rot.tok"))
	run(t, "reencrypt", "--token", p("rot.tok"), "--in", p("n.ct"), "--out", p("n.ct2"))

	out := run(t, "decrypt", "--key", p("alice2.key"), "--in", p("n.ct2"), "--integer-max", "5000")
	require.Equal(t, "1234", strings.TrimSpace(out))
}

func TestReencryptTwiceFails(t *testing.T) {
	dir := t.TempDir()
	p := func(name string) string { return filepath.Join(dir, name) }

	run(t, "keygen", "--out", p("a.key"))
	run(t, "keygen", "--params-from", p("a.key"), "--out", p("b.key"))
	run(t, "public", "--in", p("b.key"), "--out", p("b.pub"))
	run(t, "encrypt", "--key", p("a.key"), "--out", p("ct"))
	run(t, "token", "--from", p("a.key"), "--to", p("b.pub"), "--out", p("tok"))
	run(t, "reencrypt", "--token", p("tok"), "--in", p("ct"), "--out", p("ct2"))

	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run([]string{"cbpre", "reencrypt", "--token", p("tok"), "--in", p("ct2"), "--out", p("ct3")})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid ciphertext level")
}

func TestMissingFlag(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run([]string{"cbpre", "keygen"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "--out")
}

func TestBackendsCommand(t *testing.T) {
	out := run(t, "backends")
	require.Contains(t, out, "bls12381")
	require.Contains(t, out, "bn256")
}

func TestVerboseLogsToStderr(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run([]string{"cbpre", "--verbose", "keygen", "--out", filepath.Join(dir, "a.key")})
	require.NoError(t, err, errOut.String())
	require.Contains(t, out.String(), "a.key")
	require.Contains(t, errOut.String(), "level=DEBUG")
}

func TestVersionFlag(t *testing.T) {
	out := run(t, "--version")
	require.Contains(t, out, "cbpre version")
}
