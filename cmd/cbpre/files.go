package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/coinbase/cb-pre-go/pkg/cbpre"
)

// Entity files hold one base64 line of the binary encoding.

func readEntity(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer cbpre.ZeroizeBytes(raw)
	raw = bytes.TrimSpace(raw)
	out := make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
	n, err := base64.StdEncoding.Decode(out, raw)
	if err != nil {
		cbpre.ZeroizeBytes(out)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out[:n], nil
}

// writeEntity writes buf to path. Secret entities are written owner-only.
func writeEntity(path string, buf []byte, secret bool) error {
	perm := os.FileMode(0o644)
	if secret {
		perm = 0o600
	}
	enc := make([]byte, base64.StdEncoding.EncodedLen(len(buf))+1)
	base64.StdEncoding.Encode(enc, buf)
	enc[len(enc)-1] = '\n'
	defer cbpre.ZeroizeBytes(enc)
	return os.WriteFile(path, enc, perm)
}

type marshaler interface {
	MarshalBinary() ([]byte, error)
}

func writeMarshaled(path string, v marshaler, secret bool) error {
	buf, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	defer cbpre.ZeroizeBytes(buf)
	return writeEntity(path, buf, secret)
}

func readKeyPair(lib *cbpre.Library, path string) (*cbpre.KeyPair, error) {
	buf, err := readEntity(path)
	if err != nil {
		return nil, err
	}
	defer cbpre.ZeroizeBytes(buf)
	return lib.DecodeKeyPair(buf)
}

func readCiphertext(lib *cbpre.Library, path string) (*cbpre.Ciphertext, error) {
	buf, err := readEntity(path)
	if err != nil {
		return nil, err
	}
	return lib.DecodeCiphertext(buf)
}

func readToken(lib *cbpre.Library, path string) (*cbpre.Token, error) {
	buf, err := readEntity(path)
	if err != nil {
		return nil, err
	}
	return lib.DecodeToken(buf)
}

func readMessage(lib *cbpre.Library, path string) (*cbpre.Message, error) {
	buf, err := readEntity(path)
	if err != nil {
		return nil, err
	}
	defer cbpre.ZeroizeBytes(buf)
	return lib.DecodeMessage(buf)
}
