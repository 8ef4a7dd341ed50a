package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/urfave/cli"

	"github.com/coinbase/cb-pre-go/pkg/cbpre"
)

func requireFlags(c *cli.Context, names ...string) error {
	for _, name := range names {
		if c.String(name) == "" {
			return fmt.Errorf("%s: missing --%s", c.Command.Name, name)
		}
	}
	return nil
}

// withLibrary opens a Library for the command and closes it afterwards.
func withLibrary(c *cli.Context, fn func(ctx context.Context, lib *cbpre.Library) error) (err error) {
	lib, err := openLibrary(c, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := lib.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(context.Background(), lib)
}

func status(c *cli.Context, format string, args ...any) {
	fmt.Fprintln(c.App.Writer, green("✓ ")+fmt.Sprintf(format, args...))
}

func keygenCommand(c *cli.Context) error {
	if err := requireFlags(c, "out"); err != nil {
		return err
	}
	return withLibrary(c, func(ctx context.Context, lib *cbpre.Library) error {
		var (
			kp  *cbpre.KeyPair
			err error
		)
		if peerPath := c.String("params-from"); peerPath != "" {
			peer, perr := readKeyPair(lib, peerPath)
			if perr != nil {
				return perr
			}
			defer peer.Free()
			kp, err = lib.GenerateKeyPairFor(ctx, peer.Params())
		} else {
			kp, err = lib.GenerateKeyPair(ctx)
		}
		if err != nil {
			return err
		}
		defer kp.Free()

		if err := writeMarshaled(c.String("out"), kp, true); err != nil {
			return err
		}
		status(c, "secret key pair written to %s", cyan(c.String("out")))
		return nil
	})
}

func deriveCommand(c *cli.Context) error {
	if err := requireFlags(c, "in", "out"); err != nil {
		return err
	}
	return withLibrary(c, func(ctx context.Context, lib *cbpre.Library) error {
		existing, err := readKeyPair(lib, c.String("in"))
		if err != nil {
			return err
		}
		defer existing.Free()

		next, err := lib.DeriveNextKeyPair(ctx, existing)
		if err != nil {
			return err
		}
		defer next.Free()

		if err := writeMarshaled(c.String("out"), next, true); err != nil {
			return err
		}
		status(c, "derived key pair written to %s", cyan(c.String("out")))
		return nil
	})
}

func publicCommand(c *cli.Context) error {
	if err := requireFlags(c, "in", "out"); err != nil {
		return err
	}
	return withLibrary(c, func(_ context.Context, lib *cbpre.Library) error {
		kp, err := readKeyPair(lib, c.String("in"))
		if err != nil {
			return err
		}
		defer kp.Free()

		if err := writeMarshaled(c.String("out"), kp.PublicKey(), false); err != nil {
			return err
		}
		status(c, "public key pair written to %s", cyan(c.String("out")))
		return nil
	})
}

func encryptCommand(c *cli.Context) error {
	if err := requireFlags(c, "key", "out"); err != nil {
		return err
	}
	return withLibrary(c, func(ctx context.Context, lib *cbpre.Library) error {
		kp, err := readKeyPair(lib, c.String("key"))
		if err != nil {
			return err
		}
		defer kp.Free()

		var m *cbpre.Message
		if s := c.String("integer"); s != "" {
			x, perr := strconv.ParseUint(s, 10, 64)
			if perr != nil {
				return fmt.Errorf("encrypt: --integer: %w", perr)
			}
			m, err = lib.EncodeInteger(kp, x)
		} else {
			m, err = lib.RandomMessage(ctx)
		}
		if err != nil {
			return err
		}
		defer m.Free()

		ct, err := lib.Encrypt(ctx, kp.PublicKey(), m)
		if err != nil {
			return err
		}
		if err := writeMarshaled(c.String("out"), ct, false); err != nil {
			return err
		}
		if path := c.String("message-out"); path != "" {
			if err := writeMarshaled(path, m, true); err != nil {
				return err
			}
			status(c, "plaintext message written to %s", cyan(path))
		}
		status(c, "%s ciphertext written to %s", ct.Level(), cyan(c.String("out")))
		return nil
	})
}

func tokenCommand(c *cli.Context) error {
	if err := requireFlags(c, "from", "to", "out"); err != nil {
		return err
	}
	return withLibrary(c, func(ctx context.Context, lib *cbpre.Library) error {
		delegator, err := readKeyPair(lib, c.String("from"))
		if err != nil {
			return err
		}
		defer delegator.Free()
		delegate, err := readKeyPair(lib, c.String("to"))
		if err != nil {
			return err
		}
		defer delegate.Free()

		if delegate.IsSecret() {
			fmt.Fprintln(errWriter(c), yellow("warning: --to holds a secret key pair; only its public part is used"))
		}
		token, err := lib.GenerateTokenFor(ctx, delegator, delegate.PublicKey())
		if err != nil {
			return err
		}
		if err := writeMarshaled(c.String("out"), token, false); err != nil {
			return err
		}
		status(c, "token written to %s", cyan(c.String("out")))
		return nil
	})
}

func reencryptCommand(c *cli.Context) error {
	if err := requireFlags(c, "token", "in", "out"); err != nil {
		return err
	}
	return withLibrary(c, func(ctx context.Context, lib *cbpre.Library) error {
		token, err := readToken(lib, c.String("token"))
		if err != nil {
			return err
		}
		ct, err := readCiphertext(lib, c.String("in"))
		if err != nil {
			return err
		}
		out, err := lib.ApplyToken(ctx, token, ct)
		if err != nil {
			return err
		}
		if err := writeMarshaled(c.String("out"), out, false); err != nil {
			return err
		}
		status(c, "%s ciphertext written to %s", out.Level(), cyan(c.String("out")))
		return nil
	})
}

func decryptCommand(c *cli.Context) error {
	if err := requireFlags(c, "key", "in"); err != nil {
		return err
	}
	if c.String("out") == "" && !c.IsSet("integer-max") {
		return fmt.Errorf("decrypt: need --out or --integer-max")
	}
	return withLibrary(c, func(ctx context.Context, lib *cbpre.Library) error {
		kp, err := readKeyPair(lib, c.String("key"))
		if err != nil {
			return err
		}
		defer kp.Free()
		ct, err := readCiphertext(lib, c.String("in"))
		if err != nil {
			return err
		}

		m, err := lib.Decrypt(ctx, kp, ct)
		if err != nil {
			return err
		}
		defer m.Free()

		if path := c.String("out"); path != "" {
			if err := writeMarshaled(path, m, true); err != nil {
				return err
			}
			status(c, "plaintext message written to %s", cyan(path))
		}
		if c.IsSet("integer-max") {
			x, err := lib.DecodeInteger(ctx, kp, m, cbpre.IntegerOptions{Max: c.Uint64("integer-max")})
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, x)
		}
		return nil
	})
}

func keyCommand(c *cli.Context) error {
	if err := requireFlags(c, "in"); err != nil {
		return err
	}
	return withLibrary(c, func(_ context.Context, lib *cbpre.Library) error {
		m, err := readMessage(lib, c.String("in"))
		if err != nil {
			return err
		}
		defer m.Free()

		key, err := lib.DeriveSymmetricKey(m, c.Int("length"))
		if err != nil {
			return err
		}
		defer cbpre.ZeroizeBytes(key)
		fmt.Fprintln(c.App.Writer, base64.StdEncoding.EncodeToString(key))
		return nil
	})
}

func backendsCommand(c *cli.Context) error {
	for _, name := range cbpre.Backends() {
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", cyan(name), cbpre.BackendVersion(name))
	}
	return nil
}
