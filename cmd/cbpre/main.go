// Command cbpre drives proxy re-encryption from the shell. Key pairs,
// ciphertexts, tokens and messages are exchanged as files holding base64 of
// their binary encoding, so each role (owner, proxy, delegate) can run in a
// separate process.
//
//	cbpre keygen --out alice.key
//	cbpre keygen --params-from alice.key --out bob.key
//	cbpre public --in bob.key --out bob.pub
//	cbpre encrypt --key alice.key --out msg.ct --message-out msg.m
//	cbpre token --from alice.key --to bob.pub --out a2b.tok
//	cbpre reencrypt --token a2b.tok --in msg.ct --out msg.ct2
//	cbpre decrypt --key bob.key --in msg.ct2 --out got.m
//	cbpre key --in got.m --length 32
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/coinbase/cb-pre-go/pkg/cbpre"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/logging"
	"github.com/coinbase/cb-pre-go/pkg/cbpre/pairing"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "cbpre"
	app.Usage = "single-hop proxy re-encryption over a bilinear pairing"
	app.Version = cbpre.WrapperVersion()
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "backend, b",
			Value: pairing.NameBLS12381,
			Usage: "pairing backend, one of " + fmt.Sprint(cbpre.Backends()),
		},
		// -v is taken by the built-in --version flag.
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log operations to stderr",
		},
	}
	app.Commands = []cli.Command{
		cli.Command{
			Name:  "keygen",
			Usage: "generate a secret key pair",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "out, o", Usage: "secret key pair file"},
				cli.StringFlag{Name: "params-from", Usage: "key pair file whose generators to join"},
			},
			Action: keygenCommand,
		},
		cli.Command{
			Name:  "derive",
			Usage: "derive the next key pair for rotation",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "in, i", Usage: "current secret key pair file"},
				cli.StringFlag{Name: "out, o", Usage: "new secret key pair file"},
			},
			Action: deriveCommand,
		},
		cli.Command{
			Name:  "public",
			Usage: "export the public view of a key pair",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "in, i", Usage: "key pair file"},
				cli.StringFlag{Name: "out, o", Usage: "public key pair file"},
			},
			Action: publicCommand,
		},
		cli.Command{
			Name:  "encrypt",
			Usage: "encrypt a fresh random message, or an integer, under a key pair",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "key, k", Usage: "owner key pair file, public or secret"},
				cli.StringFlag{Name: "out, o", Usage: "ciphertext file"},
				cli.StringFlag{Name: "message-out", Usage: "file for the plaintext message"},
				cli.StringFlag{Name: "integer", Usage: "encrypt this unsigned integer instead of a random message"},
			},
			Action: encryptCommand,
		},
		cli.Command{
			Name:  "token",
			Usage: "generate a re-encryption token from a delegator to a delegate",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "from", Usage: "delegator secret key pair file"},
				cli.StringFlag{Name: "to", Usage: "delegate public key pair file"},
				cli.StringFlag{Name: "out, o", Usage: "token file"},
			},
			Action: tokenCommand,
		},
		cli.Command{
			Name:  "reencrypt",
			Usage: "apply a token to an original ciphertext",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "token, t", Usage: "token file"},
				cli.StringFlag{Name: "in, i", Usage: "original ciphertext file"},
				cli.StringFlag{Name: "out, o", Usage: "re-encrypted ciphertext file"},
			},
			Action: reencryptCommand,
		},
		cli.Command{
			Name:  "decrypt",
			Usage: "decrypt a ciphertext of either level",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "key, k", Usage: "secret key pair file"},
				cli.StringFlag{Name: "in, i", Usage: "ciphertext file"},
				cli.StringFlag{Name: "out, o", Usage: "file for the plaintext message"},
				cli.Uint64Flag{Name: "integer-max", Usage: "recover an embedded integer up to this bound"},
			},
			Action: decryptCommand,
		},
		cli.Command{
			Name:  "key",
			Usage: "derive a symmetric key from a message file",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "in, i", Usage: "message file"},
				cli.IntFlag{Name: "length, l", Value: 32, Usage: "key length in bytes"},
			},
			Action: keyCommand,
		},
		cli.Command{
			Name:   "backends",
			Usage:  "list pairing backends and the libraries behind them",
			Action: backendsCommand,
		},
	}
	return app
}

// openLibrary opens a Library for the global flags. Every command runs in its
// own process, so the Library's sampled generators are only used by keygen
// when no --params-from is given.
func openLibrary(c *cli.Context, params *cbpre.Params) (*cbpre.Library, error) {
	cfg := cbpre.Config{
		Backend: c.GlobalString("backend"),
		Params:  params,
		Logger:  logging.Discard(),
	}
	if c.GlobalBool("verbose") {
		h := slog.NewTextHandler(errWriter(c), &slog.HandlerOptions{Level: slog.LevelDebug})
		cfg.Logger = logging.New(slog.New(h))
	}
	return cbpre.Open(cfg)
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
