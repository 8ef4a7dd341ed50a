// Package logging provides the logging facade used by cbpre.
//
// The Logger interface wraps the subset of log/slog that the library needs, so
// applications can plug in their own implementation for tests, redaction
// policies or an existing logging system.
//
//	logger := logging.New(nil) // slog.Default()
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})
//	lib, err := cbpre.Open(cbpre.Config{Logger: logging.New(slog.New(handler))})
//
// # Redaction
//
// Secret scalars, plaintext messages and derived symmetric keys are never
// logged. Where an attribute would carry one, the library emits
// logging.Redacted(key) instead:
//
//	logger.Debug(ctx, "key pair generated", logging.Redacted("secret"))
//	// secret="[redacted]"
//
// Discard returns a Logger that drops everything, which keeps test output
// quiet.
package logging
