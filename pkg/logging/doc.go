// Package logging configures the log/slog loggers used by the interceptors
// and the lsd-capture command.
//
// Components accept a *slog.Logger and fall back to Nop when none is given,
// so embedding the interceptors in an application never produces output the
// application did not ask for.
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatJSON,
//	})
//	logger.Info("proxy listening", "addr", ":8080")
package logging
