// Package log builds the slog loggers used by reconchain.
//
// SecureHandler wraps any slog.Handler and masks values that look like
// credentials before they are written: recon provider API keys, proxy
// passwords embedded in URLs, bearer and basic authorization values.
// Tool command lines are logged at debug level, and they can carry a
// proxy URL or provider key, so masking applies in verbose mode too.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("starting tool", "command", "httpx -proxy http://user:pw@127.0.0.1:8080")
//	// command="httpx -proxy http://***REDACTED***@127.0.0.1:8080"
package log
