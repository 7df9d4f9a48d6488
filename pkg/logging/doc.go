// Package logging provides structured logging utilities for kube2helm.
//
// This package wraps the standard library slog package with project defaults
// and conventions for consistent logging across the converter and CLI. It
// supports environment-based log level configuration, module/version context
// injection, and source location tracking for debug logs.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("kube2helm", version)
//
//	    slog.Info("processing manifest", "path", path)
//	    slog.Error("conversion failed", "error", err)
//	}
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("kube2helm", "v1.0.0", "warn")
//
// The LOG_LEVEL environment variable controls verbosity when no explicit
// level is given (debug, info, warn, error; default info). All logs are
// written to stderr in JSON format with module and version attributes.
package logging
