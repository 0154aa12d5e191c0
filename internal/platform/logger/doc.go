// Package logger configures the process-wide slog JSON logger and carries a
// request-scoped logger through context.Context.
package logger
