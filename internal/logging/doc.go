// Package logging builds the shared slog logger and provides attribute
// helpers used across the daemon and CLI.
package logging
