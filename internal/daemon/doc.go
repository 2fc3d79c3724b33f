// Package daemon wires the long-running process together: the single-instance
// lock, the cron scheduler, the admin HTTP server, and the periodic cleanup of
// stale staged uploads.
package daemon
