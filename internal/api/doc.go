// Package api exposes the daemon's admin HTTP surface: account and queue
// management, run history, manual triggers, and the public uploads directory
// the remote platform fetches staged media from.
package api
