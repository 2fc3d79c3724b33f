// Package store persists accounts, queued media items, run records, and
// attempt logs in SQLite.
package store
