// Package config loads, validates, and normalizes the TOML configuration
// used by the carousel daemon and CLI.
package config
