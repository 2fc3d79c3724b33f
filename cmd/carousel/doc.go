// Command carousel is the admin CLI for the carousel daemon. It manages
// accounts and the media queue, triggers runs, and inspects run history over
// the daemon's HTTP API.
package main
