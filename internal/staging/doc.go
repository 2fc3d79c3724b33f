// Package staging copies processed media into a publicly served directory so
// the remote platform can fetch it by URL, and cleans the copies up afterwards.
package staging
