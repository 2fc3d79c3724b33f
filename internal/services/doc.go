// Package services holds the shared error taxonomy for external-service
// clients, plus the client subpackages themselves.
package services
