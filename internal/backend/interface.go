// Package backend selects and constructs the document store implementation
// from configuration.
package backend

import (
	"context"

	"hearth/internal/store"
)

// CleanupFunc releases resources owned by a backend.
type CleanupFunc func() error

// Result contains the constructed store and its cleanup function.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Factory creates document stores based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Firestore specific
	FirestoreProjectID       string
	FirestoreCredentialsFile string
}

// Type identifies a store implementation.
type Type string

const (
	MemoryBackend    Type = "memory"
	SQLiteBackend    Type = "sqlite"
	FirestoreBackend Type = "firestore"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the backend type is known.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, FirestoreBackend:
		return true
	default:
		return false
	}
}
