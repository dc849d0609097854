// Package store defines the document-synchronization contract the engines
// run against, plus the wire codec for the persisted record shapes. The
// concrete backends live in the subpackages (memory, sqlite, firestore) and
// are selected through internal/backend.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document (or a join-code query match) does
// not exist. Callers distinguish it from transport failures so they can give
// an actionable message instead of a generic one.
var ErrNotFound = errors.New("document not found")

const (
	OpEqual         Op = "=="
	OpArrayContains Op = "array-contains"
)

type (
	// Op is a query comparison operator.
	Op string

	// Query matches documents where Field compares to Value under Op.
	Query struct {
		Field string
		Op    Op
		Value any
	}

	// Document is one stored record: its identifier plus its fields.
	Document struct {
		ID     string
		Fields map[string]any
	}

	// Snapshot is a complete, point-in-time replacement of a collection's
	// contents, ordered by server-assigned creation time ascending.
	// Consumers always replace their working set wholesale; snapshots are
	// never merged as deltas.
	Snapshot struct {
		Docs []Document
	}

	// Subscription delivers a snapshot on every remote change until
	// stopped. Stop releases the subscription and closes Updates; it is
	// safe to call more than once.
	Subscription interface {
		Updates() <-chan Snapshot
		Stop()
	}

	// Store is the synchronization adapter the core reads and writes
	// through. Implementations assign document IDs and creation
	// timestamps at write time.
	Store interface {
		// Subscribe streams snapshots of a collection on every change,
		// starting with the current contents.
		Subscribe(ctx context.Context, collection string) (Subscription, error)

		// Get reads one document's fields, or ErrNotFound.
		Get(ctx context.Context, collection, id string) (map[string]any, error)

		// Query returns the documents matching q, once.
		Query(ctx context.Context, collection string, q Query) ([]Document, error)

		// Insert persists a new document and returns its assigned ID.
		Insert(ctx context.Context, collection string, fields map[string]any) (string, error)

		// Update applies partial fields to an existing document. Keys
		// may be dotted paths into nested maps ("shares.u1.paid"), so
		// one share can be toggled without rewriting the share map.
		Update(ctx context.Context, collection, id string, fields map[string]any) error

		// MergeWrite writes fields that union with existing content:
		// array values add their missing elements server-side rather
		// than replacing the stored array.
		MergeWrite(ctx context.Context, collection, id string, fields map[string]any) error

		// Close releases any resources held by the store.
		Close() error
	}

	// NameLookup resolves a member identifier to a display name. It is an
	// external collaborator; lookups may be slow or fail, and callers
	// degrade to showing the identifier.
	NameLookup interface {
		DisplayName(ctx context.Context, memberID string) (string, error)
	}
)
