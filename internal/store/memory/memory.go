// Package memory provides an in-process store.Store used by tests and local
// development. It implements the full contract including live snapshot
// subscriptions, dotted-path updates and array-union merge writes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hearth/internal/store"
)

var _ store.Store = (*Store)(nil)

type document struct {
	fields    map[string]any
	createdAt time.Time
	seq       int64
}

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]*document
	subs        map[string][]*subscription
	seq         int64

	// now is swapped out by tests that need deterministic timestamps.
	now func() time.Time
}

func New() *Store {
	return &Store{
		collections: map[string]map[string]*document{},
		subs:        map[string][]*subscription{},
		now:         time.Now,
	}
}

// SetClock overrides the server-timestamp source. Test use only.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *Store) Close() error { return nil }

func (s *Store) Get(_ context.Context, collection, id string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc.snapshot(), nil
}

func (s *Store) Query(_ context.Context, collection string, q store.Query) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []store.Document
	for id, doc := range s.collections[collection] {
		fields := doc.snapshot()
		if q.Matches(fields) {
			out = append(out, store.Document{ID: id, Fields: fields})
		}
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.seq++
	s.docs(collection)[id] = &document{
		fields:    cloneMap(fields),
		createdAt: s.now(),
		seq:       s.seq,
	}
	s.publishLocked(collection)
	return id, nil
}

func (s *Store) Update(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	for path, value := range fields {
		store.SetPath(doc.fields, path, cloneValue(value))
	}
	s.publishLocked(collection)
	return nil
}

func (s *Store) MergeWrite(_ context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collections[collection][id]
	if !ok {
		// Merge writes are upserts, matching the remote store.
		s.seq++
		doc = &document{fields: map[string]any{}, createdAt: s.now(), seq: s.seq}
		s.docs(collection)[id] = doc
	}
	store.Merge(doc.fields, cloneMap(fields))
	s.publishLocked(collection)
	return nil
}

func (s *Store) Subscribe(_ context.Context, collection string) (store.Subscription, error) {
	sub := &subscription{ch: make(chan store.Snapshot, 1), stop: func() {}}
	s.mu.Lock()
	s.subs[collection] = append(s.subs[collection], sub)
	col := collection
	sub.stop = func() { s.remove(col, sub) }
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()
	sub.push(snap)
	return sub, nil
}

// Seed inserts a document with a fixed ID, bypassing ID generation. It lets
// tests and fixtures build collections with known identifiers.
func (s *Store) Seed(collection, id string, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.docs(collection)[id] = &document{
		fields:    cloneMap(fields),
		createdAt: s.now(),
		seq:       s.seq,
	}
	s.publishLocked(collection)
}

func (s *Store) docs(collection string) map[string]*document {
	col, ok := s.collections[collection]
	if !ok {
		col = map[string]*document{}
		s.collections[collection] = col
	}
	return col
}

func (s *Store) remove(collection string, target *subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subs[collection]
	for i, sub := range subs {
		if sub == target {
			s.subs[collection] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (s *Store) publishLocked(collection string) {
	if len(s.subs[collection]) == 0 {
		return
	}
	snap := s.snapshotLocked(collection)
	for _, sub := range s.subs[collection] {
		sub.push(snap)
	}
}

// snapshotLocked renders the collection ordered by creation time ascending,
// with the insert sequence as tiebreak for writes within one clock tick.
func (s *Store) snapshotLocked(collection string) store.Snapshot {
	col := s.collections[collection]
	docs := make([]*document, 0, len(col))
	ids := make(map[*document]string, len(col))
	for id, doc := range col {
		docs = append(docs, doc)
		ids[doc] = id
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].createdAt.Equal(docs[j].createdAt) {
			return docs[i].createdAt.Before(docs[j].createdAt)
		}
		return docs[i].seq < docs[j].seq
	})
	snap := store.Snapshot{Docs: make([]store.Document, len(docs))}
	for i, doc := range docs {
		snap.Docs[i] = store.Document{ID: ids[doc], Fields: doc.snapshot()}
	}
	return snap
}

// snapshot returns a deep copy carrying the server-assigned createdAt, so
// callers can never alias the stored maps.
func (d *document) snapshot() map[string]any {
	fields := cloneMap(d.fields)
	fields["createdAt"] = d.createdAt
	return fields
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	}
	return v
}
