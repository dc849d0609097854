// Package sqlite backs store.Store with a local SQLite database, one JSON
// document per row. It keeps the full contract — including dotted-path
// updates, array-union merges and live subscriptions — so a household can
// run fully offline. Subscriptions fan out in-process; an optional change
// feed (internal/events) lets separate processes on the same database see
// each other's writes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"hearth/internal/store"
)

var _ store.Store = (*Store)(nil)

// ChangePublisher broadcasts that a collection changed, so other processes
// sharing the database can refresh their subscriptions.
type ChangePublisher interface {
	PublishChange(ctx context.Context, collection string) error
}

type Store struct {
	db        *sql.DB
	publisher ChangePublisher

	mu   sync.Mutex
	subs map[string][]*subscription
}

// New opens (creating if needed) the database at dbPath and runs the schema
// migrations. publisher may be nil when no cross-process feed is configured.
func New(dbPath string, publisher ChangePublisher) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:        db,
		publisher: publisher,
		subs:      map[string][]*subscription{},
	}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	for _, subs := range s.subs {
		for _, sub := range subs {
			sub.closeCh()
		}
	}
	s.subs = map[string][]*subscription{}
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT fields, created_at FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	)
	var raw string
	var createdAt int64
	if err := row.Scan(&raw, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return decodeRow(raw, createdAt)
}

func (s *Store) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	docs, err := s.load(ctx, collection)
	if err != nil {
		return nil, err
	}
	// Documents are schemaless JSON; filtering happens here rather than
	// in SQL so the matching semantics stay identical across backends.
	matched := docs[:0]
	for _, doc := range docs {
		if q.Matches(doc.Fields) {
			matched = append(matched, doc)
		}
	}
	return matched, nil
}

func (s *Store) Insert(ctx context.Context, collection string, fields map[string]any) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (collection, id, fields, created_at) VALUES (?, ?, ?, ?)",
		collection, id, string(raw), time.Now().UnixNano(),
	)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	s.changed(ctx, collection)
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	err := s.rewrite(ctx, collection, id, false, func(doc map[string]any) {
		for path, value := range fields {
			store.SetPath(doc, path, value)
		}
	})
	if err != nil {
		return err
	}
	s.changed(ctx, collection)
	return nil
}

func (s *Store) MergeWrite(ctx context.Context, collection, id string, fields map[string]any) error {
	err := s.rewrite(ctx, collection, id, true, func(doc map[string]any) {
		store.Merge(doc, fields)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, collection)
	return nil
}

// rewrite applies fn to one document's JSON inside a transaction, so
// concurrent writers on the same row serialize instead of clobbering each
// other's reads. upsert creates the document when missing.
func (s *Store) rewrite(ctx context.Context, collection, id string, upsert bool, fn func(map[string]any)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	doc := map[string]any{}
	fresh := false
	err = tx.QueryRowContext(ctx,
		"SELECT fields FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		if !upsert {
			return store.ErrNotFound
		}
		fresh = true
	case err != nil:
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	default:
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
	}

	fn(doc)

	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}
	if fresh {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO documents (collection, id, fields, created_at) VALUES (?, ?, ?, ?)",
			collection, id, string(encoded), time.Now().UnixNano(),
		)
	} else {
		_, err = tx.ExecContext(ctx,
			"UPDATE documents SET fields = ? WHERE collection = ? AND id = ?",
			string(encoded), collection, id,
		)
	}
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

func (s *Store) Subscribe(ctx context.Context, collection string) (store.Subscription, error) {
	snap, err := s.snapshot(ctx, collection)
	if err != nil {
		return nil, err
	}
	sub := &subscription{ch: make(chan store.Snapshot, 1)}
	s.mu.Lock()
	s.subs[collection] = append(s.subs[collection], sub)
	s.mu.Unlock()
	sub.stop = func() { s.remove(collection, sub) }
	sub.push(snap)
	return sub, nil
}

// Refresh re-reads a collection and republishes it to local subscribers.
// The events consumer calls it when another process announces a change.
func (s *Store) Refresh(ctx context.Context, collection string) error {
	s.mu.Lock()
	active := len(s.subs[collection]) > 0
	s.mu.Unlock()
	if !active {
		return nil
	}
	snap, err := s.snapshot(ctx, collection)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs[collection] {
		sub.push(snap)
	}
	return nil
}

func (s *Store) changed(ctx context.Context, collection string) {
	// Local subscribers first, then the cross-process announcement.
	// Refresh errors only degrade liveness; the write itself succeeded.
	if err := s.Refresh(ctx, collection); err != nil {
		return
	}
	if s.publisher != nil {
		_ = s.publisher.PublishChange(ctx, collection)
	}
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

func (s *Store) snapshot(ctx context.Context, collection string) (store.Snapshot, error) {
	docs, err := s.load(ctx, collection)
	if err != nil {
		return store.Snapshot{}, err
	}
	return store.Snapshot{Docs: docs}, nil
}

func (s *Store) load(ctx context.Context, collection string) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, fields, created_at FROM documents WHERE collection = ? ORDER BY created_at ASC, rowid ASC",
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var id, raw string
		var createdAt int64
		if err := rows.Scan(&id, &raw, &createdAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		fields, err := decodeRow(raw, createdAt)
		if err != nil {
			return nil, err
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	return docs, rows.Err()
}

func decodeRow(raw string, createdAt int64) (map[string]any, error) {
	fields := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	fields["createdAt"] = time.Unix(0, createdAt).UTC()
	return fields, nil
}
