package firestore

import (
	"log/slog"
	"sync"

	cf "cloud.google.com/go/firestore"

	"hearth/internal/store"
)

// subscription adapts a Firestore snapshot iterator to the store contract.
// Like the other backends it holds at most one pending snapshot: a newer
// one replaces an undelivered one, since consumers only replace state.
type subscription struct {
	mu     sync.Mutex
	ch     chan store.Snapshot
	closed bool
	cancel func()
}

func newSubscription(cancel func()) *subscription {
	return &subscription{ch: make(chan store.Snapshot, 1), cancel: cancel}
}

func (s *subscription) Updates() <-chan store.Snapshot { return s.ch }

func (s *subscription) Stop() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

func (s *subscription) run(iter *cf.QuerySnapshotIterator) {
	for {
		qs, err := iter.Next()
		if err != nil {
			// Cancellation and transport failures both end the
			// stream; the consumer keeps its last-known-good
			// snapshot either way.
			s.mu.Lock()
			if !s.closed {
				s.closed = true
				close(s.ch)
				slog.Warn("firestore subscription ended", "error", err)
			}
			s.mu.Unlock()
			return
		}

		snaps, err := qs.Documents.GetAll()
		if err != nil {
			slog.Warn("firestore snapshot read failed", "error", err)
			continue
		}
		snap := store.Snapshot{Docs: make([]store.Document, len(snaps))}
		for i, ds := range snaps {
			snap.Docs[i] = store.Document{ID: ds.Ref.ID, Fields: ds.Data()}
		}
		s.push(snap)
	}
}

func (s *subscription) push(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- snap:
	default:
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snap
	}
}
