package sqlite

import (
	"sync"

	"hearth/internal/store"
)

// subscription mirrors the memory backend's delivery semantics: at most one
// pending snapshot, newer replaces undelivered.
type subscription struct {
	mu     sync.Mutex
	ch     chan store.Snapshot
	closed bool
	stop   func()
}

func (s *subscription) Updates() <-chan store.Snapshot { return s.ch }

func (s *subscription) Stop() {
	if s.stop != nil {
		s.stop()
	}
	s.closeCh()
}

func (s *subscription) closeCh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
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
