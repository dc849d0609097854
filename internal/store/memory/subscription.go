package memory

import (
	"sync"

	"hearth/internal/store"
)

// subscription delivers at most one pending snapshot: if the consumer lags,
// a newer snapshot replaces the undelivered one. Consumers only ever need
// the latest state, never the intermediate history.
type subscription struct {
	mu     sync.Mutex
	ch     chan store.Snapshot
	closed bool
	stop   func()
}

func (s *subscription) Updates() <-chan store.Snapshot { return s.ch }

func (s *subscription) Stop() {
	s.stop()
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
