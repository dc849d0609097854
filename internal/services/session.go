package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hearth/internal/balance"
	"hearth/internal/chores"
	"hearth/internal/core"
	"hearth/internal/store"
)

// GroupSession is one user's live view of a group. It subscribes to the
// group document, the chore list and the payment list; every delivered
// snapshot replaces the corresponding working set wholesale. Readers get
// projections computed from the latest snapshots; a subscription hiccup
// leaves the last-known-good state in place.
type GroupSession struct {
	groupID string
	userID  string

	mu       sync.RWMutex
	group    core.Group
	chores   []core.Chore
	payments []core.Payment

	subs []store.Subscription
	wg   sync.WaitGroup

	stopOnce sync.Once
}

// OpenGroupSession subscribes to the group's collections and starts applying
// snapshots. Close releases the subscriptions.
func OpenGroupSession(ctx context.Context, st store.Store, groupID, userID string) (*GroupSession, error) {
	s := &GroupSession{
		groupID: groupID,
		userID:  userID,
	}

	groupSub, err := st.Subscribe(ctx, store.GroupsCollection)
	if err != nil {
		return nil, fmt.Errorf("subscribe to groups: %w", err)
	}
	choreSub, err := st.Subscribe(ctx, store.ChoresCollection(groupID))
	if err != nil {
		groupSub.Stop()
		return nil, fmt.Errorf("subscribe to chores: %w", err)
	}
	paymentSub, err := st.Subscribe(ctx, store.PaymentsCollection(groupID))
	if err != nil {
		groupSub.Stop()
		choreSub.Stop()
		return nil, fmt.Errorf("subscribe to payments: %w", err)
	}
	s.subs = []store.Subscription{groupSub, choreSub, paymentSub}

	s.consume(groupSub, s.applyGroups)
	s.consume(choreSub, s.applyChores)
	s.consume(paymentSub, s.applyPayments)
	return s, nil
}

func (s *GroupSession) consume(sub store.Subscription, apply func(store.Snapshot)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for snap := range sub.Updates() {
			apply(snap)
		}
	}()
}

func (s *GroupSession) applyGroups(snap store.Snapshot) {
	// The groups collection carries every group; only this session's
	// document matters. If it is absent the previous state stands.
	for _, doc := range snap.Docs {
		if doc.ID == s.groupID {
			group := store.DecodeGroup(doc.ID, doc.Fields)
			s.mu.Lock()
			s.group = group
			s.mu.Unlock()
			return
		}
	}
}

func (s *GroupSession) applyChores(snap store.Snapshot) {
	list := make([]core.Chore, len(snap.Docs))
	for i, doc := range snap.Docs {
		list[i] = store.DecodeChore(doc.ID, doc.Fields)
	}
	s.mu.Lock()
	s.chores = list
	s.mu.Unlock()
}

func (s *GroupSession) applyPayments(snap store.Snapshot) {
	list := make([]core.Payment, len(snap.Docs))
	for i, doc := range snap.Docs {
		list[i] = store.DecodePayment(doc.ID, doc.Fields)
	}
	s.mu.Lock()
	s.payments = list
	s.mu.Unlock()
}

// Group returns the latest group document state.
func (s *GroupSession) Group() core.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.group
}

// Members returns the current member list.
func (s *GroupSession) Members() []core.MemberRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]core.MemberRef, len(s.group.Members))
	copy(members, s.group.Members)
	return members
}

// Chores returns the chore list filtered to the requested view, evaluated
// now.
func (s *GroupSession) Chores(f chores.Filter) []core.Chore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return chores.Apply(f, s.chores, time.Now())
}

// Payments returns the current payment list.
func (s *GroupSession) Payments() []core.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]core.Payment, len(s.payments))
	copy(list, s.payments)
	return list
}

// Balances computes the session user's balance summary from the latest
// payment snapshot.
func (s *GroupSession) Balances() balance.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return balance.Compute(s.userID, s.payments)
}

// Net returns the session user's net position against one counterparty.
func (s *GroupSession) Net(counterparty string) float64 {
	return s.Balances().Net(counterparty)
}

// PaymentsBetween partitions the outstanding payments between the session
// user and one counterparty.
func (s *GroupSession) PaymentsBetween(counterparty string) (theyOweYou, youOweThem []core.Payment) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return balance.PaymentsBetween(s.userID, counterparty, s.payments)
}

// Close stops all subscriptions and waits for the snapshot consumers to
// drain. Safe to call more than once.
func (s *GroupSession) Close() {
	s.stopOnce.Do(func() {
		for _, sub := range s.subs {
			sub.Stop()
		}
		s.wg.Wait()
	})
}
