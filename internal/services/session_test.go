package services

import (
	"context"
	"math"
	"testing"
	"time"

	"hearth/internal/chores"
	"hearth/internal/core"
	"hearth/internal/store/memory"
)

func seedGroup(st *memory.Store, id string, members ...string) {
	st.Seed("groups", id, map[string]any{
		"code":    "ABC234",
		"ownerId": members[0],
		"members": members,
	})
}

// waitFor polls cond until it holds or the deadline passes. Snapshots travel
// through channels and a consumer goroutine, so state changes are eventually
// visible rather than immediate.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSessionSeesMembers(t *testing.T) {
	st := memory.New()
	seedGroup(st, "g1", "alice", "bob")

	session, err := OpenGroupSession(context.Background(), st, "g1", "alice")
	if err != nil {
		t.Fatalf("OpenGroupSession: %v", err)
	}
	defer session.Close()

	waitFor(t, "initial group snapshot", func() bool {
		return len(session.Members()) == 2
	})
	if got := session.Group(); got.Code != "ABC234" || got.OwnerID != "alice" {
		t.Errorf("group = %+v", got)
	}
}

func TestSessionBalancesFollowPayments(t *testing.T) {
	st := memory.New()
	seedGroup(st, "g1", "alice", "bob", "carol")
	ctx := context.Background()

	session, err := OpenGroupSession(ctx, st, "g1", "alice")
	if err != nil {
		t.Fatalf("OpenGroupSession: %v", err)
	}
	defer session.Close()

	payments := NewPaymentService(st)
	payment, err := payments.Create(ctx, "g1", PaymentInput{
		ItemName: "groceries",
		Amount:   "30",
		SetByUID: "alice",
		Members:  []string{"alice", "bob", "carol"},
	})
	if err != nil {
		t.Fatalf("Create payment: %v", err)
	}

	waitFor(t, "payment snapshot", func() bool {
		return len(session.Payments()) == 1
	})

	summary := session.Balances()
	if math.Abs(summary.OwedToYou["bob"]-10) > 1e-9 {
		t.Errorf("OwedToYou[bob] = %v, want 10", summary.OwedToYou["bob"])
	}
	if math.Abs(session.Net("carol")-10) > 1e-9 {
		t.Errorf("Net(carol) = %v, want 10", session.Net("carol"))
	}

	theyOweYou, youOweThem := session.PaymentsBetween("bob")
	if len(theyOweYou) != 1 || len(youOweThem) != 0 {
		t.Errorf("PaymentsBetween = %d/%d, want 1/0", len(theyOweYou), len(youOweThem))
	}

	// Settling bob's share flows back into the projections.
	if err := payments.ToggleSharePaid(ctx, "g1", payment.ID, "bob", true); err != nil {
		t.Fatalf("ToggleSharePaid: %v", err)
	}
	waitFor(t, "settled balance", func() bool {
		return session.Balances().IsSettled("bob")
	})
}

func TestSessionChoreFiltersFollowWrites(t *testing.T) {
	st := memory.New()
	seedGroup(st, "g1", "alice", "bob")
	ctx := context.Background()

	session, err := OpenGroupSession(ctx, st, "g1", "alice")
	if err != nil {
		t.Fatalf("OpenGroupSession: %v", err)
	}
	defer session.Close()

	choreSvc := NewChoreService(st)
	chore, err := choreSvc.Create(ctx, "g1", core.Chore{
		Title:      "dishes",
		DueDate:    time.Now().Add(-24 * time.Hour),
		AssignedTo: "bob",
		SetBy:      "alice",
	})
	if err != nil {
		t.Fatalf("Create chore: %v", err)
	}

	waitFor(t, "past-deadline chore", func() bool {
		return len(session.Chores(chores.FilterPastDeadline)) == 1
	})
	if got := session.Chores(chores.FilterCompleted); len(got) != 0 {
		t.Errorf("completed filter = %v, want empty", got)
	}

	if err := choreSvc.MarkComplete(ctx, "g1", chore.ID); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	waitFor(t, "completed chore", func() bool {
		return len(session.Chores(chores.FilterCompleted)) == 1 &&
			len(session.Chores(chores.FilterPastDeadline)) == 0
	})
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	st := memory.New()
	seedGroup(st, "g1", "alice")

	session, err := OpenGroupSession(context.Background(), st, "g1", "alice")
	if err != nil {
		t.Fatalf("OpenGroupSession: %v", err)
	}
	session.Close()
	session.Close()
}
