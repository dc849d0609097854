package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"hearth/internal/core"
	"hearth/internal/store"
	"hearth/internal/store/memory"
)

func TestCreateGroup(t *testing.T) {
	st := memory.New()
	svc := NewGroupService(st, nil, ResolverConfig{})
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if group.ID == "" {
		t.Error("group has no ID")
	}
	if group.OwnerID != "alice" {
		t.Errorf("OwnerID = %q", group.OwnerID)
	}
	if len(group.Members) != 1 || group.Members[0].ID != "alice" {
		t.Errorf("Members = %v, want just the owner", group.Members)
	}
	if len(group.Code) != joinCodeLength {
		t.Fatalf("code %q has length %d, want %d", group.Code, len(group.Code), joinCodeLength)
	}
	for _, c := range group.Code {
		if !strings.ContainsRune(joinCodeAlphabet, c) {
			t.Errorf("code %q contains %q, outside the alphabet", group.Code, c)
		}
	}

	docs, err := st.Query(ctx, store.GroupsCollection, store.Query{
		Field: "code", Op: store.OpEqual, Value: group.Code,
	})
	if err != nil || len(docs) != 1 {
		t.Fatalf("stored group not found by code: docs=%v err=%v", docs, err)
	}
}

func TestCreateGroupRequiresOwner(t *testing.T) {
	svc := NewGroupService(memory.New(), nil, ResolverConfig{})
	if _, err := svc.Create(context.Background(), "  "); !errors.Is(err, core.ErrNoOwner) {
		t.Errorf("Create(blank owner) = %v, want ErrNoOwner", err)
	}
}

func TestJoinGroup(t *testing.T) {
	st := memory.New()
	svc := NewGroupService(st, nil, ResolverConfig{})
	ctx := context.Background()

	group, err := svc.Create(ctx, "alice")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Codes are matched case-insensitively and whitespace-tolerantly.
	joined, err := svc.Join(ctx, "  "+strings.ToLower(group.Code)+" ", "bob")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if got := joined.MemberIDs(); len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("members after join = %v", got)
	}

	// Joining again must not duplicate the member.
	if _, err := svc.Join(ctx, group.Code, "bob"); err != nil {
		t.Fatalf("second Join: %v", err)
	}
	fields, err := st.Get(ctx, store.GroupsCollection, group.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	stored := store.DecodeGroup(group.ID, fields)
	if got := stored.MemberIDs(); len(got) != 2 {
		t.Errorf("stored members = %v, want no duplicates", got)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	svc := NewGroupService(memory.New(), nil, ResolverConfig{})
	if _, err := svc.Join(context.Background(), "NOSUCH", "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Join(unknown code) = %v, want ErrNotFound", err)
	}
}

func TestJoinEmptyCode(t *testing.T) {
	svc := NewGroupService(memory.New(), nil, ResolverConfig{})
	if _, err := svc.Join(context.Background(), "   ", "bob"); !errors.Is(err, core.ErrEmptyJoinCode) {
		t.Errorf("Join(blank code) = %v, want ErrEmptyJoinCode", err)
	}
}

// countingLookup resolves from a fixed map, counting calls; unknown IDs fail.
type countingLookup struct {
	mu    sync.Mutex
	names map[string]string
	calls int
}

func (l *countingLookup) DisplayName(_ context.Context, memberID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	name, ok := l.names[memberID]
	if !ok {
		return "", errors.New("no such user")
	}
	return name, nil
}

func TestResolveMembers(t *testing.T) {
	lookup := &countingLookup{names: map[string]string{
		"u1": "Alice",
		"u3": "Carol",
	}}
	svc := NewGroupService(memory.New(), lookup, ResolverConfig{LookupLimit: 2})
	ctx := context.Background()

	refs := svc.ResolveMembers(ctx, []string{"u1", "u2", "u3"})
	if len(refs) != 3 {
		t.Fatalf("got %d refs", len(refs))
	}
	if refs[0].ID != "u1" || refs[1].ID != "u2" || refs[2].ID != "u3" {
		t.Errorf("input order not preserved: %v", refs)
	}
	if refs[0].DisplayName() != "Alice" || refs[2].DisplayName() != "Carol" {
		t.Errorf("resolved names wrong: %v", refs)
	}
	// The failed lookup degrades to the identifier.
	if refs[1].Name != "" || refs[1].DisplayName() != "u2" {
		t.Errorf("failed lookup should degrade to ID, got %+v", refs[1])
	}

	// Successful lookups are cached; the failed one is retried.
	before := lookup.calls
	svc.ResolveMembers(ctx, []string{"u1", "u2", "u3"})
	if got := lookup.calls - before; got != 1 {
		t.Errorf("second resolve made %d lookups, want 1 (only the uncached failure)", got)
	}
}

func TestResolveMembersWithoutLookup(t *testing.T) {
	svc := NewGroupService(memory.New(), nil, ResolverConfig{})
	refs := svc.ResolveMembers(context.Background(), []string{"u1", "u2"})
	if len(refs) != 2 || refs[0].DisplayName() != "u1" {
		t.Errorf("refs = %v, want bare IDs", refs)
	}
}

func TestStoreNameLookup(t *testing.T) {
	st := memory.New()
	st.Seed(store.UsersCollection, "u1", map[string]any{"name": "Alice"})
	lookup := NewStoreNameLookup(st)
	ctx := context.Background()

	name, err := lookup.DisplayName(ctx, "u1")
	if err != nil || name != "Alice" {
		t.Errorf("DisplayName(u1) = %q, %v", name, err)
	}
	if _, err := lookup.DisplayName(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DisplayName(missing) = %v, want ErrNotFound", err)
	}
}
