// Package services is the operation layer: it validates input, encodes
// domain values through the wire codec and talks to the document store. The
// live view of a group (snapshots, balances, filtered chores) is the
// GroupSession in this package.
package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"hearth/internal/cache"
	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/store"
)

const (
	joinCodeLength = 6
	// No 0/O or 1/I: codes get read aloud and typed on phones.
	joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	joinCodeAttempts = 5
)

// ResolverConfig tunes member display-name resolution.
type ResolverConfig struct {
	CacheSize   int
	CacheTTL    time.Duration
	LookupLimit int
}

// DefaultResolverConfig returns the resolution defaults.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		CacheSize:   256,
		CacheTTL:    10 * time.Minute,
		LookupLimit: 8,
	}
}

// GroupService creates and joins groups and resolves member display names.
type GroupService struct {
	store  store.Store
	names  store.NameLookup
	cache  *cache.LRUCache[string]
	limit  int
	logger *log.Logger
}

func NewGroupService(st store.Store, names store.NameLookup, cfg ResolverConfig) *GroupService {
	defaults := DefaultResolverConfig()
	if cfg.CacheSize < 1 {
		cfg.CacheSize = defaults.CacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}
	if cfg.LookupLimit < 1 {
		cfg.LookupLimit = defaults.LookupLimit
	}
	return &GroupService{
		store:  st,
		names:  names,
		cache:  cache.NewLRUCache[string](cfg.CacheSize, cfg.CacheTTL),
		limit:  cfg.LookupLimit,
		logger: log.Default(log.ComponentGroup),
	}
}

// Create starts a new group owned by ownerID, with a freshly generated join
// code. The owner is the first member.
func (s *GroupService) Create(ctx context.Context, ownerID string) (core.Group, error) {
	if strings.TrimSpace(ownerID) == "" {
		return core.Group{}, core.ErrNoOwner
	}

	var code string
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		candidate, err := newJoinCode()
		if err != nil {
			return core.Group{}, fmt.Errorf("generate join code: %w", err)
		}
		taken, err := s.codeTaken(ctx, candidate)
		if err != nil {
			return core.Group{}, err
		}
		if !taken {
			code = candidate
			break
		}
	}
	if code == "" {
		return core.Group{}, fmt.Errorf("could not generate a unique join code after %d attempts", joinCodeAttempts)
	}

	group := core.Group{
		Code:    code,
		OwnerID: ownerID,
		Members: []core.MemberRef{{ID: ownerID}},
	}
	id, err := s.store.Insert(ctx, store.GroupsCollection, store.EncodeGroup(group))
	if err != nil {
		return core.Group{}, fmt.Errorf("create group: %w", err)
	}
	group.ID = id

	s.logger.InfoContext(ctx, "Created group",
		log.FieldGroupID, id,
		log.FieldGroupCode, code,
		log.FieldUserID, ownerID)
	return group, nil
}

// Join adds userID to the group identified by its join code. An unknown code
// returns store.ErrNotFound; a user who is already a member joins without a
// write. The member write is an array union, so two devices joining at once
// both land in the member list.
func (s *GroupService) Join(ctx context.Context, code, userID string) (core.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return core.Group{}, core.ErrEmptyJoinCode
	}

	docs, err := s.store.Query(ctx, store.GroupsCollection, store.Query{
		Field: "code",
		Op:    store.OpEqual,
		Value: code,
	})
	if err != nil {
		return core.Group{}, fmt.Errorf("look up join code: %w", err)
	}
	if len(docs) == 0 {
		return core.Group{}, store.ErrNotFound
	}

	group := store.DecodeGroup(docs[0].ID, docs[0].Fields)
	for _, member := range group.Members {
		if member.ID == userID {
			return group, nil
		}
	}

	err = s.store.MergeWrite(ctx, store.GroupsCollection, group.ID, map[string]any{
		"members": []string{userID},
	})
	if err != nil {
		return core.Group{}, fmt.Errorf("join group: %w", err)
	}
	group.Members = append(group.Members, core.MemberRef{ID: userID})

	s.logger.InfoContext(ctx, "Member joined group",
		log.FieldGroupID, group.ID,
		log.FieldUserID, userID)
	return group, nil
}

// ResolveMembers looks up display names for the given member IDs, bounded
// concurrently, and returns refs in input order. A failed or missing lookup
// leaves Name empty, so DisplayName degrades to the ID.
func (s *GroupService) ResolveMembers(ctx context.Context, memberIDs []string) []core.MemberRef {
	refs := make([]core.MemberRef, len(memberIDs))
	for i, id := range memberIDs {
		refs[i] = core.MemberRef{ID: id}
	}
	if s.names == nil {
		return refs
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for i, id := range memberIDs {
		if name, ok := s.cache.Get(id); ok {
			refs[i].Name = name
			continue
		}
		g.Go(func() error {
			name, err := s.names.DisplayName(ctx, id)
			if err != nil {
				s.logger.DebugContext(ctx, "Name lookup failed, showing ID",
					log.FieldMemberID, id,
					log.FieldError, err)
				return nil
			}
			refs[i].Name = name
			s.cache.Set(id, name)
			return nil
		})
	}
	g.Wait()
	return refs
}

func (s *GroupService) codeTaken(ctx context.Context, code string) (bool, error) {
	docs, err := s.store.Query(ctx, store.GroupsCollection, store.Query{
		Field: "code",
		Op:    store.OpEqual,
		Value: code,
	})
	if err != nil {
		return false, fmt.Errorf("check join code: %w", err)
	}
	return len(docs) > 0, nil
}

func newJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

// StoreNameLookup resolves display names from the users collection.
type StoreNameLookup struct {
	store store.Store
}

func NewStoreNameLookup(st store.Store) *StoreNameLookup {
	return &StoreNameLookup{store: st}
}

func (l *StoreNameLookup) DisplayName(ctx context.Context, memberID string) (string, error) {
	fields, err := l.store.Get(ctx, store.UsersCollection, memberID)
	if err != nil {
		return "", err
	}
	name, _ := fields["name"].(string)
	if name == "" {
		return "", store.ErrNotFound
	}
	return name, nil
}
