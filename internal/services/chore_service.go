package services

import (
	"context"
	"fmt"

	"hearth/internal/core"
	"hearth/internal/log"
	"hearth/internal/store"
)

// ChoreService creates chores and manages their completion state.
type ChoreService struct {
	store  store.Store
	logger *log.Logger
}

func NewChoreService(st store.Store) *ChoreService {
	return &ChoreService{
		store:  st,
		logger: log.Default(log.ComponentChore),
	}
}

// Create validates and persists a new chore. An unset repeat policy defaults
// to never; new chores start incomplete.
func (s *ChoreService) Create(ctx context.Context, groupID string, chore core.Chore) (core.Chore, error) {
	if chore.Repeat == "" {
		chore.Repeat = core.RepeatNever
	}
	chore.Completed = false
	if err := chore.Validate(); err != nil {
		return core.Chore{}, err
	}

	id, err := s.store.Insert(ctx, store.ChoresCollection(groupID), store.EncodeChore(chore))
	if err != nil {
		return core.Chore{}, fmt.Errorf("create chore: %w", err)
	}
	chore.ID = id

	s.logger.InfoContext(ctx, "Created chore",
		log.FieldGroupID, groupID,
		log.FieldChoreID, id,
		log.FieldChoreTitle, chore.Title)
	return chore, nil
}

// ToggleCompletion writes the given completion flag without reading first.
// The caller flips the flag it last saw; concurrent toggles resolve to the
// last write.
func (s *ChoreService) ToggleCompletion(ctx context.Context, groupID, choreID string, completed bool) error {
	err := s.store.Update(ctx, store.ChoresCollection(groupID), choreID, map[string]any{
		"completed": completed,
	})
	if err != nil {
		return fmt.Errorf("toggle chore completion: %w", err)
	}
	return nil
}

// MarkComplete sets a chore to done, reading first so an already-completed
// chore is left untouched.
func (s *ChoreService) MarkComplete(ctx context.Context, groupID, choreID string) error {
	fields, err := s.store.Get(ctx, store.ChoresCollection(groupID), choreID)
	if err != nil {
		return fmt.Errorf("read chore: %w", err)
	}
	if store.DecodeChore(choreID, fields).Completed {
		return nil
	}
	return s.ToggleCompletion(ctx, groupID, choreID, true)
}
