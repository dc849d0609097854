package services

import (
	"context"
	"fmt"
	"time"

	"hearth/internal/chores"
	"hearth/internal/log"
	"hearth/internal/store"
)

// ChoreRoller resets completed repeating chores: completion goes back to
// pending and the due date advances to the next occurrence strictly after
// now. Chores that do not repeat, or are still pending, are left alone.
type ChoreRoller struct {
	store  store.Store
	logger *log.Logger
}

func NewChoreRoller(st store.Store) *ChoreRoller {
	return &ChoreRoller{
		store:  st,
		logger: log.Default(log.ComponentRoller),
	}
}

// Roll processes every group and returns how many chores were rolled over.
// Per-chore failures are logged and skipped so one bad document cannot stall
// the rest of the sweep.
func (r *ChoreRoller) Roll(ctx context.Context, now time.Time) (int, error) {
	groups, err := listAll(ctx, r.store, store.GroupsCollection)
	if err != nil {
		return 0, fmt.Errorf("list groups: %w", err)
	}

	rolled := 0
	for _, group := range groups {
		n, err := r.RollGroup(ctx, group.ID, now)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to roll group chores",
				log.FieldGroupID, group.ID,
				log.FieldError, err)
			continue
		}
		rolled += n
	}

	r.logger.InfoContext(ctx, "Chore rollover complete",
		"groups", len(groups),
		"rolled", rolled)
	return rolled, nil
}

// RollGroup rolls the completed repeating chores of one group.
func (r *ChoreRoller) RollGroup(ctx context.Context, groupID string, now time.Time) (int, error) {
	collection := store.ChoresCollection(groupID)
	docs, err := listAll(ctx, r.store, collection)
	if err != nil {
		return 0, fmt.Errorf("list chores: %w", err)
	}

	rolled := 0
	for _, doc := range docs {
		chore := store.DecodeChore(doc.ID, doc.Fields)
		if !chore.Completed || !chore.Repeat.Repeats() {
			continue
		}

		fields := map[string]any{"completed": false}
		if !chore.DueDate.IsZero() {
			next, ok := chores.NextOccurrence(chore.Repeat, chore.DueDate, now)
			if ok {
				fields["dueDate"] = next
			}
		}

		if err := r.store.Update(ctx, collection, chore.ID, fields); err != nil {
			r.logger.ErrorContext(ctx, "Failed to roll chore",
				log.FieldGroupID, groupID,
				log.FieldChoreID, chore.ID,
				log.FieldError, err)
			continue
		}
		rolled++
		r.logger.InfoContext(ctx, "Rolled repeating chore",
			log.FieldGroupID, groupID,
			log.FieldChoreID, chore.ID,
			log.FieldChoreTitle, chore.Title,
			"repeat", string(chore.Repeat))
	}
	return rolled, nil
}

// listAll reads a collection's current contents by taking the first snapshot
// of a short-lived subscription. Subscriptions start with the current state
// on every backend, so this needs no extra contract surface.
func listAll(ctx context.Context, st store.Store, collection string) ([]store.Document, error) {
	sub, err := st.Subscribe(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer sub.Stop()

	select {
	case snap, ok := <-sub.Updates():
		if !ok {
			return nil, fmt.Errorf("subscription to %s closed before first snapshot", collection)
		}
		return snap.Docs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
