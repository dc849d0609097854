package core

import (
	"strings"
	"time"
)

const (
	RepeatNever   RepeatPolicy = "never"
	RepeatDaily   RepeatPolicy = "daily"
	RepeatWeekly  RepeatPolicy = "weekly"
	RepeatMonthly RepeatPolicy = "monthly"
)

type (
	// RepeatPolicy describes how often a chore recurs.
	RepeatPolicy string

	// MemberRef pairs a member identifier with its resolved display name.
	// Name may be empty until resolution completes (or when it fails);
	// DisplayName degrades to the identifier in that case.
	MemberRef struct {
		ID   string
		Name string
	}

	// Group is the root aggregate. Chores and payments are scoped to
	// exactly one group and referenced through its collections.
	Group struct {
		ID      string
		Code    string
		OwnerID string
		Members []MemberRef
	}

	// Chore is a task assigned to one member. A zero DueDate means the
	// chore has no deadline.
	Chore struct {
		ID          string
		Title       string
		Description string
		DueDate     time.Time
		Repeat      RepeatPolicy
		AssignedTo  string
		SetBy       string
		CreatedAt   time.Time
		Completed   bool
	}

	// Share is one member's portion of a payment, settled independently.
	Share struct {
		Amount float64
		Paid   bool
	}

	// Payment is a shared expense split into per-member shares. The
	// creator's own share may be absent when they exclude themselves.
	Payment struct {
		ID          string
		ItemName    string
		Description string
		Amount      float64
		SetByUID    string
		SetByName   string
		CreatedAt   time.Time
		Shares      map[string]Share
	}
)

// DisplayName returns the resolved name, or the identifier while the name
// is unresolved.
func (m MemberRef) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// MemberIDs returns the ordered member identifiers, matching the stored
// members array.
func (g Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Valid reports whether the policy is one of the supported values.
func (r RepeatPolicy) Valid() bool {
	switch r {
	case RepeatNever, RepeatDaily, RepeatWeekly, RepeatMonthly:
		return true
	}
	return false
}

// Repeats reports whether the chore recurs after completion.
func (r RepeatPolicy) Repeats() bool {
	return r.Valid() && r != RepeatNever
}

func (c Chore) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(c.AssignedTo) == "" {
		return ErrNoAssignee
	}
	if !c.Repeat.Valid() {
		return ErrInvalidRepeat
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.ItemName) == "" {
		return ErrEmptyItemName
	}
	if p.Amount < 0 {
		return ErrNegativeAmount
	}
	if len(p.Shares) == 0 {
		return ErrNoMembers
	}
	for _, s := range p.Shares {
		if s.Amount < 0 {
			return ErrNegativeAmount
		}
	}
	return nil
}
