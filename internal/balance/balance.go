// Package balance computes settlement projections over a group's payments.
//
// All functions are pure: they read the latest payment snapshot and produce
// aggregates without mutating anything. Callers re-run them after every
// snapshot change or share toggle.
package balance

import (
	"math"

	"hearth/internal/core"
)

// Settled is the threshold below which a net balance counts as zero,
// absorbing float division noise from equal splits.
const Settled = 0.005

// Summary aggregates outstanding amounts between one user and every
// counterparty in a group. Only unpaid shares contribute; a share marked
// paid drops out of both directions immediately.
type Summary struct {
	// OwedToYou maps member ID to the unpaid total that member owes the
	// user across payments the user created.
	OwedToYou map[string]float64

	// YouOwe maps creator ID to the unpaid total the user owes that
	// creator across payments they created.
	YouOwe map[string]float64
}

// Compute builds the settlement summary for userID over the given payments.
// Members holding no unpaid shares in either direction simply have no entry;
// Net treats missing entries as zero.
func Compute(userID string, payments []core.Payment) Summary {
	s := Summary{
		OwedToYou: make(map[string]float64),
		YouOwe:    make(map[string]float64),
	}
	for _, p := range payments {
		if p.SetByUID == userID {
			for member, share := range p.Shares {
				if member == userID || share.Paid {
					continue
				}
				s.OwedToYou[member] += share.Amount
			}
			continue
		}
		if share, ok := p.Shares[userID]; ok && !share.Paid {
			s.YouOwe[p.SetByUID] += share.Amount
		}
	}
	return s
}

// Net returns the signed balance against one counterparty: positive means
// the counterparty owes the user, negative means the user owes them.
func (s Summary) Net(counterparty string) float64 {
	return s.OwedToYou[counterparty] - s.YouOwe[counterparty]
}

// IsSettled reports whether the pair's net balance is zero within the
// settlement threshold.
func (s Summary) IsSettled(counterparty string) bool {
	return math.Abs(s.Net(counterparty)) < Settled
}

// PaymentsBetween partitions the payments carrying an outstanding obligation
// directly between userID and counterparty: theyOweYou holds payments the
// user created where the counterparty's share is unpaid, youOweThem the
// reverse. Paid-off and unrelated payments appear in neither slice.
func PaymentsBetween(userID, counterparty string, payments []core.Payment) (theyOweYou, youOweThem []core.Payment) {
	for _, p := range payments {
		switch p.SetByUID {
		case userID:
			if share, ok := p.Shares[counterparty]; ok && !share.Paid {
				theyOweYou = append(theyOweYou, p)
			}
		case counterparty:
			if share, ok := p.Shares[userID]; ok && !share.Paid {
				youOweThem = append(youOweThem, p)
			}
		}
	}
	return theyOweYou, youOweThem
}
