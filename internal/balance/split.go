package balance

import (
	"fmt"
	"math"

	"hearth/internal/core"
)

// Tolerance is the absolute slack allowed between a payment total and the
// sum of manually entered shares. The comparison is inclusive: a mismatch
// of exactly 0.01 is accepted.
const Tolerance = 0.01

// EqualShares divides total evenly across the selected members.
//
// Division is plain floating point: a non-divisible total leaves its
// remainder spread as fractional noise rather than being reallocated to one
// member, matching the stored record semantics.
func EqualShares(total float64, memberIDs []string) (map[string]core.Share, error) {
	if len(memberIDs) == 0 {
		return nil, core.ErrNoMembers
	}
	if total < 0 {
		return nil, core.ErrNegativeAmount
	}
	per := total / float64(len(memberIDs))
	shares := make(map[string]core.Share, len(memberIDs))
	for _, id := range memberIDs {
		shares[id] = core.Share{Amount: per}
	}
	return shares, nil
}

// CustomShares builds shares from caller-supplied per-member amounts. The
// amounts must sum to total within Tolerance; otherwise the returned
// ValidationError names the discrepancy and nothing is persisted.
func CustomShares(total float64, amounts map[string]float64) (map[string]core.Share, error) {
	if len(amounts) == 0 {
		return nil, core.ErrNoMembers
	}
	if total < 0 {
		return nil, core.ErrNegativeAmount
	}
	var sum float64
	for _, amount := range amounts {
		if amount < 0 {
			return nil, core.ErrNegativeAmount
		}
		sum += amount
	}
	if diff := math.Abs(sum - total); diff > Tolerance {
		return nil, core.ValidationError(fmt.Sprintf(
			"shares sum to %.2f but the total is %.2f (off by %.2f)", sum, total, diff))
	}
	shares := make(map[string]core.Share, len(amounts))
	for id, amount := range amounts {
		shares[id] = core.Share{Amount: amount}
	}
	return shares, nil
}
