package balance

import (
	"math"
	"testing"

	"hearth/internal/core"
)

func payment(id, creator string, total float64, shares map[string]core.Share) core.Payment {
	return core.Payment{ID: id, ItemName: id, Amount: total, SetByUID: creator, Shares: shares}
}

func TestComputeEqualSplitScenario(t *testing.T) {
	// Alice pays 30 split equally among Alice, Bob and Carol, excluding
	// herself from the shares: Bob and Carol owe her 15 each.
	shares, err := EqualShares(30, []string{"bob", "carol"})
	if err != nil {
		t.Fatalf("EqualShares: %v", err)
	}
	payments := []core.Payment{payment("p1", "alice", 30, shares)}

	got := Compute("alice", payments)
	if math.Abs(got.OwedToYou["bob"]-15) > 1e-9 {
		t.Errorf("OwedToYou[bob] = %v, want 15", got.OwedToYou["bob"])
	}
	if math.Abs(got.OwedToYou["carol"]-15) > 1e-9 {
		t.Errorf("OwedToYou[carol] = %v, want 15", got.OwedToYou["carol"])
	}
	if len(got.YouOwe) != 0 {
		t.Errorf("YouOwe = %v, want empty", got.YouOwe)
	}

	// Bob settles his share; only Carol's debt remains.
	paid := shares["bob"]
	paid.Paid = true
	payments[0].Shares["bob"] = paid

	got = Compute("alice", payments)
	if got.OwedToYou["bob"] != 0 {
		t.Errorf("after settling, OwedToYou[bob] = %v, want 0", got.OwedToYou["bob"])
	}
	if math.Abs(got.OwedToYou["carol"]-15) > 1e-9 {
		t.Errorf("after settling, OwedToYou[carol] = %v, want 15", got.OwedToYou["carol"])
	}
}

func TestComputeBothDirections(t *testing.T) {
	payments := []core.Payment{
		payment("rent", "alice", 40, map[string]core.Share{"bob": {Amount: 20}, "carol": {Amount: 20}}),
		payment("pizza", "bob", 18, map[string]core.Share{"alice": {Amount: 9}, "carol": {Amount: 9}}),
	}

	got := Compute("alice", payments)
	if math.Abs(got.OwedToYou["bob"]-20) > 1e-9 {
		t.Errorf("OwedToYou[bob] = %v, want 20", got.OwedToYou["bob"])
	}
	if math.Abs(got.YouOwe["bob"]-9) > 1e-9 {
		t.Errorf("YouOwe[bob] = %v, want 9", got.YouOwe["bob"])
	}
	if net := got.Net("bob"); math.Abs(net-11) > 1e-9 {
		t.Errorf("Net(bob) = %v, want 11", net)
	}
	// Positive net: Bob owes Alice. From Bob's side the sign flips.
	bob := Compute("bob", payments)
	if net := bob.Net("alice"); math.Abs(net+11) > 1e-9 {
		t.Errorf("bob Net(alice) = %v, want -11", net)
	}
}

func TestComputeNonNegativeAndAllPaidZeroes(t *testing.T) {
	payments := []core.Payment{
		payment("a", "alice", 30, map[string]core.Share{"bob": {Amount: 15}, "carol": {Amount: 15}}),
		payment("b", "bob", 10, map[string]core.Share{"alice": {Amount: 5}, "carol": {Amount: 5}}),
		payment("c", "carol", 9, map[string]core.Share{"alice": {Amount: 3}, "bob": {Amount: 3}, "carol": {Amount: 3}}),
	}

	s := Compute("alice", payments)
	for id, v := range s.OwedToYou {
		if v < 0 {
			t.Errorf("OwedToYou[%s] = %v, want >= 0", id, v)
		}
	}
	for id, v := range s.YouOwe {
		if v < 0 {
			t.Errorf("YouOwe[%s] = %v, want >= 0", id, v)
		}
	}

	// Mark every share involving alice as paid: both maps drain to zero.
	for _, p := range payments {
		for member, share := range p.Shares {
			if member == "alice" || p.SetByUID == "alice" {
				share.Paid = true
				p.Shares[member] = share
			}
		}
	}
	s = Compute("alice", payments)
	for id, v := range s.OwedToYou {
		if v != 0 {
			t.Errorf("OwedToYou[%s] = %v after settling everything", id, v)
		}
	}
	for id, v := range s.YouOwe {
		if v != 0 {
			t.Errorf("YouOwe[%s] = %v after settling everything", id, v)
		}
	}
	if !s.IsSettled("bob") || !s.IsSettled("carol") {
		t.Error("expected both counterparties settled")
	}
}

func TestComputeStrangerIsSettled(t *testing.T) {
	s := Compute("alice", []core.Payment{
		payment("p", "bob", 10, map[string]core.Share{"carol": {Amount: 10}}),
	})
	if n := s.Net("dave"); n != 0 {
		t.Errorf("Net(dave) = %v, want 0", n)
	}
	if !s.IsSettled("dave") {
		t.Error("member with no shares anywhere must read as settled")
	}
}

func TestPaymentsBetween(t *testing.T) {
	pAB := payment("ab", "alice", 10, map[string]core.Share{"bob": {Amount: 10}})
	pBA := payment("ba", "bob", 8, map[string]core.Share{"alice": {Amount: 8}})
	pPaid := payment("paid", "alice", 6, map[string]core.Share{"bob": {Amount: 6, Paid: true}})
	pOther := payment("other", "carol", 4, map[string]core.Share{"bob": {Amount: 4}})
	payments := []core.Payment{pAB, pBA, pPaid, pOther}

	theyOwe, youOwe := PaymentsBetween("alice", "bob", payments)
	if len(theyOwe) != 1 || theyOwe[0].ID != "ab" {
		t.Errorf("theyOweYou = %v, want [ab]", ids(theyOwe))
	}
	if len(youOwe) != 1 || youOwe[0].ID != "ba" {
		t.Errorf("youOweThem = %v, want [ba]", ids(youOwe))
	}
}

func ids(ps []core.Payment) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
