package store

import (
	"time"

	"hearth/internal/core"
)

// Collection paths. Chores and payments are scoped under their group;
// the users collection backs display-name lookups.
const (
	GroupsCollection = "groups"
	UsersCollection  = "users"
)

func ChoresCollection(groupID string) string   { return GroupsCollection + "/" + groupID + "/chores" }
func PaymentsCollection(groupID string) string { return GroupsCollection + "/" + groupID + "/payments" }

// The field names below are the wire contract shared with previously stored
// data; they must not be renamed. createdAt is always assigned by the store
// at write time and is therefore absent from the Encode outputs.

func EncodeGroup(g core.Group) map[string]any {
	return map[string]any{
		"code":    g.Code,
		"ownerId": g.OwnerID,
		"members": g.MemberIDs(),
	}
}

func DecodeGroup(id string, fields map[string]any) core.Group {
	g := core.Group{
		ID:      id,
		Code:    asString(fields["code"]),
		OwnerID: asString(fields["ownerId"]),
	}
	for _, memberID := range asStrings(fields["members"]) {
		g.Members = append(g.Members, core.MemberRef{ID: memberID})
	}
	return g
}

func EncodeChore(c core.Chore) map[string]any {
	fields := map[string]any{
		"title":       c.Title,
		"description": c.Description,
		"repeat":      string(c.Repeat),
		"assignedTo":  c.AssignedTo,
		"setBy":       c.SetBy,
		"completed":   c.Completed,
	}
	if !c.DueDate.IsZero() {
		fields["dueDate"] = c.DueDate
	}
	return fields
}

func DecodeChore(id string, fields map[string]any) core.Chore {
	return core.Chore{
		ID:          id,
		Title:       asString(fields["title"]),
		Description: asString(fields["description"]),
		DueDate:     asTime(fields["dueDate"]),
		Repeat:      core.RepeatPolicy(asString(fields["repeat"])),
		AssignedTo:  asString(fields["assignedTo"]),
		SetBy:       asString(fields["setBy"]),
		CreatedAt:   asTime(fields["createdAt"]),
		Completed:   asBool(fields["completed"]),
	}
}

func EncodePayment(p core.Payment) map[string]any {
	shares := make(map[string]any, len(p.Shares))
	for memberID, share := range p.Shares {
		shares[memberID] = map[string]any{
			"amount": share.Amount,
			"paid":   share.Paid,
		}
	}
	return map[string]any{
		"itemName":    p.ItemName,
		"description": p.Description,
		"amount":      p.Amount,
		"setByUid":    p.SetByUID,
		"setByName":   p.SetByName,
		"shares":      shares,
	}
}

func DecodePayment(id string, fields map[string]any) core.Payment {
	p := core.Payment{
		ID:          id,
		ItemName:    asString(fields["itemName"]),
		Description: asString(fields["description"]),
		Amount:      asFloat(fields["amount"]),
		SetByUID:    asString(fields["setByUid"]),
		SetByName:   asString(fields["setByName"]),
		CreatedAt:   asTime(fields["createdAt"]),
		Shares:      map[string]core.Share{},
	}
	if shares, ok := fields["shares"].(map[string]any); ok {
		for memberID, raw := range shares {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			p.Shares[memberID] = core.Share{
				Amount: asFloat(entry["amount"]),
				Paid:   asBool(entry["paid"]),
			}
		}
	}
	return p
}

// Decoding is tolerant of missing or oddly typed fields: backends differ in
// how they round-trip numbers and timestamps (Firestore returns int64 for
// whole numbers, the sqlite backend JSON-encodes times as RFC 3339 strings).

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func asStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
