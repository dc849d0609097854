package store

import "strings"

// Field-map helpers shared by the memory and sqlite backends. Firestore
// implements the same semantics natively (Update paths and ArrayUnion).

// SetPath writes value at a dotted path inside fields, creating intermediate
// maps as needed. "shares.u1.paid" updates one nested key without touching
// its siblings.
func SetPath(fields map[string]any, path string, value any) {
	for {
		dot := strings.IndexByte(path, '.')
		if dot < 0 {
			fields[path] = value
			return
		}
		head, rest := path[:dot], path[dot+1:]
		child, ok := fields[head].(map[string]any)
		if !ok {
			child = map[string]any{}
			fields[head] = child
		}
		fields, path = child, rest
	}
}

// Merge unions src into dst: slice values contribute their missing elements
// to the stored slice (add-to-set), everything else overwrites.
func Merge(dst, src map[string]any) {
	for key, value := range src {
		add := asStrings(value)
		if add == nil {
			dst[key] = value
			continue
		}
		existing := asStrings(dst[key])
		seen := make(map[string]bool, len(existing))
		for _, s := range existing {
			seen[s] = true
		}
		for _, s := range add {
			if !seen[s] {
				existing = append(existing, s)
				seen[s] = true
			}
		}
		dst[key] = existing
	}
}

// Matches reports whether a document's fields satisfy the query.
func (q Query) Matches(fields map[string]any) bool {
	switch q.Op {
	case OpEqual:
		return fields[q.Field] == q.Value
	case OpArrayContains:
		want, ok := q.Value.(string)
		if !ok {
			return false
		}
		for _, s := range asStrings(fields[q.Field]) {
			if s == want {
				return true
			}
		}
	}
	return false
}
