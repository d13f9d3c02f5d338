package syncer

import (
	"github.com/opsdash/dirsync/internal/store"
)

// resolveAssignments computes the full assignment set one external record
// implies. Relation-referenced contacts resolve first; the legacy name
// strings apply per role only when relation-based resolution produced
// nothing for that role, so a stale name field can never shadow or
// double-count an authoritative relation match. The result is deduplicated
// on (client, user, role).
func resolveAssignments(tr *transformed, resolver *Resolver, clientID int64) []store.Assignment {
	var assignments []store.Assignment

	seen := make(map[store.Assignment]struct{})

	add := func(userID int64, role store.Role) {
		a := store.Assignment{ClientID: clientID, UserID: userID, Role: role}
		if _, dup := seen[a]; dup {
			return
		}

		seen[a] = struct{}{}
		assignments = append(assignments, a)
	}

	for _, rp := range roleProperties {
		resolved := 0

		for _, c := range tr.roleContacts[rp.role] {
			if userID, ok := resolver.Resolve(c.Name, c.Email); ok {
				add(userID, rp.role)
				resolved++
			}
		}

		if resolved > 0 {
			continue
		}

		for _, name := range tr.roleNames[rp.role] {
			if userID, ok := resolver.Resolve(name, ""); ok {
				add(userID, rp.role)
			}
		}
	}

	return assignments
}
