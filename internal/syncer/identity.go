package syncer

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/opsdash/dirsync/internal/store"
)

// parentheticalSuffix matches annotations like "(Lead)" or "(on leave)"
// that directory admins append to contact names.
var parentheticalSuffix = regexp.MustCompile(`\s*\([^)]*\)`)

// Resolver maps an external contact's name/email to a local user id.
// Built once per run from the full user list; users are indexed in
// ascending id order and the first user to claim a key keeps it.
type Resolver struct {
	byEmail         map[string]int64
	byDirectoryName map[string]int64
	byDisplayName   map[string]int64
}

// newResolver indexes users for resolution. The input must be ordered by
// id so duplicate names tie-break deterministically.
func newResolver(users []*store.User) *Resolver {
	r := &Resolver{
		byEmail:         make(map[string]int64),
		byDirectoryName: make(map[string]int64),
		byDisplayName:   make(map[string]int64),
	}

	claim := func(m map[string]int64, key string, id int64) {
		if key == "" {
			return
		}

		if _, taken := m[key]; !taken {
			m[key] = id
		}
	}

	for _, u := range users {
		claim(r.byEmail, strings.ToLower(strings.TrimSpace(u.Email)), u.ID)
		claim(r.byDirectoryName, normalizeName(u.DirectoryName), u.ID)
		claim(r.byDisplayName, normalizeName(u.DisplayName), u.ID)
	}

	return r
}

// Resolve returns the local user id for an external contact. Email is the
// strongest key and is tried first; free-text names can collide or carry
// annotations, so they only apply when email resolution yields nothing.
// Name matching prefers the directory-linked name over the display name.
// No match is not an error, merely unresolved.
func (r *Resolver) Resolve(name, email string) (int64, bool) {
	if email != "" {
		if id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]; ok {
			return id, true
		}
	}

	normalized := normalizeName(name)
	if normalized == "" {
		return 0, false
	}

	if id, ok := r.byDirectoryName[normalized]; ok {
		return id, true
	}

	if id, ok := r.byDisplayName[normalized]; ok {
		return id, true
	}

	return 0, false
}

// normalizeName canonicalizes a person name for comparison: Unicode NFC,
// lowercase, parenthetical suffixes stripped, whitespace collapsed.
func normalizeName(name string) string {
	s := norm.NFC.String(name)
	s = strings.ToLower(s)
	s = parentheticalSuffix.ReplaceAllString(s, "")

	return strings.Join(strings.Fields(s), " ")
}
