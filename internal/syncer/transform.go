package syncer

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsdash/dirsync/internal/directory"
	"github.com/opsdash/dirsync/internal/store"
)

// Directory property names for the clients collection. The remote schema
// is hand-maintained; anything not listed here is ignored.
const (
	propName        = "Name"
	propStatus      = "Status"
	propPriority    = "Priority"
	propCadence     = "Review Cadence"
	propWebsite     = "Website"
	propFrameworks  = "Compliance Frameworks"
	propOnboardedAt = "Onboarded"
)

// roleProperty maps one assignment role to its relation property and the
// legacy free-text name property that predates the relation.
type roleProperty struct {
	role     store.Role
	relation string
	nameText string
}

// roleProperties lists every role field in the clients collection, in
// legacy pointer-field order (SE, primary, secondary, compliance first).
var roleProperties = []roleProperty{
	{store.RoleSE, "SE", "SE Name"},
	{store.RolePrimary, "Primary Consultant", "Primary Name"},
	{store.RoleSecondary, "Secondary Consultants", "Secondary Names"},
	{store.RoleCompliance, "Compliance Engineer", "Compliance Name"},
	{store.RoleManager, "IT Manager", "Manager Name"},
	{store.RoleInfraOwner, "Infra Check Owner", "Infra Owner Name"},
}

// Label-to-code tables. Unrecognized labels map to a default, never an
// error; the directory's select options drift faster than this code.
var statusCodes = map[string]string{
	"active":     "active",
	"onboarding": "onboarding",
	"paused":     "paused",
	"churned":    "churned",
	"offboarded": "churned",
}

var priorityCodes = map[string]string{
	"p1":     "p1",
	"high":   "p1",
	"p2":     "p2",
	"medium": "p2",
	"p3":     "p3",
	"low":    "p3",
}

var cadenceCodes = map[string]string{
	"weekly":      "weekly",
	"biweekly":    "biweekly",
	"monthly":     "monthly",
	"quarterly":   "quarterly",
	"semi-annual": "semiannual",
	"annual":      "annual",
}

const (
	defaultStatus   = "active"
	defaultPriority = "p2"
	defaultCadence  = "monthly"
)

// transformed is the full derived view of one external record: the client
// field set plus the per-role contact references and legacy name strings
// the assignment reconciler consumes.
type transformed struct {
	fields store.ClientFields

	// roleContacts holds the contacts referenced by each role's relation
	// or people property, resolved through the contact cache.
	roleContacts map[store.Role][]Contact

	// roleNames holds the legacy free-text names per role, used only when
	// a role's relation-based resolution comes up empty.
	roleNames map[store.Role][]string
}

// transformRecord derives the local field set for one external record.
// Absent properties yield zero values; the only error surface is a
// malformed date, which fails the record rather than silently dropping
// the onboarding timestamp.
func transformRecord(ctx context.Context, rec *directory.Record, sc *SyncContext) (*transformed, error) {
	onboarded, err := rec.Prop(propOnboardedAt).DateValue()
	if err != nil {
		return nil, fmt.Errorf("property %q: %w", propOnboardedAt, err)
	}

	tr := &transformed{
		fields: store.ClientFields{
			Name:          rec.Prop(propName).PlainText(),
			Status:        mapCode(rec.Prop(propStatus).SelectLabel(), statusCodes, defaultStatus),
			Priority:      mapCode(rec.Prop(propPriority).SelectLabel(), priorityCodes, defaultPriority),
			ReviewCadence: mapCode(rec.Prop(propCadence).SelectLabel(), cadenceCodes, defaultCadence),
			Website:       rec.Prop(propWebsite).PlainText(),
			Frameworks:    frameworkNames(ctx, rec.Prop(propFrameworks), sc),
		},
		roleContacts: make(map[store.Role][]Contact),
		roleNames:    make(map[store.Role][]string),
	}

	if onboarded != nil {
		tr.fields.OnboardedAt = onboarded.UnixNano()
	}

	for _, rp := range roleProperties {
		tr.roleContacts[rp.role] = roleContacts(rec.Prop(rp.relation), sc)
		tr.roleNames[rp.role] = splitNames(rec.Prop(rp.nameText).PlainText())
	}

	return tr, nil
}

// mapCode translates a select label to its local code, falling back to a
// default for unknown or missing labels.
func mapCode(label string, table map[string]string, fallback string) string {
	if code, ok := table[strings.ToLower(strings.TrimSpace(label))]; ok {
		return code
	}

	return fallback
}

// frameworkNames resolves the compliance-framework property. Relation
// fields need a point lookup per referenced id (memoized for the run);
// multi-select fields carry the name directly.
func frameworkNames(ctx context.Context, prop directory.Property, sc *SyncContext) []string {
	var names []string

	switch prop.Kind {
	case directory.KindRelation:
		for _, id := range prop.RelationIDs() {
			if name := sc.FrameworkName(ctx, id); name != "" {
				names = append(names, name)
			}
		}

	case directory.KindMultiSelect:
		names = prop.MultiSelectLabels()
	}

	return names
}

// roleContacts extracts the contacts a role property references. Relation
// properties go through the contact cache; people properties carry name
// and email inline. Unresolvable references are dropped.
func roleContacts(prop directory.Property, sc *SyncContext) []Contact {
	var contacts []Contact

	switch prop.Kind {
	case directory.KindRelation:
		for _, id := range prop.RelationIDs() {
			if c, ok := sc.Contact(id); ok {
				contacts = append(contacts, c)
			}
		}

	case directory.KindPeople:
		for _, p := range prop.People() {
			contacts = append(contacts, Contact{Name: p.Name, Email: p.Email()})
		}
	}

	return contacts
}

// splitNames splits a legacy comma-separated name field.
func splitNames(s string) []string {
	var names []string

	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}

	return names
}

// firstRoleName returns the display name the legacy pointer columns carry
// for a role: the first referenced contact's name, else the first legacy
// text name.
func (tr *transformed) firstRoleName(role store.Role) string {
	if contacts := tr.roleContacts[role]; len(contacts) > 0 {
		return contacts[0].Name
	}

	if names := tr.roleNames[role]; len(names) > 0 {
		return names[0]
	}

	return ""
}

// secondaryNames returns the full secondary-consultant list for the legacy
// pointer column, joined with commas.
func (tr *transformed) secondaryNames() string {
	var names []string

	for _, c := range tr.roleContacts[store.RoleSecondary] {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}

	if len(names) == 0 {
		names = tr.roleNames[store.RoleSecondary]
	}

	return strings.Join(names, ", ")
}
