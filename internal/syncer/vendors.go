package syncer

import (
	"context"
	"strings"

	"github.com/opsdash/dirsync/internal/directory"
	"github.com/opsdash/dirsync/internal/store"
)

// vendorProperties maps each product-category relation field in the
// clients collection to its catalog category.
var vendorProperties = map[string]string{
	"Identity Provider":  "identity_provider",
	"Email Platform":     "email_platform",
	"MDM":                "mdm",
	"EDR":                "edr",
	"Password Manager":   "password_manager",
	"GRC":                "grc",
	"Security Awareness": "security_awareness",
	"Backup":             "backup",
	"Email Security":     "email_security",
}

// vendorAliases absorbs known naming drift between the directory's vendor
// records and the local catalog. Keys are lowercased external names,
// values are canonical catalog names. Hand-maintained; extend as new
// variants show up in sync logs.
var vendorAliases = map[string]string{
	"google":       "Google Workspace",
	"gsuite":       "Google Workspace",
	"g suite":      "Google Workspace",
	"o365":         "Microsoft 365",
	"office 365":   "Microsoft 365",
	"ms365":        "Microsoft 365",
	"crowdstrike":  "CrowdStrike Falcon",
	"sentinel one": "SentinelOne",
	"1pass":        "1Password",
	"kandji mdm":   "Kandji",
}

// vendorCatalog indexes the local systems table by lowercased name for
// one run.
type vendorCatalog map[string]int64

// newVendorCatalog builds the name index from the systems table.
func newVendorCatalog(systems []*store.System) vendorCatalog {
	catalog := make(vendorCatalog, len(systems))

	for _, s := range systems {
		catalog[strings.ToLower(s.Name)] = s.ID
	}

	return catalog
}

// resolve maps an external vendor name to a catalog system id: direct
// case-insensitive match first, then the alias table. ok is false for
// names the catalog does not carry, which is expected and not an error.
func (vc vendorCatalog) resolve(name string) (int64, bool) {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return 0, false
	}

	if id, ok := vc[lowered]; ok {
		return id, true
	}

	if canonical, ok := vendorAliases[lowered]; ok {
		if id, ok := vc[strings.ToLower(canonical)]; ok {
			return id, true
		}
	}

	return 0, false
}

// vendorNames extracts the deduplicated vendor names one record references
// across every product-category field. Relation fields resolve through the
// vendor cache; select and multi-select fields carry names directly.
func vendorNames(rec *directory.Record, sc *SyncContext) []string {
	var names []string

	seen := make(map[string]struct{})

	add := func(name string) {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return
		}

		if _, dup := seen[key]; dup {
			return
		}

		seen[key] = struct{}{}
		names = append(names, strings.TrimSpace(name))
	}

	for propName := range vendorProperties {
		prop := rec.Prop(propName)

		switch prop.Kind {
		case directory.KindRelation:
			for _, id := range prop.RelationIDs() {
				if name, ok := sc.VendorName(id); ok {
					add(name)
				}
			}

		case directory.KindSelect:
			add(prop.SelectLabel())

		case directory.KindMultiSelect:
			for _, label := range prop.MultiSelectLabels() {
				add(label)
			}
		}
	}

	return names
}

// linkVendors resolves each vendor name against the catalog and links the
// matches to the client. Links are additive and idempotent; unmatched
// names are silently dropped because the catalog trails the external
// vendor universe. Returns the number of links actually created.
func linkVendors(ctx context.Context, st *store.Store, clientID int64, names []string, catalog vendorCatalog) (int, error) {
	linked := 0

	for _, name := range names {
		systemID, ok := catalog.resolve(name)
		if !ok {
			continue
		}

		created, err := st.LinkSystem(ctx, clientID, systemID)
		if err != nil {
			return linked, err
		}

		if created {
			linked++
		}
	}

	return linked, nil
}
