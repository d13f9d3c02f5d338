package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/dirsync/internal/store"
)

func testCatalog() vendorCatalog {
	return newVendorCatalog([]*store.System{
		{ID: 1, Name: "Google Workspace", Category: "email_platform"},
		{ID: 2, Name: "Microsoft 365", Category: "email_platform"},
		{ID: 3, Name: "1Password", Category: "password_manager"},
	})
}

func TestVendorCatalog_DirectMatchIsCaseInsensitive(t *testing.T) {
	catalog := testCatalog()

	id, ok := catalog.resolve("google workspace")
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	id, ok = catalog.resolve("1PASSWORD")
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
}

func TestVendorCatalog_AliasAbsorbsNamingDrift(t *testing.T) {
	catalog := testCatalog()

	cases := map[string]int64{
		"Google":     1,
		"GSuite":     1,
		"o365":       2,
		"Office 365": 2,
		"1pass":      3,
	}

	for name, want := range cases {
		id, ok := catalog.resolve(name)
		require.True(t, ok, name)
		assert.Equal(t, want, id, name)
	}
}

func TestVendorCatalog_UnknownNamesResolveToNothing(t *testing.T) {
	catalog := testCatalog()

	_, ok := catalog.resolve("Acme Obscure Tool")
	assert.False(t, ok)

	_, ok = catalog.resolve("")
	assert.False(t, ok)
}

func TestVendorNames_CollectsAcrossCategoryFields(t *testing.T) {
	sc := newTestSyncContext(newFakeFetcher())
	sc.vendors["vendor-google"] = "Google"
	sc.vendors["vendor-kandji"] = "Kandji"

	rec := makeRecord(t, "rec-1", map[string]any{
		"Name":           titleProp("Acme Corp"),
		"Email Platform": relationProp("vendor-google"),
		"MDM":            relationProp("vendor-kandji"),
		"EDR":            selectProp("CrowdStrike"),
		// Unreferenced relation ids resolve to nothing and are skipped.
		"GRC": relationProp("vendor-missing"),
	})

	names := vendorNames(&rec, sc)
	assert.ElementsMatch(t, []string{"Google", "Kandji", "CrowdStrike"}, names)
}

func TestVendorNames_Deduplicates(t *testing.T) {
	sc := newTestSyncContext(newFakeFetcher())
	sc.vendors["vendor-google"] = "Google"

	rec := makeRecord(t, "rec-1", map[string]any{
		"Email Platform":    relationProp("vendor-google"),
		"Identity Provider": relationProp("vendor-google"),
	})

	names := vendorNames(&rec, sc)
	assert.Equal(t, []string{"Google"}, names)
}
