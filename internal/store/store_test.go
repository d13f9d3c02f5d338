package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens an in-memory store that is torn down with the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:", slog.Default())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestUpsertClient_CreateThenUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fields := ClientFields{
		Name:          "Acme Corp",
		Status:        "active",
		Priority:      "p1",
		ReviewCadence: "monthly",
		Website:       "https://acme.example",
		Frameworks:    []string{"SOC 2"},
	}

	c1, created, err := s.UpsertClient(ctx, "rec-1", fields)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Positive(t, c1.ID)
	assert.Equal(t, "Acme Corp", c1.Name)

	// Second upsert with changed fields must update the same row.
	fields.Name = "Acme Corporation"
	fields.Frameworks = []string{"SOC 2", "ISO 27001"}

	c2, created, err := s.UpsertClient(ctx, "rec-1", fields)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c1.ID, c2.ID)
	assert.Equal(t, "Acme Corporation", c2.Name)
	assert.Equal(t, []string{"SOC 2", "ISO 27001"}, c2.Frameworks)

	n, err := s.CountClients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUpsertClient_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fields := ClientFields{Name: "Acme", Status: "active", Priority: "p2", ReviewCadence: "monthly"}

	c1, _, err := s.UpsertClient(ctx, "rec-1", fields)
	require.NoError(t, err)

	c2, created, err := s.UpsertClient(ctx, "rec-1", fields)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c1.ID, c2.ID)

	stored, err := s.GetClientByExternalID(ctx, "rec-1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Acme", stored.Name)
	assert.Equal(t, []string{}, stored.Frameworks)
}

func TestUpsertClient_EmptyExternalIDRejected(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.UpsertClient(context.Background(), "", ClientFields{Name: "x"})
	require.Error(t, err)
}

func TestGetClientByExternalID_NotFound(t *testing.T) {
	s := newTestStore(t)

	c, err := s.GetClientByExternalID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestReplaceAssignments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, _, err := s.UpsertClient(ctx, "rec-1", ClientFields{Name: "Acme"})
	require.NoError(t, err)

	u1, err := s.InsertUser(ctx, "Jamie Rivera", "Jamie Rivera", "jamie@opsdash.example")
	require.NoError(t, err)
	u2, err := s.InsertUser(ctx, "Sam Ortiz", "", "sam@opsdash.example")
	require.NoError(t, err)

	require.NoError(t, s.ReplaceAssignments(ctx, c.ID, []Assignment{
		{UserID: u1, Role: RoleSE},
		{UserID: u2, Role: RoleSecondary},
	}))

	got, err := s.ListAssignments(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Replacing with a different set removes stale rows.
	require.NoError(t, s.ReplaceAssignments(ctx, c.ID, []Assignment{
		{UserID: u2, Role: RoleSE},
	}))

	got, err = s.ListAssignments(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, u2, got[0].UserID)
	assert.Equal(t, RoleSE, got[0].Role)

	// Replacing with the empty set clears everything.
	require.NoError(t, s.ReplaceAssignments(ctx, c.ID, nil))

	got, err = s.ListAssignments(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAssignmentCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, _, err := s.UpsertClient(ctx, "rec-1", ClientFields{Name: "Acme"})
	require.NoError(t, err)

	u1, err := s.InsertUser(ctx, "Jamie", "", "")
	require.NoError(t, err)
	u2, err := s.InsertUser(ctx, "Sam", "", "")
	require.NoError(t, err)

	require.NoError(t, s.ReplaceAssignments(ctx, c.ID, []Assignment{
		{UserID: u1, Role: RoleSE},
		{UserID: u2, Role: RoleSE},
		{UserID: u2, Role: RoleManager},
	}))

	counts, err := s.AssignmentCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[RoleSE])
	assert.Equal(t, 1, counts[RoleManager])
}

func TestLinkSystem_AdditiveAndIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, _, err := s.UpsertClient(ctx, "rec-1", ClientFields{Name: "Acme"})
	require.NoError(t, err)

	sysID, err := s.InsertSystem(ctx, "Google Workspace", "identity_provider")
	require.NoError(t, err)

	created, err := s.LinkSystem(ctx, c.ID, sysID)
	require.NoError(t, err)
	assert.True(t, created)

	// Duplicate link attempts are no-ops.
	created, err = s.LinkSystem(ctx, c.ID, sysID)
	require.NoError(t, err)
	assert.False(t, created)

	linked, err := s.ListClientSystems(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "Google Workspace", linked[0].Name)
}

func TestLegacyRoleNamesAndTrustCenter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, _, err := s.UpsertClient(ctx, "rec-1", ClientFields{Name: "Acme"})
	require.NoError(t, err)

	require.NoError(t, s.UpdateLegacyRoleNames(ctx, c.ID, "Jamie Rivera", "Sam Ortiz", "Lee Chen", ""))
	require.NoError(t, s.UpdateTrustCenter(ctx, c.ID, "https://trust.acme.example", "SafeBase"))

	stored, err := s.GetClientByExternalID(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "Jamie Rivera", stored.SEName)
	assert.Equal(t, "Sam Ortiz", stored.PrimaryName)
	assert.Equal(t, "Lee Chen", stored.SecondaryName)
	assert.Empty(t, stored.ComplianceName)
	assert.Equal(t, "https://trust.acme.example", stored.TrustCenterURL)
	assert.Equal(t, "SafeBase", stored.TrustCenterPlatform)
}

func TestRunsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, s.SaveRun(ctx, &Run{
		ID: "run-1", StartedAt: 100, FinishedAt: 200,
		Seen: 3, Created: 1, Updated: 2, SystemsLinked: 4,
		Errors: []string{`Error syncing "Acme": boom`},
	}))
	require.NoError(t, s.SaveRun(ctx, &Run{
		ID: "run-2", StartedAt: 300, FinishedAt: 400, Seen: 5,
	}))

	latest, err = s.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-2", latest.ID)
	assert.Equal(t, 5, latest.Seen)
	assert.Empty(t, latest.Errors)
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetSetting(ctx, SettingDirectoryToken)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetSetting(ctx, SettingDirectoryToken, "secret-1"))
	require.NoError(t, s.SetSetting(ctx, SettingDirectoryToken, "secret-2"))

	v, err = s.GetSetting(ctx, SettingDirectoryToken)
	require.NoError(t, err)
	assert.Equal(t, "secret-2", v)
}
