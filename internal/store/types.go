package store

// Role names the relationship between a user and a client. The set is
// closed; the reconciler only ever writes these values.
type Role string

const (
	RoleSE         Role = "se"          // system engineer
	RolePrimary    Role = "primary"     // primary consultant
	RoleSecondary  Role = "secondary"   // secondary consultant
	RoleManager    Role = "manager"     // IT manager
	RoleCompliance Role = "compliance"  // compliance engineer
	RoleInfraOwner Role = "infra_owner" // infrastructure-check owner of record
)

// Roles lists every assignment role in display order.
var Roles = []Role{RoleSE, RolePrimary, RoleSecondary, RoleManager, RoleCompliance, RoleInfraOwner}

// Client is the reconciled local representation of one directory record.
// Timestamps are Unix nanoseconds; zero means unset.
type Client struct {
	ID            int64
	ExternalID    string
	Name          string
	Status        string
	Priority      string
	ReviewCadence string
	Website       string
	Frameworks    []string
	OnboardedAt   int64

	// Legacy singular pointer fields kept for consumers that have not
	// migrated to the assignments table.
	SEName         string
	PrimaryName    string
	SecondaryName  string
	ComplianceName string

	TrustCenterURL      string
	TrustCenterPlatform string

	LastSyncedAt int64
	CreatedAt    int64
	UpdatedAt    int64
}

// ClientFields is the field set the sync engine derives from one external
// record. Everything here is owned by the engine; columns it does not
// cover belong to the dashboard.
type ClientFields struct {
	Name          string
	Status        string
	Priority      string
	ReviewCadence string
	Website       string
	Frameworks    []string
	OnboardedAt   int64
}

// User is a local account. The engine resolves against users; it never
// creates them.
type User struct {
	ID            int64
	DisplayName   string
	DirectoryName string
	Email         string
}

// Assignment is one (client, user, role) edge.
type Assignment struct {
	ClientID int64
	UserID   int64
	Role     Role
}

// System is one vendor catalog entry.
type System struct {
	ID       int64
	Name     string
	Category string
}

// Run is one persisted sync run summary.
type Run struct {
	ID            string
	StartedAt     int64
	FinishedAt    int64
	Seen          int
	Created       int
	Updated       int
	SystemsLinked int
	Errors        []string
}
