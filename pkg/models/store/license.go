package store

// AssignmentState values as reported by the directory service.
const (
	AssignmentStateActive   = "Active"
	AssignmentStateDisabled = "Disabled"
	AssignmentStateError    = "Error"
)

// LicenseAssignment is a raw license-assignment record attached to a user.
// AssignedByGroupID is empty for direct assignments.
type LicenseAssignment struct {
	SKUID             string
	State             string
	Error             string
	AssignedByGroupID string
	DisabledPlanIDs   []string
}

type User struct {
	ID          string
	DisplayName string
	UPN         string
	Assignments []LicenseAssignment
}

type SKU struct {
	ID         string
	PartNumber string
}

type Group struct {
	ID                string
	DisplayName       string
	DynamicMembership bool
}

type GroupMember struct {
	ID          string
	UPN         string
	DisplayName string
}
