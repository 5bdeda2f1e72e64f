package domain

import "fmt"

// SourceKind discriminates how a license reached a user.
type SourceKind string

const (
	SourceDirect SourceKind = "Direct"
	SourceGroup  SourceKind = "Group"
)

// AssignmentSource records where an assignment came from. GroupID and
// GroupName are set only when Kind is SourceGroup.
type AssignmentSource struct {
	Kind      SourceKind
	GroupID   string
	GroupName string
}

func Direct() AssignmentSource {
	return AssignmentSource{Kind: SourceDirect}
}

func FromGroup(id, name string) AssignmentSource {
	return AssignmentSource{Kind: SourceGroup, GroupID: id, GroupName: name}
}

// Label renders the source the way report rows print it: "Direct" or
// "Group: <name>".
func (s AssignmentSource) Label() string {
	if s.Kind == SourceGroup {
		return fmt.Sprintf("Group: %s", s.GroupName)
	}
	return string(SourceDirect)
}

// ClassifiedAssignment is one raw assignment resolved to its source and
// human-readable SKU name. State and Error are populated only when the
// classifier runs in all-states mode.
type ClassifiedAssignment struct {
	SKUID           string
	SKUName         string
	Source          AssignmentSource
	State           string
	Error           string
	DisabledPlanIDs []string
}
