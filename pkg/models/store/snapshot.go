package store

import "time"

// MembershipRow is one recorded group membership in the local snapshot table.
type MembershipRow struct {
	ID         string
	UPN        string
	GroupID    string
	GroupName  string
	Department string
	RecordedAt time.Time
}

type SnapshotStats struct {
	Inserted int64
	Skipped  int64
	Failed   int64
}
