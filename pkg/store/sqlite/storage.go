package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const MembershipSnapshotSchema = `
	CREATE TABLE IF NOT EXISTS membership_snapshot (
		id VARCHAR NOT NULL PRIMARY KEY,
		upn VARCHAR NOT NULL,
		group_id VARCHAR NOT NULL,
		group_name VARCHAR,
		department VARCHAR,
		recorded_at TIMESTAMP NOT NULL,
		UNIQUE (upn, group_id)
	);
`

const MembershipSnapshotIndexes = `
	CREATE INDEX IF NOT EXISTS idx_membership_snapshot_upn ON membership_snapshot (upn);
`

var bootQueries = []string{
	MembershipSnapshotSchema,
	MembershipSnapshotIndexes,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", settings.DbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite serializes writes anyway; a single pooled connection also keeps
	// :memory: databases from being split across connections.
	db.SetMaxOpenConns(1)

	for _, query := range bootQueries {
		if _, err := db.Exec(query); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run boot query: %w", err)
		}
	}

	return db, nil
}
