package membership

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/license-atlas/pkg/models/store"
)

// Store records group-membership rows in the local snapshot table.
// Add is insert-if-absent on the (upn, group_id) key, so replaying the same
// membership list is a no-op.
type Store interface {
	Add(ctx context.Context, row store.MembershipRow) (bool, error)
	CountForUser(ctx context.Context, upn string) (int, error)
	GetByGroup(ctx context.Context, groupID string) ([]store.MembershipRow, error)
}

type membershipStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &membershipStore{db: db}, nil
}

func (m *membershipStore) Add(ctx context.Context, row store.MembershipRow) (bool, error) {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.RecordedAt.IsZero() {
		row.RecordedAt = time.Now().UTC()
	}

	query := `
		INSERT OR IGNORE INTO membership_snapshot (
			id, upn, group_id, group_name, department, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?)`

	result, err := m.db.ExecContext(ctx, query,
		row.ID,
		row.UPN,
		row.GroupID,
		row.GroupName,
		row.Department,
		row.RecordedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert membership row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (m *membershipStore) CountForUser(ctx context.Context, upn string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM membership_snapshot WHERE upn = ?`
	err := m.db.QueryRowContext(ctx, query, upn).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count membership rows for %q: %w", upn, err)
	}
	return count, nil
}

func (m *membershipStore) GetByGroup(ctx context.Context, groupID string) ([]store.MembershipRow, error) {
	logger := zerolog.Ctx(ctx)

	query := `
		SELECT id, upn, group_id, group_name, department, recorded_at
		FROM membership_snapshot
		WHERE group_id = ?
		ORDER BY upn ASC
	`
	rows, err := m.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("query membership rows: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close membership query rows")
		}
	}(rows)

	var records []store.MembershipRow
	for rows.Next() {
		var row store.MembershipRow
		err := rows.Scan(&row.ID, &row.UPN, &row.GroupID, &row.GroupName, &row.Department, &row.RecordedAt)
		if err != nil {
			return nil, fmt.Errorf("scan membership row: %w", err)
		}
		records = append(records, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate membership rows: %w", err)
	}
	return records, nil
}
