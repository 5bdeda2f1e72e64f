package snapshot

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/license-atlas/pkg/models/store"
	"github.com/de-tools/license-atlas/pkg/store/sqlite"
	"github.com/de-tools/license-atlas/pkg/store/sqlite/membership"
)

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) GetUser(ctx context.Context, identifier string) (*store.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.User), args.Error(1)
}

func (m *mockDirectory) ListSkus(ctx context.Context) ([]store.SKU, error) {
	args := m.Called(ctx)
	return args.Get(0).([]store.SKU), args.Error(1)
}

func (m *mockDirectory) GetGroup(ctx context.Context, id string) (*store.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Group), args.Error(1)
}

func (m *mockDirectory) ListGroupMembers(ctx context.Context, groupID string) ([]store.GroupMember, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.GroupMember), args.Error(1)
}

func (m *mockDirectory) GetUserExtensionAttribute(ctx context.Context, userID, name string) (string, error) {
	args := m.Called(ctx, userID, name)
	return args.String(0), args.Error(1)
}

func setupStore(t *testing.T) membership.Store {
	db, err := sqlite.NewDB(sqlite.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s, err := membership.NewStore(db)
	require.NoError(t, err)
	return s
}

func member(id, upn string) store.GroupMember {
	return store.GroupMember{ID: id, UPN: upn, DisplayName: upn}
}

func TestIngestor_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("copies members with extension attribute", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("GetGroup", ctx, "g1").Return(&store.Group{ID: "g1", DisplayName: "Sales"}, nil)
		dir.On("ListGroupMembers", ctx, "g1").Return([]store.GroupMember{
			member("u1", "alice@contoso.com"),
			member("u2", "bob@contoso.com"),
		}, nil)
		dir.On("GetUserExtensionAttribute", ctx, "u1", "extensionAttribute4").Return("Sales EMEA", nil)
		dir.On("GetUserExtensionAttribute", ctx, "u2", "extensionAttribute4").Return("Sales US", nil)

		memStore := setupStore(t)
		ingestor := NewIngestor(dir, memStore, Config{ExtensionAttribute: "extensionAttribute4"})

		stats, err := ingestor.Run(ctx, []string{"g1"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Inserted)
		assert.Equal(t, int64(0), stats.Skipped)

		rows, err := memStore.GetByGroup(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Sales", rows[0].GroupName)
		assert.Equal(t, "Sales EMEA", rows[0].Department)

		dir.AssertExpectations(t)
	})

	t.Run("re-run is idempotent", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("GetGroup", ctx, "g1").Return(&store.Group{ID: "g1", DisplayName: "Sales"}, nil)
		dir.On("ListGroupMembers", ctx, "g1").Return([]store.GroupMember{
			member("u1", "alice@contoso.com"),
		}, nil)
		dir.On("GetUserExtensionAttribute", ctx, "u1", "extensionAttribute4").Return("Sales EMEA", nil)

		memStore := setupStore(t)
		ingestor := NewIngestor(dir, memStore, Config{ExtensionAttribute: "extensionAttribute4"})

		stats, err := ingestor.Run(ctx, []string{"g1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Inserted)

		stats, err = ingestor.Run(ctx, []string{"g1"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Inserted)
		assert.Equal(t, int64(1), stats.Skipped)
	})

	t.Run("cap stops at two rows per user", func(t *testing.T) {
		dir := new(mockDirectory)
		for _, g := range []string{"g1", "g2", "g3"} {
			dir.On("GetGroup", ctx, g).Return(&store.Group{ID: g, DisplayName: "Group " + g}, nil)
			dir.On("ListGroupMembers", ctx, g).Return([]store.GroupMember{
				member("u1", "alice@contoso.com"),
			}, nil)
		}
		dir.On("GetUserExtensionAttribute", ctx, "u1", "extensionAttribute4").Return("Sales", nil)

		memStore := setupStore(t)
		ingestor := NewIngestor(dir, memStore, Config{
			ExtensionAttribute: "extensionAttribute4",
			MaxRowsPerUser:     2,
		})

		stats, err := ingestor.Run(ctx, []string{"g1", "g2", "g3"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Inserted)
		assert.Equal(t, int64(1), stats.Skipped)

		count, err := memStore.CountForUser(ctx, "alice@contoso.com")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("group name lookup failure falls back to id", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("GetGroup", ctx, "g1").Return(nil, fmt.Errorf("access denied"))
		dir.On("ListGroupMembers", ctx, "g1").Return([]store.GroupMember{
			member("u1", "alice@contoso.com"),
		}, nil)
		dir.On("GetUserExtensionAttribute", ctx, "u1", "extensionAttribute4").Return("", nil)

		memStore := setupStore(t)
		ingestor := NewIngestor(dir, memStore, Config{ExtensionAttribute: "extensionAttribute4"})

		stats, err := ingestor.Run(ctx, []string{"g1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Inserted)

		rows, err := memStore.GetByGroup(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "g1", rows[0].GroupName)
	})

	t.Run("extension attribute failure skips the member", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("GetGroup", ctx, "g1").Return(&store.Group{ID: "g1", DisplayName: "Sales"}, nil)
		dir.On("ListGroupMembers", ctx, "g1").Return([]store.GroupMember{
			member("u1", "alice@contoso.com"),
			member("u2", "bob@contoso.com"),
		}, nil)
		dir.On("GetUserExtensionAttribute", ctx, "u1", "extensionAttribute4").Return("", fmt.Errorf("throttled"))
		dir.On("GetUserExtensionAttribute", ctx, "u2", "extensionAttribute4").Return("Sales US", nil)

		memStore := setupStore(t)
		ingestor := NewIngestor(dir, memStore, Config{ExtensionAttribute: "extensionAttribute4"})

		stats, err := ingestor.Run(ctx, []string{"g1"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Inserted)
		assert.Equal(t, int64(1), stats.Failed)
		assert.Equal(t, int64(0), stats.Skipped)

		rows, err := memStore.GetByGroup(ctx, "g1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "bob@contoso.com", rows[0].UPN)
	})

	t.Run("member list failure skips the group, run continues", func(t *testing.T) {
		dir := new(mockDirectory)
		dir.On("GetGroup", ctx, "bad").Return(&store.Group{ID: "bad", DisplayName: "Bad"}, nil)
		dir.On("ListGroupMembers", ctx, "bad").Return(nil, fmt.Errorf("throttled"))
		dir.On("GetGroup", ctx, "good").Return(&store.Group{ID: "good", DisplayName: "Good"}, nil)
		dir.On("ListGroupMembers", ctx, "good").Return([]store.GroupMember{
			member("u1", "alice@contoso.com"),
		}, nil)
		dir.On("GetUserExtensionAttribute", ctx, "u1", "extensionAttribute4").Return("", nil)

		memStore := setupStore(t)
		ingestor := NewIngestor(dir, memStore, Config{ExtensionAttribute: "extensionAttribute4"})

		stats, err := ingestor.Run(ctx, []string{"bad", "good"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.Inserted)
		assert.Equal(t, int64(1), stats.Failed)
	})

	t.Run("no groups is a setup error", func(t *testing.T) {
		memStore := setupStore(t)
		ingestor := NewIngestor(new(mockDirectory), memStore, Config{})

		_, err := ingestor.Run(ctx, nil)
		assert.Error(t, err)
	})
}
