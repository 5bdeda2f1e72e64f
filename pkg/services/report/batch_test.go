package report

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/license-atlas/pkg/models/domain"
	"github.com/de-tools/license-atlas/pkg/models/store"
	"github.com/de-tools/license-atlas/pkg/services/classify"
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
	return args.Get(0).([]store.GroupMember), args.Error(1)
}

func (m *mockDirectory) GetUserExtensionAttribute(ctx context.Context, userID, name string) (string, error) {
	args := m.Called(ctx, userID, name)
	return args.String(0), args.Error(1)
}

func TestBatch_ProcessUsers_FailureIsolation(t *testing.T) {
	ctx := context.Background()

	dir := new(mockDirectory)
	dir.On("GetUser", ctx, "alice@contoso.com").Return(&store.User{
		ID:          "u1",
		UPN:         "alice@contoso.com",
		DisplayName: "Alice",
		Assignments: []store.LicenseAssignment{
			{SKUID: "E5", State: store.AssignmentStateActive},
			{SKUID: "EMS", State: store.AssignmentStateActive, AssignedByGroupID: "G1"},
		},
	}, nil)
	dir.On("GetUser", ctx, "ghost@contoso.com").Return(nil, fmt.Errorf("user not found"))
	dir.On("GetUser", ctx, "bob@contoso.com").Return(&store.User{
		ID:          "u2",
		UPN:         "bob@contoso.com",
		DisplayName: "Bob",
	}, nil)
	dir.On("GetGroup", ctx, "G1").Return(&store.Group{ID: "G1", DisplayName: "Sales Team"}, nil)

	skuNames := map[string]string{"E5": "Office E5", "EMS": "EM+S"}
	cache := classify.NewGroupNameCache(func(ctx context.Context, id string) (string, error) {
		group, err := dir.GetGroup(ctx, id)
		if err != nil {
			return "", err
		}
		return group.DisplayName, nil
	})
	batch := NewBatch(dir, classify.NewClassifier(skuNames, cache, classify.Options{}), "")

	summaries, assignments := batch.ProcessUsers(ctx, []string{
		"alice@contoso.com", "ghost@contoso.com", "bob@contoso.com",
	})

	// error row counts toward processed but not toward assignments
	require.Len(t, summaries, 3)
	require.Len(t, assignments, 2)

	assert.Equal(t, 2, summaries[0].Total)
	assert.Equal(t, 1, summaries[0].Direct)
	assert.Equal(t, 1, summaries[0].Group)
	assert.Equal(t, "Office E5 [Direct]; EM+S [Group: Sales Team]", summaries[0].Summary)

	assert.Equal(t, "ghost@contoso.com", summaries[1].UPN)
	assert.Equal(t, "user not found", summaries[1].Error)
	assert.Zero(t, summaries[1].Total)

	assert.Zero(t, summaries[2].Total)

	dir.AssertExpectations(t)
}

func TestHeldSKUs(t *testing.T) {
	users := []UserAssignments{
		{UPN: "a@contoso.com", Assignments: []domain.ClassifiedAssignment{direct("E5"), fromGroup("EMS", "Sales")}},
		{UPN: "b@contoso.com"},
	}

	held := HeldSKUs(users)
	require.Len(t, held, 2)
	assert.Equal(t, []string{"E5", "EMS"}, held[0].SKUIDs)
	assert.Empty(t, held[1].SKUIDs)
}
