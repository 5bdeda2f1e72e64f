package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredential struct{}

func (fakeCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{
		Token:     "fake-token",
		ExpiresOn: time.Now().Add(time.Hour),
	}, nil
}

func setupClient(t *testing.T, handler http.Handler) *Client {
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(fakeCredential{}, &ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: srv.Client(),
		},
		Endpoint: srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestClient_GetUser(t *testing.T) {
	client := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/alice@contoso.com", r.URL.Path)
		assert.Equal(t, "Bearer fake-token", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":                "u1",
			"displayName":       "Alice",
			"userPrincipalName": "alice@contoso.com",
			"licenseAssignmentStates": []map[string]interface{}{
				{"skuId": "sku-e5", "state": "Active", "error": "None"},
				{"skuId": "sku-ems", "state": "Active", "assignedByGroup": "g1", "disabledPlans": []string{"p1"}},
			},
		})
	}))

	user, err := client.GetUser(context.Background(), "alice@contoso.com")
	require.NoError(t, err)

	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "alice@contoso.com", user.UPN)
	require.Len(t, user.Assignments, 2)
	assert.Empty(t, user.Assignments[0].AssignedByGroupID)
	assert.Equal(t, "g1", user.Assignments[1].AssignedByGroupID)
	assert.Equal(t, []string{"p1"}, user.Assignments[1].DisabledPlanIDs)
}

func TestClient_GetGroup_NotFound(t *testing.T) {
	client := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetGroup(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_ListGroupMembers_Pagination(t *testing.T) {
	var srvURL string
	mux := http.NewServeMux()
	mux.HandleFunc("/groups/g1/members", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"value": []map[string]string{
					{"id": "u3", "userPrincipalName": "carol@contoso.com", "displayName": "Carol"},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"value": []map[string]string{
				{"id": "u1", "userPrincipalName": "alice@contoso.com", "displayName": "Alice"},
				// nested group, no UPN
				{"id": "g2", "displayName": "Nested Group"},
			},
			"@odata.nextLink": fmt.Sprintf("%s/groups/g1/members?page=2", srvURL),
		})
	})

	srv := httptest.NewTLSServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	client, err := NewClient(fakeCredential{}, &ClientOptions{
		ClientOptions: azcore.ClientOptions{Transport: srv.Client()},
		Endpoint:      srv.URL,
	})
	require.NoError(t, err)

	members, err := client.ListGroupMembers(context.Background(), "g1")
	require.NoError(t, err)

	require.Len(t, members, 2)
	assert.Equal(t, "alice@contoso.com", members[0].UPN)
	assert.Equal(t, "carol@contoso.com", members[1].UPN)
}

func TestClient_GetUserExtensionAttribute(t *testing.T) {
	client := setupClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"onPremisesExtensionAttributes": map[string]interface{}{
				"extensionAttribute1": "Finance",
				"extensionAttribute2": nil,
			},
		})
	}))

	value, err := client.GetUserExtensionAttribute(context.Background(), "u1", "extensionAttribute1")
	require.NoError(t, err)
	assert.Equal(t, "Finance", value)

	value, err = client.GetUserExtensionAttribute(context.Background(), "u1", "extensionAttribute2")
	require.NoError(t, err)
	assert.Empty(t, value)
}
