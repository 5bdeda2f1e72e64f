package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/rs/zerolog"

	"github.com/de-tools/license-atlas/pkg/models/store"
)

const (
	defaultEndpoint = "https://graph.microsoft.com/v1.0"
	defaultScope    = "https://graph.microsoft.com/.default"
	pageSize        = "999"

	moduleName    = "github.com/de-tools/license-atlas"
	moduleVersion = "v0.1.0"
)

// ErrNotFound is returned when the directory has no object with the
// requested identifier.
var ErrNotFound = errors.New("directory object not found")

// Directory is the read surface of the directory service the reports consume.
type Directory interface {
	GetUser(ctx context.Context, identifier string) (*store.User, error)
	ListSkus(ctx context.Context) ([]store.SKU, error)
	GetGroup(ctx context.Context, id string) (*store.Group, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]store.GroupMember, error)
	GetUserExtensionAttribute(ctx context.Context, userID, name string) (string, error)
}

type Client struct {
	internal *azcore.Client
	endpoint string
}

type ClientOptions struct {
	azcore.ClientOptions

	// Endpoint overrides the Graph base URL, used by tests.
	Endpoint string
}

func NewClient(cred azcore.TokenCredential, options *ClientOptions) (*Client, error) {
	if options == nil {
		options = &ClientOptions{}
	}

	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	authPolicy := runtime.NewBearerTokenPolicy(cred, []string{defaultScope}, nil)
	internal, err := azcore.NewClient(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry: []policy.Policy{authPolicy},
	}, &options.ClientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph pipeline: %w", err)
	}

	return &Client{internal: internal, endpoint: endpoint}, nil
}

type licenseAssignmentState struct {
	SkuID           string   `json:"skuId"`
	State           string   `json:"state"`
	Error           string   `json:"error"`
	AssignedByGroup string   `json:"assignedByGroup"`
	DisabledPlans   []string `json:"disabledPlans"`
}

type userResponse struct {
	ID                      string                   `json:"id"`
	DisplayName             string                   `json:"displayName"`
	UserPrincipalName       string                   `json:"userPrincipalName"`
	LicenseAssignmentStates []licenseAssignmentState `json:"licenseAssignmentStates"`
}

func (c *Client) GetUser(ctx context.Context, identifier string) (*store.User, error) {
	var resp userResponse
	query := url.Values{
		"$select": []string{"id,displayName,userPrincipalName,licenseAssignmentStates"},
	}
	err := c.get(ctx, fmt.Sprintf("users/%s", url.PathEscape(identifier)), query, &resp)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", identifier, err)
	}

	user := &store.User{
		ID:          resp.ID,
		DisplayName: resp.DisplayName,
		UPN:         resp.UserPrincipalName,
	}
	for _, s := range resp.LicenseAssignmentStates {
		user.Assignments = append(user.Assignments, store.LicenseAssignment{
			SKUID:             s.SkuID,
			State:             s.State,
			Error:             s.Error,
			AssignedByGroupID: s.AssignedByGroup,
			DisabledPlanIDs:   s.DisabledPlans,
		})
	}
	return user, nil
}

type subscribedSku struct {
	SkuID         string `json:"skuId"`
	SkuPartNumber string `json:"skuPartNumber"`
}

func (c *Client) ListSkus(ctx context.Context) ([]store.SKU, error) {
	var skus []store.SKU
	page := struct {
		Value    []subscribedSku `json:"value"`
		NextLink string          `json:"@odata.nextLink"`
	}{}

	err := c.get(ctx, "subscribedSkus", nil, &page)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	for _, s := range page.Value {
		skus = append(skus, store.SKU{ID: s.SkuID, PartNumber: s.SkuPartNumber})
	}
	return skus, nil
}

type groupResponse struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	GroupTypes  []string `json:"groupTypes"`
}

func (c *Client) GetGroup(ctx context.Context, id string) (*store.Group, error) {
	var resp groupResponse
	query := url.Values{
		"$select": []string{"id,displayName,groupTypes"},
	}
	err := c.get(ctx, fmt.Sprintf("groups/%s", url.PathEscape(id)), query, &resp)
	if err != nil {
		return nil, err
	}

	group := &store.Group{ID: resp.ID, DisplayName: resp.DisplayName}
	for _, gt := range resp.GroupTypes {
		if gt == "DynamicMembership" {
			group.DynamicMembership = true
		}
	}
	return group, nil
}

type memberResponse struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// ListGroupMembers follows @odata.nextLink pagination until the membership
// list is exhausted.
func (c *Client) ListGroupMembers(ctx context.Context, groupID string) ([]store.GroupMember, error) {
	logger := zerolog.Ctx(ctx)

	var members []store.GroupMember
	endpoint := c.url(fmt.Sprintf("groups/%s/members", url.PathEscape(groupID)), url.Values{
		"$select": []string{"id,displayName,userPrincipalName"},
		"$top":    []string{pageSize},
	})

	for endpoint != "" {
		page := struct {
			Value    []memberResponse `json:"value"`
			NextLink string           `json:"@odata.nextLink"`
		}{}

		if err := c.getURL(ctx, endpoint, &page); err != nil {
			return nil, fmt.Errorf("list members of group %q: %w", groupID, err)
		}

		for _, m := range page.Value {
			// Membership can include service principals and nested
			// groups; those have no UPN and are not snapshot targets.
			if m.UserPrincipalName == "" {
				continue
			}
			members = append(members, store.GroupMember{
				ID:          m.ID,
				UPN:         m.UserPrincipalName,
				DisplayName: m.DisplayName,
			})
		}

		endpoint = page.NextLink
	}

	logger.Debug().Str("group", groupID).Int("members", len(members)).Msg("fetched group membership")
	return members, nil
}

type extensionAttributesResponse struct {
	OnPremisesExtensionAttributes map[string]*string `json:"onPremisesExtensionAttributes"`
}

// GetUserExtensionAttribute returns one onPremisesExtensionAttributes value,
// e.g. name "extensionAttribute4". Missing attributes come back empty.
func (c *Client) GetUserExtensionAttribute(ctx context.Context, userID, name string) (string, error) {
	var resp extensionAttributesResponse
	query := url.Values{
		"$select": []string{"onPremisesExtensionAttributes"},
	}
	err := c.get(ctx, fmt.Sprintf("users/%s", url.PathEscape(userID)), query, &resp)
	if err != nil {
		return "", fmt.Errorf("get extension attributes for %q: %w", userID, err)
	}

	if v, ok := resp.OnPremisesExtensionAttributes[name]; ok && v != nil {
		return *v, nil
	}
	return "", nil
}

func (c *Client) url(path string, query url.Values) string {
	endpoint := runtime.JoinPaths(c.endpoint, path)
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}
	return endpoint
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.getURL(ctx, c.url(path, query), out)
}

func (c *Client) getURL(ctx context.Context, endpoint string, out interface{}) error {
	req, err := runtime.NewRequest(ctx, http.MethodGet, endpoint)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.internal.Pipeline().Do(req)
	if err != nil {
		return err
	}
	defer func() {
		err := resp.Body.Close()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close graph response body")
		}
	}()

	if !runtime.HasStatusCode(resp, http.StatusOK) {
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return runtime.NewResponseError(resp)
	}

	return runtime.UnmarshalAsJSON(resp, out)
}
