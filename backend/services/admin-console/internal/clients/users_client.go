package clients

import (
	"context"
	"net/url"

	"evhub/backend/services/admin-console/internal/models"
)

// UsersClient calls the /users endpoints.
type UsersClient struct {
	base *Client
}

// NewUsersClient returns client.
func NewUsersClient(base *Client) *UsersClient {
	return &UsersClient{base: base}
}

func userPath(id string) string {
	return "/users/" + url.PathEscape(id)
}

// List returns every user.
func (c *UsersClient) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := c.base.Get(ctx, "/users", &out)
	return out, err
}

// Get returns one user.
func (c *UsersClient) Get(ctx context.Context, id string) (models.User, error) {
	var out models.User
	err := c.base.Get(ctx, userPath(id), &out)
	return out, err
}

// ByNIC looks a user up by NIC.
func (c *UsersClient) ByNIC(ctx context.Context, nic string) (models.User, error) {
	var out models.User
	err := c.base.Get(ctx, "/users/by-nic/"+url.PathEscape(nic), &out)
	return out, err
}

// ByEmail looks a user up by email.
func (c *UsersClient) ByEmail(ctx context.Context, email string) (models.User, error) {
	var out models.User
	err := c.base.Get(ctx, "/users/by-email/"+url.PathEscape(email), &out)
	return out, err
}

// Create posts a new user record.
func (c *UsersClient) Create(ctx context.Context, record map[string]any) (models.User, error) {
	var out models.User
	err := c.base.Post(ctx, "/users", record, &out)
	return out, err
}

// Update sends the changed fields of a user.
func (c *UsersClient) Update(ctx context.Context, id string, record map[string]any) (models.User, error) {
	var out models.User
	err := c.base.Put(ctx, userPath(id), record, &out)
	return out, err
}

// Delete removes a user.
func (c *UsersClient) Delete(ctx context.Context, id string) error {
	return c.base.Delete(ctx, userPath(id), nil)
}

// SetActive calls the deactivate/reactivate endpoints.
func (c *UsersClient) SetActive(ctx context.Context, id string, active bool) (models.User, error) {
	action := "/deactivate"
	if active {
		action = "/reactivate"
	}
	var out models.User
	err := c.base.Patch(ctx, userPath(id)+action, nil, &out)
	return out, err
}
