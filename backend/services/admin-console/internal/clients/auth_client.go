package clients

import (
	"context"

	"evhub/backend/services/admin-console/internal/models"
)

// AuthClient calls the /auth endpoints.
type AuthClient struct {
	base *Client
}

// NewAuthClient returns client.
func NewAuthClient(base *Client) *AuthClient {
	return &AuthClient{base: base}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and profile.
func (c *AuthClient) Login(ctx context.Context, email, password string) (models.AuthResult, error) {
	var out models.AuthResult
	err := c.base.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &out)
	return out, err
}

type registerRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Phone    string      `json:"phone"`
	NIC      string      `json:"nic,omitempty"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// Register creates an account. The confirmation password is never sent.
func (c *AuthClient) Register(ctx context.Context, in models.RegisterInput) (models.AuthResult, error) {
	var out models.AuthResult
	req := registerRequest{
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		NIC:      in.NIC,
		Password: in.Password,
		Role:     in.Role,
	}
	err := c.base.Post(ctx, "/auth/register", req, &out)
	return out, err
}

// LoginHistory fetches the server-side login history.
func (c *AuthClient) LoginHistory(ctx context.Context) ([]models.LoginEntry, error) {
	var out []models.LoginEntry
	err := c.base.Get(ctx, "/auth/login-history", &out)
	return out, err
}
