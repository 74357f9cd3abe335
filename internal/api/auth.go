package api

import (
	"context"
	"net/http"
)

// LoginRequest carries doctor credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the bearer token to persist in the session store.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	User        map[string]any `json:"user,omitempty"`
}

// Login exchanges credentials for a bearer token. The caller decides where
// the token lives; the client never stores it.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "auth.login", "/auth/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
