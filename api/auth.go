package api

import (
	"context"
	"net/http"

	"agrilink-storefront/models"

	"github.com/pkg/errors"
)

// AuthPayload is the data of a successful login or registration
type AuthPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Me fetches the user the stored credential belongs to
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	env, err := c.Do(ctx, http.MethodGet, "/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	if !env.Success || !env.HasData() {
		return nil, errors.Wrap(ErrMalformedResponse, "invalid user data from server")
	}

	var user models.User
	if err := env.Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token and the user record
func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	body := map[string]string{"email": email, "password": password}
	env, err := c.Do(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return nil, err
	}
	if !env.Success || !env.HasData() {
		return nil, errors.Wrap(ErrMalformedResponse, "invalid server response structure")
	}

	var payload AuthPayload
	if err := env.Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Token == "" || payload.User == nil {
		return nil, errors.Wrap(ErrMalformedResponse, "invalid server response structure")
	}
	return &payload, nil
}

// Register creates an account. The backend either signs the user in right
// away (token and user set) or asks for email verification first (empty
// payload); the message is passed through for display.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*AuthPayload, string, error) {
	env, err := c.Do(ctx, http.MethodPost, "/auth/register", nil, reg)
	if err != nil {
		return nil, "", err
	}
	if !env.Success {
		return nil, "", errors.Wrap(ErrMalformedResponse, "invalid server response structure")
	}

	var payload AuthPayload
	if env.HasData() {
		if err := env.Decode(&payload); err != nil {
			return nil, "", err
		}
	}
	if payload.Token != "" && payload.User == nil {
		return nil, "", errors.Wrap(ErrMalformedResponse, "token without user")
	}
	return &payload, env.Message, nil
}

// Logout tells the backend to end the session
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	return err
}
