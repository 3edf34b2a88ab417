package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	School    string `json:"school,omitempty"`
	Course    string `json:"course,omitempty"`
	UserClass string `json:"userClass,omitempty"`
}

// Login authenticates with email and password. The raw session object is
// returned undecoded so the session layer can persist and merge it without
// losing fields this client has no typed representation for.
func (c *Client) Login(ctx context.Context, email, password string) (json.RawMessage, error) {
	body := map[string]string{"email": email, "password": password}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/user/login", body, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Register creates a new account. The account stays inactive until the
// emailed code is confirmed via VerifyCode.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/user/register", req, nil)
}

// SendCode asks the server to email a fresh verification code.
func (c *Client) SendCode(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/user/send-code", body, nil)
}

// VerifyCode confirms the emailed verification code and activates the
// account.
func (c *Client) VerifyCode(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/user/verify-code", body, nil)
}
