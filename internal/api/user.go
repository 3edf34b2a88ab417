package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User fetches the profile snapshot for id as a raw JSON object, preserving
// fields added server-side after this client was built.
func (c *Client) User(ctx context.Context, id int64) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/user/users/%d", id), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateProfile patches profile fields for id and returns the updated
// snapshot.
func (c *Client) UpdateProfile(ctx context.Context, id int64, patch map[string]any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/user/users/%d", id), patch, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
