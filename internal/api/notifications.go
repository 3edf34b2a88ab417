package api

import (
	"context"
	"fmt"
	"net/http"

	"connectwork/internal/models"
)

// Notifications fetches the full notification list for userID. The server
// returns {"notifications": [...]}.
func (c *Client) Notifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	var out struct {
		Notifications []models.Notification `json:"notifications"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/user/notifications/%d", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Notifications, nil
}

// MarkNotificationRead flips one notification's read flag server-side.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/user/notifications/%d/read", id), nil, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/notifications/%d", id), nil, nil)
}

// DeleteAllNotifications removes every notification for userID.
func (c *Client) DeleteAllNotifications(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/user/notifications/user/%d", userID), nil, nil)
}
