// Package notify keeps a local cache of the user's notifications and their
// aggregate counts, synchronized against the server on demand.
package notify

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"connectwork/internal/models"
)

// Counts is the derived aggregate over the cached list. It is recomputed
// from the list after every mutation, never adjusted independently, so it
// cannot drift from the list under overlapping operations.
type Counts struct {
	Total  int
	Unread int
}

// NotificationAPI is the server surface the center calls. Satisfied by
// *api.Client.
type NotificationAPI interface {
	Notifications(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) error
	DeleteNotification(ctx context.Context, id int64) error
	DeleteAllNotifications(ctx context.Context, userID int64) error
}

// UserSource tells the center whose notifications to fetch. Satisfied by
// *session.Manager.
type UserSource interface {
	Current() (models.User, bool)
}

// Center is the notification state container.
type Center struct {
	api     NotificationAPI
	session UserSource
	logger  *slog.Logger

	mu     sync.Mutex
	items  []models.Notification
	counts Counts
}

// NewCenter creates a Center.
func NewCenter(api NotificationAPI, session UserSource, logger *slog.Logger) *Center {
	if logger == nil {
		logger = slog.Default()
	}
	return &Center{api: api, session: session, logger: logger}
}

// Fetch replaces the cached list with the server's and recomputes counts.
// Without an authenticated user it is a no-op: no network call, no mutation,
// nil error. On failure the previous cache stays intact (stale but
// consistent) and the error is logged and returned.
func (c *Center) Fetch(ctx context.Context) error {
	user, ok := c.session.Current()
	if !ok || user.ID == 0 {
		return nil
	}

	items, err := c.api.Notifications(ctx, user.ID)
	if err != nil {
		c.logger.Warn("fetch notifications failed", "user_id", user.ID, "err", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.recount()
	return nil
}

// MarkRead optimistically flips the local item's read flag, then confirms
// with the server, rolling back on failure.
func (c *Center) MarkRead(ctx context.Context, id int64) error {
	return c.optimistic(
		func() {
			for i := range c.items {
				if c.items[i].ID == id {
					c.items[i].Read = true
				}
			}
		},
		func() error { return c.api.MarkNotificationRead(ctx, id) },
	)
}

// Delete optimistically removes one notification, rolling back on failure.
func (c *Center) Delete(ctx context.Context, id int64) error {
	return c.optimistic(
		func() {
			c.items = slices.DeleteFunc(c.items, func(n models.Notification) bool {
				return n.ID == id
			})
		},
		func() error { return c.api.DeleteNotification(ctx, id) },
	)
}

// DeleteAll optimistically clears the list, rolling back on failure.
func (c *Center) DeleteAll(ctx context.Context) error {
	user, ok := c.session.Current()
	if !ok || user.ID == 0 {
		return nil
	}
	return c.optimistic(
		func() { c.items = nil },
		func() error { return c.api.DeleteAllNotifications(ctx, user.ID) },
	)
}

// optimistic runs the three-phase pattern: snapshot, apply speculatively,
// confirm with the server, restore the snapshot on rejection. Counts are
// recomputed on both the apply and the rollback.
func (c *Center) optimistic(apply func(), call func() error) error {
	c.mu.Lock()
	snapshot := slices.Clone(c.items)
	prev := c.counts
	apply()
	c.recount()
	c.mu.Unlock()

	if err := call(); err != nil {
		c.mu.Lock()
		c.items = snapshot
		c.counts = prev
		c.mu.Unlock()
		c.logger.Warn("notification update rolled back", "err", err)
		return err
	}
	return nil
}

// recount derives counts from the list. Callers hold the mutex.
func (c *Center) recount() {
	counts := Counts{Total: len(c.items)}
	for _, n := range c.items {
		if !n.Read {
			counts.Unread++
		}
	}
	c.counts = counts
}

// Counts returns the current aggregates.
func (c *Center) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}

// Items returns a copy of the cached list in fetch order. The container does
// not guarantee sort order; presentation uses Sorted.
func (c *Center) Items() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Sorted returns a copy of the cached list, most recent first.
func (c *Center) Sorted() []models.Notification {
	items := c.Items()
	slices.SortStableFunc(items, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return items
}
