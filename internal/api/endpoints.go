package api

import (
	"context"

	"github.com/stackit/stackit-tui/internal/model"
)

// Endpoint paths.
const (
	NotificationsPath = "/api/notifications/me"
	SignupPath        = "/api/signup"
)

// notificationsResponse is the body returned by NotificationsPath.
type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

// MyNotifications returns the current user's notifications. A missing or
// null list is returned as an empty slice.
func (c *Client) MyNotifications(ctx context.Context) ([]model.Notification, error) {
	var resp notificationsResponse
	if err := c.Get(ctx, NotificationsPath, &resp); err != nil {
		return nil, err
	}
	if resp.Notifications == nil {
		return []model.Notification{}, nil
	}
	return resp.Notifications, nil
}

// Signup posts the form to the signup endpoint. Any 2xx response is
// success; the response body, if any, is ignored.
func (c *Client) Signup(ctx context.Context, form model.SignupForm) error {
	return c.Post(ctx, SignupPath, form, nil)
}
