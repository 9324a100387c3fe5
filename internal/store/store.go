package store

import (
	"context"

	"github.com/stackit/stackit-tui/internal/model"
)

// Store defines the local persistence the client needs: small string
// settings (including the session flag) and a cache of the signed-in
// user's notifications with their locally recorded read marks.
type Store interface {
	// === Settings ===

	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	// === Notifications ===

	ReplaceNotifications(ctx context.Context, items []model.Notification) error
	GetNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationsRead(ctx context.Context, ids []string) error
	GetReadNotificationIDs(ctx context.Context) (map[string]bool, error)
	ClearNotifications(ctx context.Context) error
}
