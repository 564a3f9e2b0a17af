package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/kendall-kelly/techsupport-client/models"
)

// DefaultNotificationInterval is how often unread notifications are refetched while logged in
const DefaultNotificationInterval = 30 * time.Second

// NotificationPoller mirrors the server's unread notifications.
// Every fetch replaces the whole list; nothing is merged.
type NotificationPoller struct {
	api      *APIClient
	interval time.Duration

	mu            sync.RWMutex
	notifications []models.Notification

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNotificationPoller creates a stopped poller. interval <= 0 uses the default.
func NewNotificationPoller(api *APIClient, interval time.Duration) *NotificationPoller {
	if interval <= 0 {
		interval = DefaultNotificationInterval
	}
	return &NotificationPoller{
		api:           api,
		interval:      interval,
		notifications: []models.Notification{},
	}
}

// FetchNotifications replaces the local list with the server's unread set.
// On failure the last list is kept.
func (p *NotificationPoller) FetchNotifications(ctx context.Context) error {
	var notifications []models.Notification
	query := url.Values{"unread_only": []string{"true"}}
	if err := p.api.Get(ctx, "/notifications", query, &notifications); err != nil {
		slog.Error("failed to fetch notifications", "error", err)
		return err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	p.mu.Lock()
	p.notifications = notifications
	p.mu.Unlock()
	return nil
}

// MarkNotificationRead acknowledges a notification then refetches the list.
// When the acknowledgement fails the list stays as it is until the next poll.
func (p *NotificationPoller) MarkNotificationRead(ctx context.Context, id string) error {
	if err := p.api.Put(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil, nil, nil); err != nil {
		slog.Error("failed to mark notification as read", "notification_id", id, "error", err)
		return fmt.Errorf("failed to mark notification %s as read: %w", id, err)
	}
	// A failed refetch is logged inside and leaves the previous list in place
	_ = p.FetchNotifications(ctx)
	return nil
}

// Notifications returns a copy of the unread list
func (p *NotificationPoller) Notifications() []models.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Notification, len(p.notifications))
	copy(out, p.notifications)
	return out
}

// Clear empties the local list
func (p *NotificationPoller) Clear() {
	p.mu.Lock()
	p.notifications = []models.Notification{}
	p.mu.Unlock()
}

// Start fetches immediately and then on every tick until Stop. Starting twice is a no-op.
func (p *NotificationPoller) Start() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		_ = p.FetchNotifications(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = p.FetchNotifications(ctx)
			}
		}
	}()
}

// Stop cancels the polling loop and waits for it to exit. No fetch starts after Stop returns.
func (p *NotificationPoller) Stop() {
	p.runMu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the polling loop is active
func (p *NotificationPoller) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.cancel != nil
}
