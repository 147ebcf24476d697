// Package notify owns the in-app notification feed and the ambient alert
// side effects (sound, desktop notification) for incoming messages.
package notify

import (
	"context"
	"log"
	"sync"

	"huddle/internal/types"
)

// API is the notification slice of the backend contract.
type API interface {
	Notifications(ctx context.Context) ([]types.Notification, error)
	CreateNotification(ctx context.Context, n types.Notification) (types.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id string) error
}

// Dispatcher owns the notification list for one session. Entries are kept
// newest first, as the server returns them. All mutations are
// create-then-display: local state changes only after server confirmation,
// so the feed never shows ghost or duplicate entries.
type Dispatcher struct {
	api    API
	logger *log.Logger

	mu    sync.Mutex
	items []types.Notification
	subs  []func()
}

// NewDispatcher constructs a Dispatcher. logger may be nil.
func NewDispatcher(api API, logger *log.Logger) *Dispatcher {
	return &Dispatcher{api: api, logger: logger}
}

// Initialize fetches the existing notification feed.
func (d *Dispatcher) Initialize(ctx context.Context) error {
	items, err := d.api.Notifications(ctx)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.items = items
	d.mu.Unlock()
	d.publish()
	return nil
}

// Subscribe registers a callback invoked after every feed change.
func (d *Dispatcher) Subscribe(fn func()) {
	d.mu.Lock()
	d.subs = append(d.subs, fn)
	d.mu.Unlock()
}

// Notifications returns a copy of the feed, newest first.
func (d *Dispatcher) Notifications() []types.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.Notification, len(d.items))
	copy(out, d.items)
	return out
}

// UnreadCount returns the number of unread entries.
func (d *Dispatcher) UnreadCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, n := range d.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// Add persists a notification server-side, then prepends the confirmed copy.
func (d *Dispatcher) Add(ctx context.Context, n types.Notification) error {
	confirmed, err := d.api.CreateNotification(ctx, n)
	if err != nil {
		d.logf("create notification: %v", err)
		return err
	}
	d.mu.Lock()
	d.items = append([]types.Notification{confirmed}, d.items...)
	d.mu.Unlock()
	d.publish()
	return nil
}

// MarkAsRead marks one notification read. Local state changes only on
// server confirmation.
func (d *Dispatcher) MarkAsRead(ctx context.Context, id string) error {
	if err := d.api.MarkNotificationRead(ctx, id); err != nil {
		d.logf("mark read: %v", err)
		return err
	}
	d.mu.Lock()
	for i := range d.items {
		if d.items[i].ID == id {
			d.items[i].IsRead = true
			break
		}
	}
	d.mu.Unlock()
	d.publish()
	return nil
}

// MarkAllAsRead marks every notification read.
func (d *Dispatcher) MarkAllAsRead(ctx context.Context) error {
	if err := d.api.MarkAllNotificationsRead(ctx); err != nil {
		d.logf("mark all read: %v", err)
		return err
	}
	d.mu.Lock()
	for i := range d.items {
		d.items[i].IsRead = true
	}
	d.mu.Unlock()
	d.publish()
	return nil
}

// Delete removes one notification.
func (d *Dispatcher) Delete(ctx context.Context, id string) error {
	if err := d.api.DeleteNotification(ctx, id); err != nil {
		d.logf("delete notification: %v", err)
		return err
	}
	d.mu.Lock()
	kept := d.items[:0]
	for _, n := range d.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	d.items = kept
	d.mu.Unlock()
	d.publish()
	return nil
}

func (d *Dispatcher) publish() {
	d.mu.Lock()
	subs := make([]func(), len(d.subs))
	copy(subs, d.subs)
	d.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.logger == nil {
		return
	}
	d.logger.Printf(format, args...)
}
