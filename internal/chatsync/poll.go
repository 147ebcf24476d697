package chatsync

import (
	"context"
	"fmt"
	"time"

	"huddle/internal/mention"
	"huddle/internal/notify"
	"huddle/internal/types"
)

// SyncOnce fetches messages created after the last successful sync for the
// active channel and merges the genuinely new ones. The dedup set makes
// repeated delivery a no-op; the watermark advances only on a successful
// response (including an empty one), so a failed cycle retries the same
// window on the next tick.
func (e *Engine) SyncOnce(ctx context.Context) error {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return nil
	}
	channel := *e.active
	after := e.watermark
	gen := e.selectGen
	e.mu.Unlock()

	incoming, err := e.api.Messages(ctx, channel.ID, after)
	if err != nil {
		e.logf("sync %s: %v", channel.Name, err)
		return err
	}
	now := e.now()

	e.mu.Lock()
	if gen != e.selectGen {
		// The user switched channels while this fetch was in flight.
		e.mu.Unlock()
		return nil
	}
	e.watermark = now
	fresh := make([]types.Message, 0, len(incoming))
	for _, msg := range incoming {
		if _, ok := e.seen[msg.ID]; ok {
			continue
		}
		e.seen[msg.ID] = struct{}{}
		fresh = append(fresh, msg)
	}
	if len(fresh) == 0 {
		e.mu.Unlock()
		return nil
	}
	e.messages = append(e.messages, fresh...)
	sortByCreatedAt(e.messages)
	focused := e.focused
	e.mu.Unlock()
	e.publish()

	ids := make([]string, 0, len(fresh))
	var latest time.Time
	for _, msg := range fresh {
		ids = append(ids, msg.ID)
		if msg.CreatedAt.After(latest) {
			latest = msg.CreatedAt
		}
	}
	e.persistSeen(channel.ID, ids, latest)

	for _, msg := range fresh {
		if msg.Author.ID == e.user.ID {
			continue
		}
		e.fanout(ctx, msg, channel, focused)
	}
	return nil
}

// Run polls on a fixed interval until the context is canceled. Sync
// failures are logged and retried on the next tick rather than stopping
// the loop.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		// Errors are already logged inside SyncOnce; the next tick retries.
		_ = e.SyncOnce(ctx)
	}
}

// fanout creates feed entries and evaluates ambient alerts for one newly
// observed foreign message.
func (e *Engine) fanout(ctx context.Context, msg types.Message, channel types.Channel, focused bool) {
	body := msg.Content
	if body == "" && msg.MessageType == types.MessageTypeImage {
		body = "sent an image"
	}

	if e.dispatcher != nil {
		_ = e.dispatcher.Add(ctx, types.Notification{
			Type:    types.NotificationChatMessage,
			Content: fmt.Sprintf("New message from %s in #%s: %s", msg.Author.Name, channel.Name, notify.TruncateBody(body, 100)),
			UserID:  e.user.ID,
		})
		if mention.Matches(msg.Content, e.user.Name) {
			_ = e.dispatcher.Add(ctx, types.Notification{
				Type:    types.NotificationMention,
				Content: fmt.Sprintf("%s mentioned you in #%s", msg.Author.Name, channel.Name),
				UserID:  e.user.ID,
			})
		}
	}

	if e.alerter == nil {
		return
	}
	if e.mutes != nil && e.mutes.Muted(channel.Name) {
		return
	}
	if !notify.ShouldAlert(focused, channel.ID, msg.ChannelID) {
		return
	}
	e.alerter.Alert(fmt.Sprintf("%s in #%s", msg.Author.Name, channel.Name), body)
}
