package chatsync

import (
	"context"
	"fmt"
	"time"

	"huddle/internal/types"
)

// Initialize fetches the channel list and, if no channel is selected yet,
// selects the first one. It does not retry on failure; the caller re-triggers.
func (e *Engine) Initialize(ctx context.Context) error {
	channels, err := e.api.Channels(ctx)
	if err != nil {
		e.setErr(err)
		return err
	}

	e.mu.Lock()
	e.channels = channels
	e.lastErr = ""
	var first *types.Channel
	if e.active == nil && len(channels) > 0 {
		first = &channels[0]
	}
	e.mu.Unlock()
	e.publish()

	if first != nil {
		return e.SelectChannel(ctx, *first)
	}
	return nil
}

// SelectChannel makes channel the active one and re-fetches its full
// message history. Switching always resynchronizes from scratch rather than
// trusting stale cached state. Every fetched id is registered in the dedup
// set up front so the initial load never triggers notifications. A fetch
// superseded by a newer selection discards its results.
func (e *Engine) SelectChannel(ctx context.Context, channel types.Channel) error {
	var persisted map[string]struct{}
	var lastRead time.Time
	if e.store != nil {
		var err error
		persisted, err = e.store.SeenIDs(channel.ID)
		if err != nil {
			e.logf("load seen ids: %v", err)
		}
		// Read before this visit's persistSeen advances the watermark, so
		// it marks what was new since the previous session.
		lastRead, err = e.store.ReadTo(channel.ID)
		if err != nil {
			e.logf("load read watermark: %v", err)
		}
	}

	e.mu.Lock()
	e.selectGen++
	gen := e.selectGen
	if e.cancelFetch != nil {
		e.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	e.cancelFetch = cancel
	e.active = &channel
	e.messages = nil
	e.loading = true
	e.lastRead = lastRead
	for id := range persisted {
		e.seen[id] = struct{}{}
	}
	e.mu.Unlock()
	e.publish()

	messages, err := e.api.Messages(fetchCtx, channel.ID, time.Time{})
	now := e.now()

	e.mu.Lock()
	if gen != e.selectGen {
		// A newer selection superseded this fetch.
		e.mu.Unlock()
		return nil
	}
	e.loading = false
	if err != nil {
		e.lastErr = err.Error()
		e.mu.Unlock()
		e.publish()
		e.logf("select %s: %v", channel.Name, err)
		return err
	}
	e.lastErr = ""
	sortByCreatedAt(messages)
	e.messages = messages
	ids := make([]string, 0, len(messages))
	var latest time.Time
	for _, msg := range messages {
		e.seen[msg.ID] = struct{}{}
		ids = append(ids, msg.ID)
		if msg.CreatedAt.After(latest) {
			latest = msg.CreatedAt
		}
	}
	e.watermark = now
	e.mu.Unlock()
	e.publish()

	e.persistSeen(channel.ID, ids, latest)
	return nil
}

// CreateChannel creates a channel, appends it to the list, and switches to
// it. A local SYSTEM notification announces the creation.
func (e *Engine) CreateChannel(ctx context.Context, name string, isPrivate bool) (types.Channel, error) {
	created, err := e.api.CreateChannel(ctx, name, isPrivate)
	if err != nil {
		e.setErr(err)
		return types.Channel{}, err
	}

	e.mu.Lock()
	e.channels = append(e.channels, created)
	e.lastErr = ""
	e.mu.Unlock()
	e.publish()

	if e.dispatcher != nil {
		_ = e.dispatcher.Add(ctx, types.Notification{
			Type:    types.NotificationSystem,
			Content: fmt.Sprintf("Channel #%s was created", created.Name),
			UserID:  e.user.ID,
		})
	}

	if err := e.SelectChannel(ctx, created); err != nil {
		return created, err
	}
	return created, nil
}

// DeleteChannel deletes a channel server-side and removes it locally. If it
// was the active channel, the first remaining channel becomes active, or
// none if the list is empty.
func (e *Engine) DeleteChannel(ctx context.Context, channelID string) error {
	if err := e.api.DeleteChannel(ctx, channelID); err != nil {
		e.setErr(err)
		return err
	}

	e.mu.Lock()
	deletedName := channelID
	kept := make([]types.Channel, 0, len(e.channels))
	for _, ch := range e.channels {
		if ch.ID == channelID {
			deletedName = ch.Name
			continue
		}
		kept = append(kept, ch)
	}
	e.channels = kept
	wasActive := e.active != nil && e.active.ID == channelID
	var next *types.Channel
	if wasActive {
		e.active = nil
		e.messages = nil
		if len(kept) > 0 {
			first := kept[0]
			next = &first
		}
	}
	e.lastErr = ""
	e.mu.Unlock()
	e.publish()

	if e.dispatcher != nil {
		_ = e.dispatcher.Add(ctx, types.Notification{
			Type:    types.NotificationSystem,
			Content: fmt.Sprintf("Channel #%s was deleted", deletedName),
			UserID:  e.user.ID,
		})
	}

	if next != nil {
		return e.SelectChannel(ctx, *next)
	}
	return nil
}
