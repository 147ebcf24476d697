package chatsync

import (
	"context"
	"io"
	"sort"
	"strings"

	"huddle/internal/api"
	"huddle/internal/types"
)

// ImageUpload describes an image attachment for SendMessage.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

// SendMessage posts a message to the active channel with optimistic local
// state: a temporary entry appears immediately and is replaced by the
// server-confirmed record on success, or removed entirely on failure. A
// blank message with no image is a deliberate no-op. If an image is
// attached it is uploaded first; an upload failure aborts the send before
// any message is created.
func (e *Engine) SendMessage(ctx context.Context, content string, image *ImageUpload) error {
	e.mu.Lock()
	if e.active == nil {
		e.mu.Unlock()
		return nil
	}
	channel := *e.active
	e.mu.Unlock()

	if strings.TrimSpace(content) == "" && image == nil {
		return nil
	}

	imageURL := ""
	messageType := types.MessageTypeText
	if image != nil {
		path, err := e.api.UploadImage(ctx, image.Filename, image.Reader)
		if err != nil {
			e.setErr(err)
			return err
		}
		imageURL = path
		messageType = types.MessageTypeImage
	}

	now := e.now()
	temp := types.Message{
		ID:          types.NewTempID(now),
		Content:     content,
		ChannelID:   channel.ID,
		Author:      e.user,
		CreatedAt:   now,
		MessageType: messageType,
		ImageURL:    imageURL,
	}

	e.mu.Lock()
	gen := e.selectGen
	e.messages = append(e.messages, temp)
	sortByCreatedAt(e.messages)
	e.mu.Unlock()
	e.publish()

	confirmed, err := e.api.SendMessage(ctx, api.SendMessageRequest{
		Content:     content,
		ChannelID:   channel.ID,
		ImageURL:    imageURL,
		MessageType: messageType,
	})

	e.mu.Lock()
	if gen != e.selectGen {
		// The user switched channels while the send was in flight. The
		// optimistic entry went away with the old channel's list and the
		// confirmed record belongs to that channel, not the current one.
		// The dedup set still learns the id so switching back does not
		// re-notify for the user's own message.
		if err == nil {
			e.seen[confirmed.ID] = struct{}{}
		}
		e.mu.Unlock()
		if err != nil {
			e.logf("send to %s: %v", channel.Name, err)
			return err
		}
		e.persistSeen(channel.ID, []string{confirmed.ID}, confirmed.CreatedAt)
		return nil
	}
	e.removeMessageLocked(temp.ID)
	if err != nil {
		// Rollback: no ghost entry survives a failed send.
		e.lastErr = err.Error()
		e.mu.Unlock()
		e.publish()
		e.logf("send to %s: %v", channel.Name, err)
		return err
	}
	e.lastErr = ""
	e.seen[confirmed.ID] = struct{}{}
	e.messages = append(e.messages, confirmed)
	sortByCreatedAt(e.messages)
	e.mu.Unlock()
	e.publish()

	e.persistSeen(channel.ID, []string{confirmed.ID}, confirmed.CreatedAt)
	return nil
}

// EditMessage updates a message body. There is no optimistic edit: on
// failure the pre-edit content stays visible and only the error state is
// set. On success the server's record (carrying isEdited) replaces the
// local entry in place.
func (e *Engine) EditMessage(ctx context.Context, messageID, content string) error {
	updated, err := e.api.EditMessage(ctx, messageID, content)
	if err != nil {
		e.setErr(err)
		return err
	}

	e.mu.Lock()
	for i := range e.messages {
		if e.messages[i].ID == messageID {
			e.messages[i] = updated
			break
		}
	}
	e.lastErr = ""
	e.mu.Unlock()
	e.publish()
	return nil
}

func (e *Engine) removeMessageLocked(id string) {
	kept := e.messages[:0]
	for _, msg := range e.messages {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	e.messages = kept
}

// sortByCreatedAt re-derives the ordering invariant after every mutation:
// ascending createdAt, insertion order preserved on ties.
func sortByCreatedAt(messages []types.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}
