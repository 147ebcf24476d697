package types

import (
	"strconv"
	"strings"
	"time"
)

// MessageType distinguishes plain text messages from image posts.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// NotificationType categorizes entries in the notification feed.
type NotificationType string

const (
	NotificationChatMessage    NotificationType = "CHAT_MESSAGE"
	NotificationMention        NotificationType = "MENTION"
	NotificationSystem         NotificationType = "SYSTEM"
	NotificationChannelCreated NotificationType = "CHANNEL_CREATED"
	NotificationChannelDeleted NotificationType = "CHANNEL_DELETED"
)

// Author is the denormalized sender snapshot carried on every message.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Channel is a named message stream.
type Channel struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IsPrivate   bool   `json:"isPrivate"`
	MemberCount int    `json:"memberCount"`
}

// Message is a single chat message. Until the server confirms a send, ID
// holds a client-generated temporary id (see NewTempID).
type Message struct {
	ID          string      `json:"id"`
	Content     string      `json:"content"`
	ChannelID   string      `json:"channelId"`
	Author      Author      `json:"author"`
	CreatedAt   time.Time   `json:"createdAt"`
	MessageType MessageType `json:"messageType"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	IsEdited    bool        `json:"isEdited,omitempty"`
}

const tempIDPrefix = "temp-"

// NewTempID returns a client-side message id used until server confirmation.
func NewTempID(now time.Time) string {
	return tempIDPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsTempID reports whether an id is a client-generated temporary id. The
// server never issues ids with this prefix, so temporary entries cannot
// collide with sync results.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// Notification is one entry in the user's notification feed.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Content   string           `json:"content"`
	IsRead    bool             `json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
	UserID    string           `json:"userId"`
}
