// Package api implements the HTTP client for the community backend's chat
// and notification contract.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"huddle/internal/types"
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("api error: %s (%d): %s", e.Code, e.Status, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("api error: %s (%d)", e.Code, e.Status)
	}
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

type apiErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Client talks to the backend chat API.
type Client struct {
	baseURL    string
	token      string
	clientID   string
	httpClient *http.Client
}

// NewClient constructs a backend API client. clientID identifies this
// installation and is sent on every request.
func NewClient(baseURL, token, clientID string) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:  normalized,
		token:    token,
		clientID: clientID,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}, nil
}

// NormalizeBaseURL normalizes a backend base URL and ensures it has a scheme.
func NormalizeBaseURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", fmt.Errorf("server url cannot be empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	if parsed.Scheme == "" {
		return "", fmt.Errorf("server url must include scheme (https://)")
	}
	value = strings.TrimRight(value, "/")
	return value, nil
}

// Channels lists all channels visible to the session.
func (c *Client) Channels(ctx context.Context) ([]types.Channel, error) {
	var resp []types.Channel
	if err := c.doJSON(ctx, http.MethodGet, "/chat/channels", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateChannel creates a channel and returns the server record.
func (c *Client) CreateChannel(ctx context.Context, name string, isPrivate bool) (types.Channel, error) {
	req := struct {
		Name      string `json:"name"`
		IsPrivate bool   `json:"isPrivate"`
	}{Name: name, IsPrivate: isPrivate}
	var resp types.Channel
	if err := c.doJSON(ctx, http.MethodPost, "/chat/channels", nil, req, &resp); err != nil {
		return types.Channel{}, err
	}
	return resp, nil
}

// DeleteChannel deletes a channel. Message cleanup cascades server-side.
func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/chat/channels/"+url.PathEscape(channelID), nil, nil, nil)
}

type messagesResponse struct {
	Items []types.Message `json:"items"`
}

// Messages fetches messages for a channel. A zero after requests the full
// history; otherwise only messages created after the watermark are returned.
func (c *Client) Messages(ctx context.Context, channelID string, after time.Time) ([]types.Message, error) {
	query := url.Values{}
	query.Set("channelId", channelID)
	if !after.IsZero() {
		query.Set("after", after.UTC().Format(time.RFC3339Nano))
	}
	var resp messagesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/chat/messages", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// SendMessageRequest describes a message send.
type SendMessageRequest struct {
	Content     string            `json:"content"`
	ChannelID   string            `json:"channelId"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	MessageType types.MessageType `json:"messageType"`
}

// SendMessage posts a message and returns the server-confirmed record.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (types.Message, error) {
	var resp types.Message
	if err := c.doJSON(ctx, http.MethodPost, "/chat/messages", nil, req, &resp); err != nil {
		return types.Message{}, err
	}
	return resp, nil
}

// EditMessage updates a message body and returns the updated record.
func (c *Client) EditMessage(ctx context.Context, messageID, content string) (types.Message, error) {
	req := struct {
		Content string `json:"content"`
	}{Content: content}
	var resp types.Message
	if err := c.doJSON(ctx, http.MethodPatch, "/chat/messages/"+url.PathEscape(messageID), nil, req, &resp); err != nil {
		return types.Message{}, err
	}
	return resp, nil
}

// Notifications lists the session user's notifications, newest first.
func (c *Client) Notifications(ctx context.Context) ([]types.Notification, error) {
	var resp []types.Notification
	if err := c.doJSON(ctx, http.MethodGet, "/notifications", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateNotification persists a notification and returns the server record.
func (c *Client) CreateNotification(ctx context.Context, n types.Notification) (types.Notification, error) {
	req := struct {
		Type    types.NotificationType `json:"type"`
		Content string                 `json:"content"`
		IsRead  bool                   `json:"isRead"`
		UserID  string                 `json:"userId"`
	}{Type: n.Type, Content: n.Content, IsRead: n.IsRead, UserID: n.UserID}
	var resp types.Notification
	if err := c.doJSON(ctx, http.MethodPost, "/notifications", nil, req, &resp); err != nil {
		return types.Notification{}, err
	}
	return resp, nil
}

// MarkNotificationRead marks one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	req := struct {
		ID     string `json:"id"`
		IsRead bool   `json:"isRead"`
	}{ID: id, IsRead: true}
	return c.doJSON(ctx, http.MethodPatch, "/notifications", nil, req, nil)
}

// MarkAllNotificationsRead marks every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/notifications/mark-all-read", nil, nil, nil)
}

// DeleteNotification removes one notification.
func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	query := url.Values{}
	query.Set("id", id)
	return c.doJSON(ctx, http.MethodDelete, "/notifications", query, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, reqBody any, respBody any) error {
	endpoint, err := c.buildURL(path, query)
	if err != nil {
		return err
	}

	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setCommonHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload apiErrorPayload
		if err := json.Unmarshal(respData, &payload); err == nil {
			apiErr.Code = payload.Error
			apiErr.Message = payload.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respData))
		}
		return apiErr
	}

	if respBody == nil || len(respData) == 0 {
		return nil
	}
	return json.Unmarshal(respData, respBody)
}

func (c *Client) setCommonHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}
}

func (c *Client) buildURL(path string, query url.Values) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	endpoint := base.ResolveReference(ref)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String(), nil
}
