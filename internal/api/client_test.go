package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"huddle/internal/types"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL, "tok-1", "client-1")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, server
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://chat.example.com/", "https://chat.example.com", false},
		{"  https://chat.example.com  ", "https://chat.example.com", false},
		{"chat.example.com", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeBaseURL(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeBaseURL(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeBaseURL(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMessagesQueryAndHeaders(t *testing.T) {
	var gotPath, gotAfter, gotAuth, gotClient string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAfter = r.URL.Query().Get("after")
		gotAuth = r.Header.Get("Authorization")
		gotClient = r.Header.Get("X-Client-ID")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []types.Message{{ID: "1", ChannelID: r.URL.Query().Get("channelId")}},
		})
	}))

	after := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	messages, err := client.Messages(context.Background(), "c-1", after)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(messages) != 1 || messages[0].ChannelID != "c-1" {
		t.Fatalf("unexpected messages: %+v", messages)
	}
	if gotPath != "/chat/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAfter != "2026-03-01T12:00:00Z" {
		t.Errorf("after = %q", gotAfter)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotClient != "client-1" {
		t.Errorf("client id = %q", gotClient)
	}
}

func TestMessagesFullFetchOmitsAfter(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("after") {
			t.Error("full fetch must not send after")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []types.Message{}})
	}))
	if _, err := client.Messages(context.Background(), "c-1", time.Time{}); err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/messages" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(types.Message{
			ID:          "42",
			Content:     req.Content,
			ChannelID:   req.ChannelID,
			MessageType: req.MessageType,
		})
	}))

	confirmed, err := client.SendMessage(context.Background(), SendMessageRequest{
		Content:     "hello",
		ChannelID:   "c-1",
		MessageType: types.MessageTypeText,
	})
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if confirmed.ID != "42" || confirmed.Content != "hello" {
		t.Errorf("unexpected response: %+v", confirmed)
	}
}

func TestAPIErrorDecoding(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden","message":"admin only"}`))
	}))

	_, err := client.CreateChannel(context.Background(), "secret", true)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Code != "forbidden" || apiErr.Message != "admin only" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
}

func TestAPIErrorPlainBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))

	err := client.DeleteChannel(context.Background(), "c-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestNotificationMutations(t *testing.T) {
	var calls []string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.RequestURI())
		w.WriteHeader(http.StatusOK)
	}))
	ctx := context.Background()

	if err := client.MarkNotificationRead(ctx, "n-1"); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	if err := client.MarkAllNotificationsRead(ctx); err != nil {
		t.Fatalf("MarkAllNotificationsRead failed: %v", err)
	}
	if err := client.DeleteNotification(ctx, "n-2"); err != nil {
		t.Fatalf("DeleteNotification failed: %v", err)
	}

	want := []string{
		"PATCH /notifications",
		"POST /notifications/mark-all-read",
		"DELETE /notifications?id=n-2",
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestUploadImage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/upload" {
			t.Errorf("path = %q", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		defer file.Close()
		if header.Filename != "cat.png" {
			t.Errorf("filename = %q", header.Filename)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"filePath": "/uploads/cat.png"})
	}))

	path, err := client.UploadImage(context.Background(), "cat.png", strings.NewReader("pngbytes"))
	if err != nil {
		t.Fatalf("UploadImage failed: %v", err)
	}
	if path != "/uploads/cat.png" {
		t.Errorf("path = %q", path)
	}
}

func TestUploadImageMissingPath(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	if _, err := client.UploadImage(context.Background(), "cat.png", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for missing filePath")
	}
}
