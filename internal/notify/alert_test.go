package notify

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestShouldAlert(t *testing.T) {
	tests := []struct {
		name       string
		focused    bool
		active     string
		msgChannel string
		want       bool
	}{
		{"focused on same channel", true, "general", "general", false},
		{"focused on other channel", true, "general", "random", true},
		{"unfocused same channel", false, "general", "general", true},
		{"unfocused other channel", false, "general", "random", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldAlert(tt.focused, tt.active, tt.msgChannel)
			if got != tt.want {
				t.Errorf("ShouldAlert(%v, %q, %q) = %v, want %v", tt.focused, tt.active, tt.msgChannel, got, tt.want)
			}
		})
	}
}

func TestTruncateBody(t *testing.T) {
	if got := TruncateBody("hello   world\n\tagain", 100); got != "hello world again" {
		t.Errorf("whitespace collapse: got %q", got)
	}

	long := strings.Repeat("a", 150)
	got := TruncateBody(long, 100)
	if len(got) > 100+len("…") {
		t.Errorf("expected truncation, got %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}

	wide := strings.Repeat("á", 150)
	got = TruncateBody(wide, 100)
	if !utf8.ValidString(got) {
		t.Errorf("truncation split a rune: %q", got)
	}
	if n := len([]rune(got)); n != 100 {
		t.Errorf("expected 100 runes including the ellipsis, got %d", n)
	}
}

func TestMuteList(t *testing.T) {
	m := NewMuteList([]string{"bots-*", "random"})

	if !m.Muted("bots-ci") {
		t.Error("expected bots-ci muted")
	}
	if !m.Muted("random") {
		t.Error("expected random muted")
	}
	if m.Muted("general") {
		t.Error("did not expect general muted")
	}

	m.SetPatterns(nil)
	if m.Muted("random") {
		t.Error("expected no mutes after reset")
	}
}

func TestMuteListSkipsBadPatterns(t *testing.T) {
	m := NewMuteList([]string{"[", "general"})
	if !m.Muted("general") {
		t.Error("valid pattern should survive a bad one")
	}
}
