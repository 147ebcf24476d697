package notify

import (
	"log"
	"strings"

	"github.com/gen2brain/beeep"
)

const notificationBodyLimit = 100

// Alerter fires ambient alert side effects for an incoming message. These
// are distinct from the persisted feed entry: a suppressed alert still
// leaves a notification in the feed.
type Alerter interface {
	Alert(title, body string)
}

// ShouldAlert implements the ambient alert policy: alert only when the
// window is unfocused or the message belongs to a channel the user is not
// currently looking at.
func ShouldAlert(focused bool, activeChannelID, messageChannelID string) bool {
	if !focused {
		return true
	}
	return messageChannelID != activeChannelID
}

// DesktopAlerter plays a sound cue and raises an OS notification via beeep.
// Either half can be disabled; a denied or unavailable desktop notification
// backend silently no-ops while the sound still plays.
type DesktopAlerter struct {
	Sound   bool
	Desktop bool
	Logger  *log.Logger
}

// Alert fires the configured ambient cues.
func (a *DesktopAlerter) Alert(title, body string) {
	if a.Sound {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			a.logf("beep: %v", err)
		}
	}
	if a.Desktop {
		if err := beeep.Notify(title, TruncateBody(body, notificationBodyLimit), ""); err != nil {
			a.logf("desktop notification: %v", err)
		}
	}
}

func (a *DesktopAlerter) logf(format string, args ...any) {
	if a.Logger == nil {
		return
	}
	a.Logger.Printf(format, args...)
}

// TruncateBody collapses whitespace and truncates a message body for
// display in a notification. Truncation counts runes so a multibyte
// character is never split.
func TruncateBody(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
