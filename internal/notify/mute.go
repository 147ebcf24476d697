package notify

import (
	"sync"

	"github.com/gobwas/glob"
)

// MuteList matches channel names against user-configured glob patterns.
// Muted channels still accumulate feed entries but never fire ambient
// alerts. Safe for concurrent use; patterns can be swapped at runtime when
// the config file changes.
type MuteList struct {
	mu       sync.RWMutex
	matchers []glob.Glob
}

// NewMuteList compiles the given patterns. Patterns that fail to compile
// are skipped.
func NewMuteList(patterns []string) *MuteList {
	m := &MuteList{}
	m.SetPatterns(patterns)
	return m
}

// SetPatterns replaces the pattern set.
func (m *MuteList) SetPatterns(patterns []string) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		matcher, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		matchers = append(matchers, matcher)
	}
	m.mu.Lock()
	m.matchers = matchers
	m.mu.Unlock()
}

// Muted reports whether a channel name matches any mute pattern.
func (m *MuteList) Muted(channelName string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, matcher := range m.matchers {
		if matcher.Match(channelName) {
			return true
		}
	}
	return false
}
