// Package chatsync implements the channel/message synchronization engine:
// it owns the channel list, the active channel, and the ordered message
// list for one session, keeps them consistent with the backend through
// periodic polling, and applies optimistic updates for user sends.
package chatsync

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"huddle/internal/api"
	"huddle/internal/notify"
	"huddle/internal/types"
)

// DefaultPollInterval is the incremental sync cadence.
const DefaultPollInterval = 10 * time.Second

// API is the chat slice of the backend contract.
type API interface {
	Channels(ctx context.Context) ([]types.Channel, error)
	CreateChannel(ctx context.Context, name string, isPrivate bool) (types.Channel, error)
	DeleteChannel(ctx context.Context, channelID string) error
	Messages(ctx context.Context, channelID string, after time.Time) ([]types.Message, error)
	SendMessage(ctx context.Context, req api.SendMessageRequest) (types.Message, error)
	EditMessage(ctx context.Context, messageID, content string) (types.Message, error)
	UploadImage(ctx context.Context, filename string, file io.Reader) (string, error)
}

// Store persists seen message ids and read watermarks across sessions so a
// restart does not re-notify for already-delivered messages.
type Store interface {
	SeenIDs(channelID string) (map[string]struct{}, error)
	MarkSeen(channelID string, ids []string) error
	SetReadTo(channelID string, ts time.Time) error
	ReadTo(channelID string) (time.Time, error)
}

// Config wires an Engine's collaborators. API and User are required; the
// rest may be zero for a headless or in-memory session.
type Config struct {
	API          API
	User         types.Author
	Dispatcher   *notify.Dispatcher
	Alerter      notify.Alerter
	Mutes        *notify.MuteList
	Store        Store
	Logger       *log.Logger
	PollInterval time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine is the synchronizer. All exported methods are safe for concurrent
// use; the background poll loop and user-initiated operations interleave
// against the same state under one mutex.
type Engine struct {
	api          API
	user         types.Author
	dispatcher   *notify.Dispatcher
	alerter      notify.Alerter
	mutes        *notify.MuteList
	store        Store
	logger       *log.Logger
	pollInterval time.Duration
	now          func() time.Time

	mu        sync.Mutex
	channels  []types.Channel
	active    *types.Channel
	messages  []types.Message
	loading   bool
	lastErr   string
	seen      map[string]struct{}
	watermark time.Time
	lastRead  time.Time
	focused   bool

	// selectGen increments on every channel selection; fetches started
	// under an older generation discard their results instead of clobbering
	// the newer channel's state.
	selectGen   int
	cancelFetch context.CancelFunc

	subs []func()
}

// New constructs an Engine.
func New(cfg Config) *Engine {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	clock := cfg.Now
	if clock == nil {
		clock = time.Now
	}
	return &Engine{
		api:          cfg.API,
		user:         cfg.User,
		dispatcher:   cfg.Dispatcher,
		alerter:      cfg.Alerter,
		mutes:        cfg.Mutes,
		store:        cfg.Store,
		logger:       cfg.Logger,
		pollInterval: interval,
		now:          clock,
		seen:         make(map[string]struct{}),
		focused:      true,
	}
}

// Snapshot is a point-in-time copy of the engine's exposed state.
type Snapshot struct {
	Channels []types.Channel
	Active   *types.Channel
	Messages []types.Message
	Loading  bool
	Err      string
	Focused  bool

	// LastRead is the active channel's read watermark from the previous
	// session, loaded at selection time. Messages after it are "new since
	// last visit".
	LastRead time.Time
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{
		Channels: make([]types.Channel, len(e.channels)),
		Messages: make([]types.Message, len(e.messages)),
		Loading:  e.loading,
		Err:      e.lastErr,
		Focused:  e.focused,
		LastRead: e.lastRead,
	}
	copy(snap.Channels, e.channels)
	copy(snap.Messages, e.messages)
	if e.active != nil {
		active := *e.active
		snap.Active = &active
	}
	return snap
}

// Subscribe registers a callback invoked after every state change. The
// callback runs outside the engine's lock and must not block.
func (e *Engine) Subscribe(fn func()) {
	e.mu.Lock()
	e.subs = append(e.subs, fn)
	e.mu.Unlock()
}

// SetFocused records whether the user's window currently has focus. Ambient
// alerts are suppressed while focused on the message's channel.
func (e *Engine) SetFocused(focused bool) {
	e.mu.Lock()
	e.focused = focused
	e.mu.Unlock()
}

// User returns the session user this engine notifies on behalf of.
func (e *Engine) User() types.Author {
	return e.user
}

func (e *Engine) publish() {
	e.mu.Lock()
	subs := make([]func(), len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (e *Engine) setErr(err error) {
	e.mu.Lock()
	e.lastErr = err.Error()
	e.mu.Unlock()
	e.publish()
	e.logf("%v", err)
}

func (e *Engine) logf(format string, args ...any) {
	if e.logger == nil {
		return
	}
	e.logger.Printf(format, args...)
}

func (e *Engine) persistSeen(channelID string, ids []string, readTo time.Time) {
	if e.store == nil || len(ids) == 0 {
		return
	}
	if err := e.store.MarkSeen(channelID, ids); err != nil {
		e.logf("persist seen ids: %v", err)
	}
	if readTo.IsZero() {
		return
	}
	if err := e.store.SetReadTo(channelID, readTo); err != nil {
		e.logf("persist read watermark: %v", err)
	}
}
