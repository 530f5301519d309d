package manager

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"GGPoker/internal/game/dispatcher"
	"GGPoker/internal/game/store"
	"GGPoker/internal/game/table"
	"GGPoker/internal/session"
	"GGPoker/internal/websocket"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

const maxNotices = 50

var ErrClosed = errors.New("client closed")

type Config struct {
	BaseURL     string
	AuthPath    string
	RealtimeURL string
	SessionKey  string
	HTTPTimeout time.Duration
	LogSize     int
	Backoff     websocket.Backoff
	PingPeriod  time.Duration
	Logger      *log.Logger

	// OnNotice receives every user-facing message.
	OnNotice func(Notice)
	// OnSnapshot is called from the channel goroutine after each snapshot
	// has been stored.
	OnSnapshot func(table.Snapshot)
}

// Notice is a message meant for the person at the table.
type Notice struct {
	ID    string    `json:"id"`
	Level string    `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Manager is the client context: it owns the session, the realtime channel,
// the state store and the dispatcher for one UI session.
type Manager struct {
	Session    *session.Manager
	Store      *store.Store
	Channel    *websocket.Channel
	Dispatcher *dispatcher.Dispatcher

	cfg Config
	log *log.Logger

	mu      sync.Mutex
	notices []Notice
	closed  bool
}

func New(tokens session.TokenStore, cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 10 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	m := &Manager{cfg: cfg, log: cfg.Logger.With("component", "manager")}
	m.Session = session.NewManager(tokens, session.Options{
		ValidateURL: cfg.BaseURL + cfg.AuthPath,
		Key:         cfg.SessionKey,
		HTTPClient:  httpClient,
		Logger:      cfg.Logger,
	})
	m.Store = store.New(cfg.LogSize)
	m.Dispatcher = dispatcher.New(m.Session, dispatcher.Options{
		BaseURL:    cfg.BaseURL,
		HTTPClient: httpClient,
		Logger:     cfg.Logger,
	})
	m.Channel = websocket.NewChannel(cfg.RealtimeURL, sink{m}, websocket.Options{
		Header:     m.channelHeader,
		Backoff:    cfg.Backoff,
		PingPeriod: cfg.PingPeriod,
		OnStatus:   m.onStatus,
		Logger:     cfg.Logger,
	})
	return m
}

// Open restores a persisted session, if any, and connects the realtime
// channel. The channel lives until Close or until ctx is cancelled.
func (m *Manager) Open(ctx context.Context) error {
	s, ok, err := m.Session.Restore(ctx)
	switch {
	case err != nil:
		m.notify("error", fmt.Sprintf("Could not restore session: %v", err))
	case ok && s.PlayerID == "":
		m.notify("error", "Session restored, but your player id is unknown: authenticate again to take a seat")
	case ok:
		m.notify("info", "Session restored")
	}
	m.Channel.Start(ctx)
	return nil
}

// Close tears down the channel and freezes the store. Safe to call twice.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	err := m.Channel.Close()
	m.Store.Close()
	return err
}

func (m *Manager) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Manager) Authenticate(ctx context.Context, token string) (session.Session, error) {
	s, err := m.Session.Authenticate(ctx, token)
	if err != nil {
		m.notify("error", authNotice(err))
		return s, err
	}
	m.notify("info", "Connected as "+s.PlayerID)
	return s, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	if err := m.Session.Logout(ctx); err != nil {
		m.notify("error", fmt.Sprintf("Logout: %v", err))
		return err
	}
	return nil
}

// Act validates and dispatches one user intent against the current snapshot.
func (m *Manager) Act(ctx context.Context, req dispatcher.Request) (dispatcher.Request, error) {
	if m.isClosed() {
		return dispatcher.Request{}, ErrClosed
	}
	sess, _ := m.Session.Current()
	var snap *table.Snapshot
	if s, ok := m.Store.Current(); ok {
		snap = &s
	}

	sent, err := m.Dispatcher.Dispatch(ctx, req, snap, sess.PlayerID)
	if err != nil {
		m.notify("error", actionNotice(req.Action, err))
		return sent, err
	}
	return sent, nil
}

// View is everything a table view renders, computed fresh on each call.
type View struct {
	Status        string            `json:"status"`
	Connected     bool              `json:"connected"`
	Authenticated bool              `json:"authenticated"`
	PlayerID      string            `json:"playerId"`
	Snapshot      *table.Snapshot   `json:"gameState,omitempty"`
	Facts         *dispatcher.Facts `json:"facts,omitempty"`
	GameLog       []string          `json:"gameLog,omitempty"`
}

func (m *Manager) View() View {
	status := m.Channel.Status()
	sess, _ := m.Session.Current()
	v := View{
		Status:        status.String(),
		Connected:     status == websocket.Connected,
		Authenticated: sess.Authenticated,
		PlayerID:      sess.PlayerID,
	}
	if snap, ok := m.Store.Current(); ok {
		f := dispatcher.Derive(snap, sess.PlayerID)
		v.Snapshot = &snap
		v.Facts = &f
		v.GameLog = snap.GameLog()
	}
	return v
}

func (m *Manager) Notices() []Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notice(nil), m.notices...)
}

func (m *Manager) notify(level, text string) {
	n := Notice{ID: uuid.NewString(), Level: level, Text: text, At: time.Now()}
	m.mu.Lock()
	m.notices = append(m.notices, n)
	if len(m.notices) > maxNotices {
		m.notices = m.notices[len(m.notices)-maxNotices:]
	}
	m.mu.Unlock()

	if level == "error" {
		m.log.Warn(text)
	} else {
		m.log.Info(text)
	}
	if m.cfg.OnNotice != nil {
		m.cfg.OnNotice(n)
	}
}

func (m *Manager) channelHeader() http.Header {
	h, err := m.Session.AuthorizationHeaderValue()
	if err != nil {
		return nil
	}
	return http.Header{"Authorization": []string{h}}
}

func (m *Manager) onStatus(s websocket.Status, err error) {
	if err != nil && errors.Is(err, websocket.ErrConnectionLost) && !m.isClosed() {
		m.notify("error", "Connection to the table lost")
	}
}

func authNotice(err error) string {
	if errors.Is(err, session.ErrAuthenticationFailed) {
		return fmt.Sprintf("Could not connect your account: %v", err)
	}
	return fmt.Sprintf("Authentication error: %v", err)
}

func actionNotice(a dispatcher.Action, err error) string {
	if errors.Is(err, session.ErrNotAuthenticated) {
		return "Please authenticate first"
	}
	return fmt.Sprintf("Failed to %s: %v", a, err)
}

// sink feeds the store and then tells the observer.
type sink struct {
	m *Manager
}

func (s sink) Replace(snap table.Snapshot) {
	s.m.Store.Replace(snap)
	if s.m.cfg.OnSnapshot != nil && !s.m.isClosed() {
		s.m.cfg.OnSnapshot(snap)
	}
}

func (s sink) Append(raw string) {
	s.m.Store.Append(raw)
}
