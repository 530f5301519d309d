package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotAuthenticated     = errors.New("not authenticated")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

const DefaultKey = "whop_token"

// Session is the authenticated identity of the local player.
type Session struct {
	Token         string `json:"-"`
	Authenticated bool   `json:"authenticated"`
	PlayerID      string `json:"playerId"`
}

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	ID string `json:"id"`
}

type Options struct {
	// ValidateURL receives POST {"token": ...} and answers {"id": ...}.
	ValidateURL string
	Key         string
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// Manager owns the session token. It is the only writer of the session; all
// other components read copies.
type Manager struct {
	mu      sync.RWMutex
	current *Session

	store       TokenStore
	key         string
	validateURL string
	client      *http.Client
	log         *log.Logger
	now         func() time.Time
}

func NewManager(store TokenStore, opts Options) *Manager {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Manager{
		store:       store,
		key:         opts.Key,
		validateURL: opts.ValidateURL,
		client:      opts.HTTPClient,
		log:         opts.Logger.With("component", "session"),
		now:         time.Now,
	}
}

// Restore picks up a previously persisted token. The token is trusted
// without a validation round trip, except that a JWT whose exp has passed is
// dropped from the store. The JWT subject, if any, becomes the player id.
func (m *Manager) Restore(ctx context.Context) (Session, bool, error) {
	token, err := m.store.Load(ctx, m.key)
	if err != nil {
		return Session{}, false, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return Session{}, false, nil
	}

	subject, expired := inspectToken(token, m.now())
	if expired {
		m.log.Warn("persisted token expired, discarding")
		if err := m.store.Delete(ctx, m.key); err != nil {
			return Session{}, false, fmt.Errorf("delete expired token: %w", err)
		}
		return Session{}, false, nil
	}

	s := Session{Token: token, Authenticated: true, PlayerID: subject}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()

	m.log.Info("session restored", "player", subject)
	return s, true, nil
}

// Authenticate validates token with the server and, on success, persists it.
// On any failure the previous session and the store are left untouched.
func (m *Manager) Authenticate(ctx context.Context, token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, fmt.Errorf("%w: empty token", ErrAuthenticationFailed)
	}

	body, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.validateURL, bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Error("token validation request failed", "err", err)
		return Session{}, fmt.Errorf("%w: network failure: %v", ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.log.Warn("token rejected", "status", resp.Status)
		return Session{}, fmt.Errorf("%w: invalid token (%s)", ErrAuthenticationFailed, resp.Status)
	}

	var user validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Session{}, fmt.Errorf("%w: bad validation response: %v", ErrAuthenticationFailed, err)
	}
	if user.ID == "" {
		return Session{}, fmt.Errorf("%w: validation response has no player id", ErrAuthenticationFailed)
	}

	if err := m.store.Save(ctx, m.key, token); err != nil {
		return Session{}, fmt.Errorf("persist token: %w", err)
	}

	s := Session{Token: token, Authenticated: true, PlayerID: user.ID}
	m.mu.Lock()
	m.current = &s
	m.mu.Unlock()

	m.log.Info("authenticated", "player", user.ID)
	return s, nil
}

// Logout drops the in-memory session before removing the persisted token, so
// no action can be authorized once Logout has been called.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	if err := m.store.Delete(ctx, m.key); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	m.log.Info("logged out")
	return nil
}

func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return *m.current, true
}

// AuthorizationHeaderValue returns the bearer credential for the current
// session.
func (m *Manager) AuthorizationHeaderValue() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || !m.current.Authenticated || m.current.Token == "" {
		return "", ErrNotAuthenticated
	}
	return "Bearer " + m.current.Token, nil
}

// inspectToken reads the claims of a JWT without verifying its signature.
// Opaque (non-JWT) tokens yield no subject and never count as expired.
func inspectToken(token string, now time.Time) (subject string, expired bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", false
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return claims.Subject, true
	}
	return claims.Subject, false
}
