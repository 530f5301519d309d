package session

import "context"

// TokenStore persists the session token across restarts. Load returns ""
// when nothing is stored under key.
type TokenStore interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string) error
	Delete(ctx context.Context, key string) error
}
