package session

import (
	"context"
	"database/sql"
	"errors"
)

const createTokensTable = `
CREATE TABLE IF NOT EXISTS session_tokens (
    name       TEXT PRIMARY KEY,
    token      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates the session_tokens table if needed.
func NewPostgresStore(ctx context.Context, db *sql.DB) (TokenStore, error) {
	if _, err := db.ExecContext(ctx, createTokensTable); err != nil {
		return nil, err
	}
	return &postgresStore{db: db}, nil
}

func (p *postgresStore) Load(ctx context.Context, key string) (string, error) {
	var tok string
	err := p.db.QueryRowContext(ctx, `SELECT token FROM session_tokens WHERE name = $1`, key).Scan(&tok)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return tok, err
}

func (p *postgresStore) Save(ctx context.Context, key, token string) error {
	_, err := p.db.ExecContext(ctx, `
INSERT INTO session_tokens (name, token) VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET token = EXCLUDED.token, updated_at = now()`, key, token)
	return err
}

func (p *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE name = $1`, key)
	return err
}
