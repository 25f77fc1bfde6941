package db

import (
	"context"
	"database/sql"
	"time"
)

// SessionStore persists browser session values in the session_values table.
// It satisfies session.Store.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore wraps an open database
func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	value, err := SelectOne(ctx, s.db,
		`SELECT value FROM session_values WHERE session_id = ? AND key = ?`,
		[]QueryParam{sid, key},
		func(row *sql.Row) (string, error) {
			var v string
			err := row.Scan(&v)
			return v, err
		},
	)
	if err != nil || value == nil {
		return "", false, err
	}
	return *value, true, nil
}

func (s *SessionStore) Set(ctx context.Context, sid, key, value string) error {
	_, err := Run(ctx, s.db,
		`INSERT INTO session_values (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sid, key, value, NowMs(),
	)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, sid, key string) error {
	_, err := Run(ctx, s.db,
		`DELETE FROM session_values WHERE session_id = ? AND key = ?`,
		sid, key,
	)
	return err
}

func (s *SessionStore) Clear(ctx context.Context, sid string) error {
	_, err := Run(ctx, s.db, `DELETE FROM session_values WHERE session_id = ?`, sid)
	return err
}

// Prune deletes values not written since before and returns how many rows
// were removed
func (s *SessionStore) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := Run(ctx, s.db,
		`DELETE FROM session_values WHERE updated_at < ?`,
		before.UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
