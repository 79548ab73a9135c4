package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rahulgadekar07/ankur-scholorhub-frontend/internal/session"
)

const sessionValuesSchema = `
	CREATE TABLE IF NOT EXISTS portal_session_values (
		session_key TEXT NOT NULL,
		name        TEXT NOT NULL,
		value       TEXT NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (session_key, name)
	);
	CREATE INDEX IF NOT EXISTS portal_session_values_updated_at_idx
		ON portal_session_values (updated_at);
`

// SessionValues is the Postgres session backend: one row per persisted key.
type SessionValues struct {
	pool *pgxpool.Pool
}

func NewSessionValues(pool *pgxpool.Pool) *SessionValues {
	return &SessionValues{pool: pool}
}

func (r *SessionValues) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, sessionValuesSchema); err != nil {
		return fmt.Errorf("create session schema: %w", err)
	}
	return nil
}

func (r *SessionValues) Scope(key string) session.Storage {
	return &scopedValues{pool: r.pool, key: key}
}

// Purge deletes sessions that have not been written for longer than idle.
func (r *SessionValues) Purge(ctx context.Context, idle time.Duration) (int64, error) {
	const query = `
		DELETE FROM portal_session_values
		WHERE session_key IN (
			SELECT session_key FROM portal_session_values
			GROUP BY session_key
			HAVING MAX(updated_at) < $1
		)
	`
	cmd, err := r.pool.Exec(ctx, query, time.Now().Add(-idle))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *SessionValues) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

type scopedValues struct {
	pool *pgxpool.Pool
	key  string
}

func (s *scopedValues) Load(ctx context.Context) (map[string]string, error) {
	const query = `SELECT name, value FROM portal_session_values WHERE session_key = $1`

	rows, err := s.pool.Query(ctx, query, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrStorage, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("%w: %w", session.ErrStorage, err)
		}
		values[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", session.ErrStorage, err)
	}
	return values, nil
}

func (s *scopedValues) Save(ctx context.Context, values map[string]string) error {
	const query = `
		INSERT INTO portal_session_values (session_key, name, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_key, name)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for name, value := range values {
			if _, err := tx.Exec(ctx, query, s.key, name, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", session.ErrStorage, err)
	}
	return nil
}

func (s *scopedValues) Clear(ctx context.Context) error {
	const query = `DELETE FROM portal_session_values WHERE session_key = $1`
	if _, err := s.pool.Exec(ctx, query, s.key); err != nil {
		return fmt.Errorf("%w: %w", session.ErrStorage, err)
	}
	return nil
}
