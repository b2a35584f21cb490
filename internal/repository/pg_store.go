package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore guarda los valores en la tabla client_state de Postgres.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Migrate crea la tabla si no existe.
func (s *PgStore) Migrate(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS client_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	_, err := s.pool.Exec(ctx, query)
	return err
}

func (s *PgStore) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM client_state WHERE key = $1`

	var value string
	err := s.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *PgStore) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO client_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	_, err := s.pool.Exec(ctx, query, key, value)
	return err
}

func (s *PgStore) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM client_state WHERE key = $1`
	_, err := s.pool.Exec(ctx, query, key)
	return err
}
