package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	pool DBPool
}

func NewPostgresStore(pool DBPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Load(ctx context.Context, cartID string) ([]Item, error) {
	var raw []byte
	row := s.pool.QueryRow(ctx, `SELECT items FROM carts WHERE id=$1`, cartID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", cartID, err)
	}
	return items, nil
}

func (s *PostgresStore) Save(ctx context.Context, cartID string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO carts(id, items)
		VALUES($1, $2)
		ON CONFLICT (id) DO UPDATE SET items=EXCLUDED.items, updated_at=now()
	`, cartID, raw)
	if err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, cartID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE id=$1`, cartID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
