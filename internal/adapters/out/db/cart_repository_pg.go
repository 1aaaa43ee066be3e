package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	cartdom "boutique/internal/domain/cart"
)

// CartRepositoryPG implements cart.Repository with PostgreSQL.
//
// Table design:
//
//	CREATE TABLE carts (
//	  id         TEXT PRIMARY KEY,
//	  blob       TEXT NOT NULL,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	);
//
// blob holds the versioned entry-sequence JSON, the same representation the
// file store uses.
type CartRepositoryPG struct {
	DB *sql.DB
}

func NewCartRepositoryPG(db *sql.DB) *CartRepositoryPG {
	return &CartRepositoryPG{DB: db}
}

func (r *CartRepositoryPG) Load(ctx context.Context, id string) (*cartdom.Cart, error) {
	const q = `SELECT blob, created_at, updated_at FROM carts WHERE id = $1`

	key := strings.TrimSpace(id)
	if key == "" {
		return nil, errors.New("cart_repository_pg: id is empty")
	}

	var (
		blob      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := r.DB.QueryRowContext(ctx, q, key).Scan(&blob, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	version, entries, err := cartdom.DecodeBlob(blob)
	if err != nil {
		return nil, err
	}

	return &cartdom.Cart{
		ID:        key,
		Entries:   entries,
		Version:   version,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *CartRepositoryPG) Save(ctx context.Context, c *cartdom.Cart) error {
	const q = `
INSERT INTO carts (id, blob, created_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at
`
	if c == nil {
		return errors.New("cart_repository_pg: cart is nil")
	}
	key := strings.TrimSpace(c.ID)
	if key == "" {
		return errors.New("cart_repository_pg: Save requires cart.ID")
	}

	blob, err := cartdom.EncodeBlob(c)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, q, key, blob, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CartRepositoryPG) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM carts WHERE id = $1`

	key := strings.TrimSpace(id)
	if key == "" {
		return errors.New("cart_repository_pg: id is empty")
	}
	_, err := r.DB.ExecContext(ctx, q, key)
	return err
}
