package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poietai/poietai/internal/secrets"
)

type SecretRepo struct {
	pool *pgxpool.Pool
}

func NewSecretRepo(pool *pgxpool.Pool) *SecretRepo {
	return &SecretRepo{pool: pool}
}

func (r *SecretRepo) Upsert(ctx context.Context, s *secrets.Secret) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO secrets (id, name, value, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		s.ID, s.Name, s.Value, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("secretRepo.Upsert: %w", err)
	}

	return nil
}

func (r *SecretRepo) GetByName(ctx context.Context, name string) (*secrets.Secret, error) {
	var s secrets.Secret

	err := r.pool.QueryRow(ctx,
		`SELECT id, name, value, created_at, updated_at FROM secrets WHERE name = $1`,
		name,
	).Scan(&s.ID, &s.Name, &s.Value, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("secretRepo.GetByName: %w", secrets.ErrSecretNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("secretRepo.GetByName: %w", err)
	}

	return &s, nil
}

func (r *SecretRepo) List(ctx context.Context) ([]*secrets.Secret, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, value, created_at, updated_at FROM secrets ORDER BY name LIMIT 1000`,
	)
	if err != nil {
		return nil, fmt.Errorf("secretRepo.List: %w", err)
	}
	defer rows.Close()

	var out []*secrets.Secret
	for rows.Next() {
		var s secrets.Secret
		if err := rows.Scan(&s.ID, &s.Name, &s.Value, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("secretRepo.List: scan: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("secretRepo.List: rows: %w", err)
	}

	return out, nil
}

func (r *SecretRepo) Delete(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM secrets WHERE name = $1`,
		name,
	)
	if err != nil {
		return fmt.Errorf("secretRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("secretRepo.Delete: %w", secrets.ErrSecretNotFound)
	}

	return nil
}
