package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepository stores namespaced preferences in the preferences table.
type PreferencesRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewPreferencesRepository creates a preferences repository on pool.
func NewPreferencesRepository(pool *pgxpool.Pool) *PreferencesRepository {
	return &PreferencesRepository{pool: pool}
}

func (r *PreferencesRepository) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	const query = `
		SELECT value
		FROM preferences
		WHERE namespace = $1 AND key = $2
	`

	var value string
	err := r.queryer().QueryRow(ctx, query, namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get preference: %w", err)
	}
	return value, true, nil
}

func (r *PreferencesRepository) Set(ctx context.Context, namespace, key, value string) error {
	const query = `
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.queryer().Exec(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) All(ctx context.Context, namespace string) (map[string]string, error) {
	const query = `
		SELECT key, value
		FROM preferences
		WHERE namespace = $1
		ORDER BY key
	`

	rows, err := r.queryer().Query(ctx, query, namespace)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preferences: %w", err)
	}
	return out, nil
}

func (r *PreferencesRepository) Clear(ctx context.Context, namespace string) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM preferences WHERE namespace = $1`, namespace); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	return nil
}

func (r *PreferencesRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
