package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cafebar-be/internal/logger"

	"go.uber.org/zap"
)

// Postgres stores values in the kv_store table created by cmd/migrate.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM kv_store WHERE key = $1`,
		key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to read key",
			zap.String("layer", "storage"),
			zap.String("key", key),
			zap.Error(err),
		)
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`, key, value)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to write key",
			zap.String("layer", "storage"),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
