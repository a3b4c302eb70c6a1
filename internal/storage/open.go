package storage

import (
	"context"
	"fmt"

	"cafebar-be/internal/config"
	"cafebar-be/internal/db"
)

// Open builds the backend selected by cfg.StorageDriver. The returned
// close func releases any connection the backend holds.
func Open(ctx context.Context, cfg *config.Config) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.DriverMemory:
		return NewMemory(), noop, nil

	case config.DriverFile:
		f, err := NewFile(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return f, noop, nil

	case config.DriverPostgres:
		database, err := db.NewDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgres(database), database.Close, nil

	case config.DriverRedis:
		rdb, err := OpenRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return NewRedis(rdb, cfg.RedisPrefix), rdb.Close, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownDriver, cfg.StorageDriver)
}
