// Package storage holds the string-keyed, string-valued persistence
// backends the stores write their JSON snapshots into.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound   = errors.New("storage: key not found")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage is a key-value backend. Get returns ErrNotFound for absent keys.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

func validKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}
