package user

import (
	"context"
	"encoding/json"
	"errors"

	"cafebar-be/internal/logger"
	"cafebar-be/internal/storage"

	"go.uber.org/zap"
)

// KeyProfile is the storage key of the profile.
const KeyProfile = "user"

type Repository interface {
	GetProfile(ctx context.Context) (*Profile, error)
	SaveProfile(ctx context.Context, p *Profile) error
}

type repository struct {
	kv storage.Storage
}

func NewRepository(kv storage.Storage) Repository {
	return &repository{kv: kv}
}

func (r *repository) GetProfile(ctx context.Context) (*Profile, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetProfile"),
	)

	raw, err := r.kv.Get(ctx, KeyProfile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("profile not found")
			return nil, ErrProfileNotFound
		}
		log.Error("failed to read profile", zap.Error(err))
		return nil, err
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.Warn("failed to decode profile", zap.Error(err))
		return nil, ErrProfileNotFound
	}
	return &p, nil
}

func (r *repository) SaveProfile(ctx context.Context, p *Profile) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "SaveProfile"),
		zap.String("profile_id", p.ID),
	)

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, KeyProfile, string(data)); err != nil {
		log.Error("failed to save profile", zap.Error(err))
		return err
	}

	log.Info("profile saved")
	return nil
}
