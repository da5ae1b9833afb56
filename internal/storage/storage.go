// Package storage holds the persistence backends for the zone list. Every
// backend stores the same JSON array under one namespaced key and treats a
// malformed stored value as an empty list.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"hazard-admin/internal/config"
	"hazard-admin/internal/database"
	"hazard-admin/internal/models"
	"hazard-admin/internal/services"

	"go.uber.org/zap"
)

// Open builds the persister selected by STORAGE_DRIVER. The returned close
// function releases any connection the backend holds.
func Open(ctx context.Context, cfg *config.Config, logr *zap.Logger) (services.Persister, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case config.StorageMemory:
		return NewMemoryStore(), noop, nil
	case config.StorageFile:
		return NewFileStore(cfg.DataDir, cfg.StorageNamespace, logr), noop, nil
	case config.StorageRedis:
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client, cfg.StorageNamespace, logr), client.Close, nil
	case config.StoragePostgres:
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgresStore(db, cfg.StorageNamespace, logr)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func encodeZones(zones []models.HazardZone) ([]byte, error) {
	if zones == nil {
		zones = []models.HazardZone{}
	}
	b, err := json.Marshal(zones)
	if err != nil {
		return nil, fmt.Errorf("encode hazard zones: %w", err)
	}
	return b, nil
}

// decodeZones never fails: a value that is not a JSON array of zones is
// logged and read as an empty list.
func decodeZones(b []byte, source string, logr *zap.Logger) []models.HazardZone {
	var zones []models.HazardZone
	if err := json.Unmarshal(b, &zones); err != nil {
		logr.Warn("ignoring malformed stored hazard zones", zap.String("source", source), zap.Error(err))
		return []models.HazardZone{}
	}
	if zones == nil {
		return []models.HazardZone{}
	}
	return zones
}
