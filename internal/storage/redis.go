package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hazard-admin/internal/config"
	"hazard-admin/internal/models"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects and pings the configured Redis.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps the list as a JSON string under one key, without expiry.
type RedisStore struct {
	client *goredis.Client
	key    string
	logr   *zap.Logger
}

func NewRedisStore(client *goredis.Client, key string, logr *zap.Logger) *RedisStore {
	return &RedisStore{client: client, key: key, logr: logr}
}

func (s *RedisStore) Save(ctx context.Context, zones []models.HazardZone) error {
	b, err := encodeZones(zones)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) ([]models.HazardZone, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []models.HazardZone{}, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decodeZones(b, "redis:"+s.key, s.logr), nil
}
