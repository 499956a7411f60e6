package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-insights/internal/config"
	"github.com/stemsi/exstem-insights/internal/model"
)

// ErrSnapshotMiss is returned by Cached when no snapshot is stored.
var ErrSnapshotMiss = errors.New("student snapshot not cached")

// StudentLoader is the backing store the snapshot cache reads through to.
type StudentLoader interface {
	FindAll(ctx context.Context) ([]model.Student, error)
}

// SnapshotCache serves the full student collection from a Redis JSON snapshot,
// reading through to the backing store on a miss.
type SnapshotCache struct {
	loader StudentLoader
	rdb    *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewSnapshotCache creates a new SnapshotCache.
func NewSnapshotCache(loader StudentLoader, rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		loader: loader,
		rdb:    rdb,
		ttl:    ttl,
		log:    log.With().Str("component", "snapshot_cache").Logger(),
	}
}

// FindAll returns the cached snapshot, or loads and caches it on a miss.
// Redis failures degrade to reading the backing store directly.
func (c *SnapshotCache) FindAll(ctx context.Context) ([]model.Student, error) {
	students, err := c.Cached(ctx)
	if err == nil {
		return students, nil
	}
	if !errors.Is(err, ErrSnapshotMiss) {
		c.log.Warn().Err(err).Msg("snapshot read failed, falling back to store")
	}

	students, err = c.loader.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, students); err != nil {
		c.log.Warn().Err(err).Msg("snapshot write failed")
	}
	return students, nil
}

// Cached reads the snapshot from Redis only.
func (c *SnapshotCache) Cached(ctx context.Context) ([]model.Student, error) {
	raw, err := c.rdb.Get(ctx, config.CacheKey.StudentSnapshotKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotMiss
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var students []model.Student
	if err := json.Unmarshal(raw, &students); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if students == nil {
		students = []model.Student{}
	}
	return students, nil
}

// Refresh reloads the snapshot from the backing store and returns how many
// students it holds.
func (c *SnapshotCache) Refresh(ctx context.Context) (int, error) {
	students, err := c.loader.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.store(ctx, students); err != nil {
		return 0, err
	}
	return len(students), nil
}

// Invalidate drops the stored snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, config.CacheKey.StudentSnapshotKey()).Err()
}

func (c *SnapshotCache) store(ctx context.Context, students []model.Student) error {
	raw, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, config.CacheKey.StudentSnapshotKey(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// TTL reports how long the stored snapshot has left to live.
// It returns ErrSnapshotMiss when nothing is stored.
func (c *SnapshotCache) TTL(ctx context.Context) (time.Duration, error) {
	ttl, err := c.rdb.TTL(ctx, config.CacheKey.StudentSnapshotKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("snapshot ttl: %w", err)
	}
	if ttl == -2 {
		return 0, ErrSnapshotMiss
	}
	return ttl, nil
}
