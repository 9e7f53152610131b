package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sprockets/internal/dto"
	"sprockets/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// partCache keeps recently read parts in Redis. It is best-effort: every
// failure is logged and treated as a miss, and a nil client disables it.
// Reads and writes go through a breaker; invalidations always reach Redis.
type partCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *infra.Breaker
}

func newPartCache(rdb *redis.Client, ttl time.Duration) partCache {
	if rdb == nil {
		return partCache{}
	}
	b := infra.NewBreaker("part-cache", infra.BreakerConfig{FailureThreshold: 3, OpenTimeout: 30 * time.Second})
	b.OnStateChange(func(name string, from, to infra.BreakerState) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
	})
	return partCache{rdb: rdb, ttl: ttl, breaker: b}
}

func partKey(id string) string { return "part:" + id }

func (c partCache) get(ctx context.Context, id string) (*dto.PartResponse, bool) {
	if c.rdb == nil {
		return nil, false
	}
	var raw []byte
	err := c.breaker.Execute(func() error {
		var err error
		raw, err = c.rdb.Get(ctx, partKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, infra.ErrBreakerOpen) {
			log.Warn().Err(err).Str("part_id", id).Msg("part cache read failed")
		}
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	var resp dto.PartResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (c partCache) set(ctx context.Context, resp *dto.PartResponse) {
	if c.rdb == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	err = c.breaker.Execute(func() error {
		return c.rdb.Set(ctx, partKey(resp.ID), raw, c.ttl).Err()
	})
	if err != nil && !errors.Is(err, infra.ErrBreakerOpen) {
		log.Warn().Err(err).Str("part_id", resp.ID).Msg("part cache write failed")
	}
}

func (c partCache) drop(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, partKey(id)).Err(); err != nil {
		log.Warn().Err(err).Str("part_id", id).Msg("part cache invalidation failed")
	}
}
