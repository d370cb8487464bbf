package websocket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PresenceStore shares online state between API instances.
type PresenceStore interface {
	MarkOnline(ctx context.Context, userID uuid.UUID) error
	MarkOffline(ctx context.Context, userID uuid.UUID) error
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RedisPresence keeps one hash per user whose fields are instance ids and
// whose values are the unix time until which that instance vouches for the
// user. An instance that dies stops refreshing and its entry lapses after ttl.
type RedisPresence struct {
	rdb      *redis.Client
	instance string
	ttl      time.Duration
	now      func() time.Time
}

func NewRedisPresence(rdb *redis.Client, instance string, ttl time.Duration) *RedisPresence {
	return &RedisPresence{rdb: rdb, instance: instance, ttl: ttl, now: time.Now}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func presenceKey(userID uuid.UUID) string {
	return "presence:" + userID.String()
}

func (p *RedisPresence) MarkOnline(ctx context.Context, userID uuid.UUID) error {
	key := presenceKey(userID)
	until := p.now().Add(p.ttl).Unix()

	pipe := p.rdb.TxPipeline()
	pipe.HSet(ctx, key, p.instance, until)
	pipe.Expire(ctx, key, p.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (p *RedisPresence) MarkOffline(ctx context.Context, userID uuid.UUID) error {
	return p.rdb.HDel(ctx, presenceKey(userID), p.instance).Err()
}

func (p *RedisPresence) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	entries, err := p.rdb.HGetAll(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, err
	}
	now := p.now().Unix()
	for _, v := range entries {
		until, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		if until > now {
			return true, nil
		}
	}
	return false, nil
}
