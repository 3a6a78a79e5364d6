package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/cover-letter-agent/internal/types"
)

// KeyPrefix namespaces mirrored records in Redis.
const KeyPrefix = "resume:"

const flushBatch = 100

// RedisMirror stores records as JSON strings under KeyPrefix+pin with no TTL.
type RedisMirror struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisMirror connects to redisURL and verifies the connection with a PING.
func NewRedisMirror(ctx context.Context, redisURL string) (*RedisMirror, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis unreachable at %s: %w", opts.Addr, err)
	}

	return NewRedisMirrorFromClient(rdb), nil
}

// NewRedisMirrorFromClient wraps an existing client.
func NewRedisMirrorFromClient(rdb *redis.Client) *RedisMirror {
	return &RedisMirror{rdb: rdb, prefix: KeyPrefix}
}

// Key returns the Redis key for pin.
func (m *RedisMirror) Key(pin int) string {
	return m.prefix + strconv.Itoa(pin)
}

// Store writes record under pin.
func (m *RedisMirror) Store(ctx context.Context, pin int, record *types.ResumeRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := m.rdb.Set(ctx, m.Key(pin), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", m.Key(pin), err)
	}
	return nil
}

// Load reads the record under pin. A missing key is not an error.
func (m *RedisMirror) Load(ctx context.Context, pin int) (*types.ResumeRecord, bool, error) {
	data, err := m.rdb.Get(ctx, m.Key(pin)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", m.Key(pin), err)
	}

	var record types.ResumeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, fmt.Errorf("failed to decode record %s: %w", m.Key(pin), err)
	}
	return &record, true, nil
}

// Remove deletes the key for pin.
func (m *RedisMirror) Remove(ctx context.Context, pin int) error {
	if err := m.rdb.Del(ctx, m.Key(pin)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", m.Key(pin), err)
	}
	return nil
}

// Flush deletes every key under the mirror's prefix.
func (m *RedisMirror) Flush(ctx context.Context) error {
	iter := m.rdb.Scan(ctx, 0, m.prefix+"*", flushBatch).Iterator()
	batch := make([]string, 0, flushBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == flushBatch {
			if err := m.rdb.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del batch: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s*: %w", m.prefix, err)
	}
	if len(batch) > 0 {
		if err := m.rdb.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del batch: %w", err)
		}
	}
	return nil
}

// Close releases the client.
func (m *RedisMirror) Close() error {
	return m.rdb.Close()
}
