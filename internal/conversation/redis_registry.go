package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cafe_voice_backend/platform/apperr"
)

const sessionKeyPrefix = "call:"

// RedisRegistry stores sessions in Redis with a TTL so abandoned calls
// expire on their own. It lets multiple API instances share live calls.
type RedisRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRegistry(redisURL string, ttl time.Duration) (*RedisRegistry, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisRegistry{rdb: redis.NewClient(opt), ttl: ttl}, nil
}

func sessionKey(callID string) string {
	return sessionKeyPrefix + callID
}

func (r *RedisRegistry) GetOrCreate(ctx context.Context, callID, callerPhone string) (*State, bool, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(callID)).Bytes()
	if err == nil {
		var state State
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, false, apperr.Wrap(apperr.KindInternal, "corrupt session payload", err)
		}
		return &state, false, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, false, apperr.Wrap(apperr.KindUnavailable, "session store unavailable", err)
	}

	state := NewState(callID, callerPhone)
	if err := r.set(ctx, state); err != nil {
		return nil, false, err
	}
	return state, true, nil
}

func (r *RedisRegistry) Update(ctx context.Context, state *State) error {
	if state == nil || state.CallID == "" {
		return apperr.BadRequest("session state requires a call id").WithOp("registry.update")
	}
	return r.set(ctx, state)
}

func (r *RedisRegistry) Delete(ctx context.Context, callID string) error {
	if err := r.rdb.Del(ctx, sessionKey(callID)).Err(); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "session store unavailable", err)
	}
	return nil
}

func (r *RedisRegistry) set(ctx context.Context, state *State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode session", err)
	}
	if err := r.rdb.Set(ctx, sessionKey(state.CallID), payload, r.ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "session store unavailable", err)
	}
	return nil
}

// Ping reports whether the backing Redis is reachable, for readiness checks.
func (r *RedisRegistry) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close releases the underlying Redis connection pool.
func (r *RedisRegistry) Close() error {
	return r.rdb.Close()
}

var _ Registry = (*RedisRegistry)(nil)
