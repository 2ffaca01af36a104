package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSessionTTL = 30 * time.Minute
	defaultLockTTL    = 5 * time.Second
	lockRetryInterval = 20 * time.Millisecond
)

// releaseLockScript deletes the lock only if this holder still owns it.
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps session state in Redis so several API replicas can share
// one conversation.
type RedisStore struct {
	redis   *redis.Client
	tracer  trace.Tracer
	ttl     time.Duration
	lockTTL time.Duration
}

// NewRedisStore stores sessions for ttl after their last turn. Session locks
// expire after lockTTL so a crashed holder cannot wedge a session.
func NewRedisStore(client *redis.Client, ttl, lockTTL time.Duration, tracer trace.Tracer) *RedisStore {
	if client == nil {
		panic("dialogue: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("meeting-assistant.internal.dialogue.redis")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &RedisStore{redis: client, tracer: tracer, ttl: ttl, lockTTL: lockTTL}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.load_state")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return newState(sessionID), nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("dialogue: failed to load session: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dialogue: failed to decode session: %w", err)
	}
	st.SessionID = sessionID
	return &st, nil
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.save_state")
	defer span.End()

	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(state.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: failed to persist session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.delete_state")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: failed to delete session: %w", err)
	}
	return nil
}

// Lock spins on SET NX until the session lock is free or ctx ends.
func (s *RedisStore) Lock(ctx context.Context, sessionID string) (func(), error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.lock_session")
	defer span.End()

	key := lockKey(sessionID)
	token := uuid.NewString()
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()

	for {
		ok, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("dialogue: failed to acquire session lock: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("dialogue: session %s busy: %w", sessionID, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// Release even if the turn's context was cancelled.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseLockScript.Run(releaseCtx, s.redis, []string{key}, token).Err()
	}, nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("meeting_session:%s", id)
}

func lockKey(id string) string {
	return fmt.Sprintf("meeting_session_lock:%s", id)
}
