package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/lemur-ai/meeting-brain/internal/domain/entities"
	"github.com/lemur-ai/meeting-brain/internal/domain/repositories"
	"github.com/lemur-ai/meeting-brain/pkg/config"
)

// sessionHashKey is the Redis hash holding one JSON entry per session
const sessionHashKey = "meeting_sessions"

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// RedisRegistry persists sessions in Redis so monitors can be resumed after
// a restart
type RedisRegistry struct {
	client *redis.Client
}

// NewRedisRegistry creates a Redis-backed session registry
func NewRedisRegistry(client *redis.Client) repositories.SessionRegistry {
	return &RedisRegistry{client: client}
}

// Put stores or replaces a session snapshot
func (r *RedisRegistry) Put(ctx context.Context, session *entities.MeetingSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, sessionHashKey, session.ID.String(), data).Err()
}

// Get retrieves a session by meeting ID, nil when absent
func (r *RedisRegistry) Get(ctx context.Context, id uuid.UUID) (*entities.MeetingSession, error) {
	data, err := r.client.HGet(ctx, sessionHashKey, id.String()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session entities.MeetingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns every registered session
func (r *RedisRegistry) List(ctx context.Context) ([]*entities.MeetingSession, error) {
	entries, err := r.client.HGetAll(ctx, sessionHashKey).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]*entities.MeetingSession, 0, len(entries))
	for _, data := range entries {
		var session entities.MeetingSession
		if err := json.Unmarshal([]byte(data), &session); err != nil {
			continue
		}
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

// Delete removes a session from the registry
func (r *RedisRegistry) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.HDel(ctx, sessionHashKey, id.String()).Err()
}
