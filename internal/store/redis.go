package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DoyleJ11/team-draft-backend/internal/engine"
)

// RedisConfig holds configuration for the Redis repository
type RedisConfig struct {
	RedisClient *redis.Client

	// TTL applied to every key; zero keeps drafts forever
	TTL time.Duration
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed repository and checks the connection.
func NewRedis(ctx context.Context, cfg *RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if err := cfg.RedisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Redis{client: cfg.RedisClient, ttl: cfg.TTL}, nil
}

func (r *Redis) SaveDraft(ctx context.Context, input *SaveDraftInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}

	draftJSON, err := json.Marshal(input.State)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, DraftKey(input.Code), draftJSON, r.ttl)
	if r.ttl > 0 {
		// The roster is written once per draft; keep it alive with the progress.
		pipe.Expire(ctx, RosterKey(input.Code), r.ttl)
	}
	pipe.SAdd(ctx, draftsSetKey, input.Code)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (r *Redis) GetDraft(ctx context.Context, input *GetDraftInput) (*engine.State, error) {
	if input == nil || input.Code == "" {
		return nil, ErrInvalidInput
	}

	draftJSON, err := r.client.Get(ctx, DraftKey(input.Code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return decodeDraft(draftJSON)
}

func (r *Redis) SaveRoster(ctx context.Context, input *SaveRosterInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}

	rosterJSON, err := json.Marshal(input.Roster)
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	if err := r.client.Set(ctx, RosterKey(input.Code), rosterJSON, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	return nil
}

func (r *Redis) GetRoster(ctx context.Context, input *GetRosterInput) ([]engine.Participant, error) {
	if input == nil || input.Code == "" {
		return nil, ErrInvalidInput
	}

	rosterJSON, err := r.client.Get(ctx, RosterKey(input.Code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get roster: %w", err)
	}
	return decodeRoster(rosterJSON)
}

// ListDrafts returns the codes whose draft key still exists. Codes whose key
// has expired are pruned from the set.
func (r *Redis) ListDrafts(ctx context.Context) ([]string, error) {
	members, err := r.client.SMembers(ctx, draftsSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}

	pipe := r.client.Pipeline()
	exists := make([]*redis.IntCmd, len(members))
	for i, code := range members {
		exists[i] = pipe.Exists(ctx, DraftKey(code))
	}
	if len(members) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to list drafts: %w", err)
		}
	}

	codes := make([]string, 0, len(members))
	var expired []any
	for i, code := range members {
		if exists[i].Val() == 0 {
			expired = append(expired, code)
			continue
		}
		codes = append(codes, code)
	}
	if len(expired) > 0 {
		if err := r.client.SRem(ctx, draftsSetKey, expired...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired drafts: %w", err)
		}
	}

	slices.Sort(codes)
	return codes, nil
}

func (r *Redis) DeleteDraft(ctx context.Context, input *DeleteDraftInput) error {
	if input == nil || input.Code == "" {
		return ErrInvalidInput
	}

	pipe := r.client.TxPipeline()
	deleted := pipe.Del(ctx, DraftKey(input.Code))
	pipe.Del(ctx, RosterKey(input.Code))
	pipe.SRem(ctx, draftsSetKey, input.Code)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if deleted.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
