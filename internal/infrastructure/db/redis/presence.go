package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

const (
	presenceKeyPrefix = "lobby:presence:"

	// presenceTTL lets the whole presence hash die with an abandoned lobby
	// even if nothing ever reaps it.
	presenceTTL = time.Hour
)

// PresenceTracker records per-player heartbeats in a Redis hash keyed per
// lobby. Field format: playerID -> unix seconds of last beat.
type PresenceTracker struct {
	client *redis.Client
}

// NewPresenceTracker wraps the given Redis client.
func NewPresenceTracker(client *redis.Client) *PresenceTracker {
	return &PresenceTracker{client: client}
}

var _ ports.Presence = (*PresenceTracker)(nil)

func presenceKey(code string) string {
	return presenceKeyPrefix + code
}

// Touch records a heartbeat and refreshes the hash TTL.
func (p *PresenceTracker) Touch(ctx context.Context, code, playerID string) error {
	key := presenceKey(code)
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, playerID, time.Now().Unix())
		pipe.Expire(ctx, key, presenceTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("presence touch %s/%s: %w", code, playerID, err)
	}
	return nil
}

// Forget drops the player's heartbeat record.
func (p *PresenceTracker) Forget(ctx context.Context, code, playerID string) error {
	if err := p.client.HDel(ctx, presenceKey(code), playerID).Err(); err != nil {
		return fmt.Errorf("presence forget %s/%s: %w", code, playerID, err)
	}
	return nil
}

// LastSeen returns the most recent heartbeat per player.
func (p *PresenceTracker) LastSeen(ctx context.Context, code string) (map[string]time.Time, error) {
	fields, err := p.client.HGetAll(ctx, presenceKey(code)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence read %s: %w", code, err)
	}

	beats := make(map[string]time.Time, len(fields))
	for playerID, raw := range fields {
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		beats[playerID] = time.Unix(unix, 0).UTC()
	}
	return beats, nil
}
