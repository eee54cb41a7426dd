package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
	"github.com/impostorlabs/lobby-system/internal/metrics"
)

const (
	lobbyKeyPrefix  = "lobby:"
	eventsKeyPrefix = "lobby:events:"

	// casAttempts bounds the optimistic retry loop in Update. Contention on
	// one lobby is a handful of players, so conflicts are short-lived.
	casAttempts = 16

	// tombstone is published on the events channel when a lobby is deleted,
	// telling subscribers to terminate.
	tombstone = "__deleted__"
)

// LobbyStore is the Redis-backed shared state store. One lobby is one JSON
// document; every successful write republishes the full snapshot on the
// lobby's events channel, which is what feeds Subscribe.
type LobbyStore struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewLobbyStore wraps a connected Redis client.
func NewLobbyStore(client *redis.Client, log zerolog.Logger) *LobbyStore {
	return &LobbyStore{client: client, log: log}
}

var _ ports.LobbyStore = (*LobbyStore)(nil)

func lobbyKey(code string) string  { return lobbyKeyPrefix + code }
func eventsKey(code string) string { return eventsKeyPrefix + code }

// Create writes a fresh lobby iff its code is unclaimed, using SET NX as the
// atomic create-if-absent primitive. There is no check-then-write window.
func (s *LobbyStore) Create(ctx context.Context, lobby *domain.Lobby) error {
	payload, err := json.Marshal(lobby)
	if err != nil {
		return fmt.Errorf("encode lobby: %w", err)
	}

	set, err := s.client.SetNX(ctx, lobbyKey(lobby.Code), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create lobby %s: %w", lobby.Code, err)
	}
	if !set {
		return domain.ErrConflict
	}

	if err := s.client.Publish(ctx, eventsKey(lobby.Code), payload).Err(); err != nil {
		s.log.Warn().Err(err).Str("code", lobby.Code).Msg("failed to publish create snapshot")
	}
	return nil
}

// Get returns the current record.
func (s *LobbyStore) Get(ctx context.Context, code string) (*domain.Lobby, error) {
	raw, err := s.client.Get(ctx, lobbyKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrLobbyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lobby %s: %w", code, err)
	}

	var lobby domain.Lobby
	if err := json.Unmarshal(raw, &lobby); err != nil {
		return nil, fmt.Errorf("decode lobby %s: %w", code, err)
	}
	return &lobby, nil
}

// Update applies mutate under WATCH-based compare-and-set: the record is
// re-read and mutate re-applied whenever a concurrent writer commits first.
// An update that empties the player map deletes the record instead of
// writing it back (a lobby never exists without players).
func (s *LobbyStore) Update(ctx context.Context, code string, mutate ports.MutateFunc) (*domain.Lobby, error) {
	key := lobbyKey(code)

	for attempt := 0; attempt < casAttempts; attempt++ {
		var written *domain.Lobby

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return domain.ErrLobbyNotFound
			}
			if err != nil {
				return err
			}

			var lobby domain.Lobby
			if err := json.Unmarshal(raw, &lobby); err != nil {
				return fmt.Errorf("decode lobby %s: %w", code, err)
			}

			if err := mutate(&lobby); err != nil {
				return err
			}

			if len(lobby.Players) == 0 {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key, presenceKey(code))
					pipe.Publish(ctx, eventsKey(code), tombstone)
					return nil
				})
				written = nil
				return err
			}

			payload, err := json.Marshal(&lobby)
			if err != nil {
				return fmt.Errorf("encode lobby %s: %w", code, err)
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, 0)
				pipe.Publish(ctx, eventsKey(code), payload)
				return nil
			})
			written = &lobby
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			metrics.StoreCASRetriesTotal.Inc()
			continue
		}
		if err != nil {
			return nil, err
		}
		return written, nil
	}

	return nil, domain.ErrConflict
}

// Delete removes the record and tells subscribers the lobby is gone.
func (s *LobbyStore) Delete(ctx context.Context, code string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, lobbyKey(code), presenceKey(code))
		pipe.Publish(ctx, eventsKey(code), tombstone)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete lobby %s: %w", code, err)
	}
	return nil
}

// Subscribe streams full-record snapshots, starting with the current state.
// The returned channel closes when the lobby is deleted or ctx is cancelled.
func (s *LobbyStore) Subscribe(ctx context.Context, code string) (<-chan *domain.Lobby, error) {
	// Subscribe before the initial read so no write between the two is lost;
	// at worst the same snapshot is delivered twice, which projection makes
	// harmless.
	pubsub := s.client.Subscribe(ctx, eventsKey(code))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe lobby %s: %w", code, err)
	}

	initial, err := s.Get(ctx, code)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan *domain.Lobby, 8)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		select {
		case out <- initial:
		case <-ctx.Done():
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				if msg.Payload == tombstone {
					return
				}
				var lobby domain.Lobby
				if err := json.Unmarshal([]byte(msg.Payload), &lobby); err != nil {
					s.log.Warn().Err(err).Str("code", code).Msg("dropping undecodable snapshot")
					continue
				}
				select {
				case out <- &lobby:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
