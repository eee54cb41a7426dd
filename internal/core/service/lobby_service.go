package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

const (
	codeLength     = 4
	codeCharset    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	createAttempts = 5

	maxNameLength = 24
)

type lobbyService struct {
	store    ports.LobbyStore
	presence ports.Presence
	// connTimeout marks a player disconnected; evictAfter removes them.
	connTimeout time.Duration
	evictAfter  time.Duration
	log         zerolog.Logger
}

// NewLobbyService returns a LobbyService backed by the given store and
// presence tracker.
func NewLobbyService(store ports.LobbyStore, presence ports.Presence, connTimeout, evictAfter time.Duration, log zerolog.Logger) ports.LobbyService {
	if connTimeout <= 0 {
		connTimeout = 15 * time.Second
	}
	if evictAfter <= connTimeout {
		evictAfter = 4 * connTimeout
	}
	return &lobbyService{
		store:       store,
		presence:    presence,
		connTimeout: connTimeout,
		evictAfter:  evictAfter,
		log:         log,
	}
}

// Create allocates an unused code and writes a fresh lobby with the caller
// as sole player and host. Allocation relies on the store's atomic
// create-if-absent, so two hosts can never claim the same code; after
// createAttempts collisions the caller gets ErrCodeSpaceExhausted.
func (s *lobbyService) Create(ctx context.Context, input ports.CreateLobbyInput) (*ports.LobbyResult, error) {
	name, err := normalizeName(input.PlayerName)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	host := &domain.Player{
		ID:        input.PlayerID,
		Name:      name,
		JoinedAt:  now.UnixMilli(),
		Connected: true,
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code := randomCode()
		lobby := domain.NewLobby(code, host, now)

		err := s.store.Create(ctx, lobby)
		if errors.Is(err, domain.ErrConflict) {
			s.log.Debug().Str("code", code).Int("attempt", attempt+1).Msg("lobby code collision, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create lobby: %w", err)
		}

		if err := s.presence.Touch(ctx, code, input.PlayerID); err != nil {
			s.log.Warn().Err(err).Str("code", code).Msg("failed to record creator presence")
		}

		s.log.Info().Str("code", code).Str("player_id", input.PlayerID).Msg("lobby created")
		return &ports.LobbyResult{Code: code, Lobby: lobby}, nil
	}

	return nil, domain.ErrCodeSpaceExhausted
}

// Join inserts the caller into the lobby's player map. Joining again with
// the same identity is an idempotent overwrite; a player already in the
// lobby may also rejoin a game in progress (reconnect), but new identities
// are only admitted while the lobby has not started.
func (s *lobbyService) Join(ctx context.Context, input ports.JoinLobbyInput) (*ports.LobbyResult, error) {
	name, err := normalizeName(input.PlayerName)
	if err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	lobby, err := s.store.Update(ctx, code, func(l *domain.Lobby) error {
		existing, known := l.Players[input.PlayerID]
		if l.Status != domain.StatusLobby && !known {
			return domain.ErrLobbyInProgress
		}
		if known {
			existing.Name = name
			existing.Connected = true
			return nil
		}
		l.Players[input.PlayerID] = &domain.Player{
			ID:        input.PlayerID,
			Name:      name,
			JoinedAt:  time.Now().UTC().UnixMilli(),
			Connected: true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.presence.Touch(ctx, code, input.PlayerID); err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("failed to record joiner presence")
	}

	s.log.Info().Str("code", code).Str("player_id", input.PlayerID).Msg("player joined")
	return &ports.LobbyResult{Code: code, Lobby: lobby}, nil
}

// Leave removes the caller. The store deletes the record when the last
// player leaves; otherwise a departing host is replaced by the longest-
// present remaining player. Leaving twice is a no-op.
func (s *lobbyService) Leave(ctx context.Context, code, playerID string) error {
	_, err := s.store.Update(ctx, code, func(l *domain.Lobby) error {
		removePlayer(l, playerID)
		return nil
	})
	if errors.Is(err, domain.ErrLobbyNotFound) {
		// Already gone, idempotent.
		return nil
	}
	if err != nil {
		return err
	}

	if ferr := s.presence.Forget(ctx, code, playerID); ferr != nil {
		s.log.Warn().Err(ferr).Str("code", code).Msg("failed to clear presence on leave")
	}

	s.log.Info().Str("code", code).Str("player_id", playerID).Msg("player left")
	return nil
}

// Close deletes the lobby outright, evicting all players. Host only.
func (s *lobbyService) Close(ctx context.Context, code, playerID string) error {
	lobby, err := s.store.Get(ctx, code)
	if err != nil {
		return err
	}
	if lobby.HostID != playerID {
		return domain.ErrNotHost
	}

	if err := s.store.Delete(ctx, code); err != nil {
		return fmt.Errorf("close lobby: %w", err)
	}

	s.log.Info().Str("code", code).Str("player_id", playerID).Msg("lobby closed")
	return nil
}

// UpdateSettings applies a partial settings change. Host only, and only
// while no round is underway.
func (s *lobbyService) UpdateSettings(ctx context.Context, input ports.UpdateSettingsInput) error {
	_, err := s.store.Update(ctx, input.Code, func(l *domain.Lobby) error {
		if l.HostID != input.PlayerID {
			return domain.ErrNotHost
		}
		if l.Status != domain.StatusLobby && l.Status != domain.StatusReveal {
			return domain.ErrInvalidState
		}
		if input.ImpostorCount != nil {
			if *input.ImpostorCount < 1 {
				return domain.ErrInvalidState
			}
			l.Settings.ImpostorCount = *input.ImpostorCount
		}
		if input.UseHint != nil {
			l.Settings.UseHint = *input.UseHint
		}
		return nil
	})
	return err
}

// Heartbeat records liveness. The connected flag is only written back when
// it actually flips, so steady-state heartbeats cause no snapshot churn.
func (s *lobbyService) Heartbeat(ctx context.Context, code, playerID string) error {
	if err := s.presence.Touch(ctx, code, playerID); err != nil {
		return err
	}

	lobby, err := s.store.Get(ctx, code)
	if err != nil {
		return err
	}
	p, ok := lobby.Players[playerID]
	if !ok || p.Connected {
		return nil
	}

	_, err = s.store.Update(ctx, code, func(l *domain.Lobby) error {
		if p, ok := l.Players[playerID]; ok {
			p.Connected = true
		}
		return nil
	})
	return err
}

// MarkDisconnected flips connected=false when a player's stream drops.
// The player keeps their seat until ReapDisconnected evicts them, leaving a
// window for reconnects.
func (s *lobbyService) MarkDisconnected(ctx context.Context, code, playerID string) error {
	if err := s.presence.Forget(ctx, code, playerID); err != nil {
		s.log.Warn().Err(err).Str("code", code).Msg("failed to clear presence on disconnect")
	}

	_, err := s.store.Update(ctx, code, func(l *domain.Lobby) error {
		if p, ok := l.Players[playerID]; ok {
			p.Connected = false
		}
		return nil
	})
	if errors.Is(err, domain.ErrLobbyNotFound) {
		return nil
	}
	return err
}

// ReapDisconnected removes players whose last heartbeat is older than the
// eviction window and marks merely-stale ones disconnected. Removal goes
// through the same path as an explicit leave, so host migration and
// delete-on-empty hold, and a pending round is re-evaluated against the
// shrunken quorum.
func (s *lobbyService) ReapDisconnected(ctx context.Context, code string) error {
	beats, err := s.presence.LastSeen(ctx, code)
	if err != nil {
		return fmt.Errorf("reap %s: %w", code, err)
	}

	now := time.Now().UTC()
	var evicted []string

	_, err = s.store.Update(ctx, code, func(l *domain.Lobby) error {
		evicted = evicted[:0]
		for id, p := range l.Players {
			beat, seen := beats[id]
			switch {
			case !seen || now.Sub(beat) > s.evictAfter:
				evicted = append(evicted, id)
			case now.Sub(beat) > s.connTimeout:
				p.Connected = false
			}
		}
		for _, id := range evicted {
			removePlayer(l, id)
		}
		return nil
	})
	if errors.Is(err, domain.ErrLobbyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, id := range evicted {
		if ferr := s.presence.Forget(ctx, code, id); ferr != nil {
			s.log.Warn().Err(ferr).Str("code", code).Msg("failed to clear presence on evict")
		}
		s.log.Info().Str("code", code).Str("player_id", id).Msg("evicted stale player")
	}
	return nil
}

// removePlayer takes one player out of the lobby, migrating the host role to
// the longest-present remaining player and dropping the departed player's
// vote for the current round. With the quorum possibly shrunk, a pending
// round is re-evaluated so the game cannot stall on a vote that will never
// arrive; a departing word chooser is likewise replaced so word selection
// cannot stall on a player who is gone.
func removePlayer(l *domain.Lobby, playerID string) {
	if _, ok := l.Players[playerID]; !ok {
		return
	}
	delete(l.Players, playerID)
	if votes, ok := l.Votes[l.Round]; ok {
		delete(votes, playerID)
	}
	if len(l.Players) == 0 {
		// The store deletes the record when the player map empties.
		return
	}
	if l.HostID == playerID {
		l.HostID = l.SortedPlayers()[0].ID
	}
	if l.Status == domain.StatusChoosingWord && l.WordChooser == playerID {
		l.WordChooser = l.SortedPlayers()[0].ID
	}
	if l.Status == domain.StatusPlaying {
		concludeRoundIfQuorum(l, time.Now().UTC())
	}
}

// normalizeName trims and bounds a display name.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLength {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

// randomCode returns a short human-typable lobby code (4 uppercase
// alphanumeric characters) from crypto/rand.
func randomCode() string {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		// fallback: derive from the clock
		n := time.Now().UnixNano()
		for i := range b {
			b[i] = codeCharset[int(n>>(i*8))&0xFF%len(codeCharset)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = codeCharset[int(b[i])%len(codeCharset)]
	}
	return string(b)
}
