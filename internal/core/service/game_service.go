package service

import (
	"context"
	"math/rand"
	"strings"

	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

type gameService struct {
	store ports.LobbyStore
	log   zerolog.Logger
}

// NewGameService returns the GameService driving the round lifecycle.
func NewGameService(store ports.LobbyStore, log zerolog.Logger) ports.GameService {
	return &gameService{store: store, log: log}
}

// StartGame begins a new game cycle: the host moves the lobby into
// choosingWord with a randomly selected word chooser. This is a full reset,
// not a per-round one — roles, eliminations, votes, results and any previous
// winner are all cleared, reinstating every player.
func (s *gameService) StartGame(ctx context.Context, code, playerID string) error {
	lobby, err := s.store.Update(ctx, code, func(l *domain.Lobby) error {
		if l.HostID != playerID {
			return domain.ErrNotHost
		}
		if !l.Status.CanTransitionTo(domain.StatusChoosingWord) {
			return domain.ErrInvalidState
		}

		players := l.SortedPlayers()
		chooser := players[rand.Intn(len(players))]

		l.Status = domain.StatusChoosingWord
		l.WordChooser = chooser.ID
		l.Word = ""
		l.Hint = ""
		l.Round = 0
		l.Winner = domain.WinnerNone
		l.Votes = map[int]map[string]string{}
		l.Results = map[int]domain.RoundResult{}
		for _, p := range l.Players {
			p.IsImpostor = false
			p.Eliminated = false
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("code", code).Str("chooser", lobby.WordChooser).Int("players", len(lobby.Players)).Msg("game started")
	return nil
}

// SubmitWord is the chooser's move: store the secret word (and hint, when
// enabled), assign impostors among the other players, and open round 1.
// The chooser is excluded from the candidate pool so the one player who
// knows the word can never draw the impostor role.
func (s *gameService) SubmitWord(ctx context.Context, input ports.SubmitWordInput) error {
	word := strings.TrimSpace(input.Word)
	if word == "" {
		return domain.ErrInvalidWord
	}

	lobby, err := s.store.Update(ctx, input.Code, func(l *domain.Lobby) error {
		if l.Status != domain.StatusChoosingWord {
			return domain.ErrInvalidState
		}
		if l.WordChooser != input.PlayerID {
			return domain.ErrNotChooser
		}

		var candidates []*domain.Player
		for _, p := range l.SortedPlayers() {
			if p.ID != l.WordChooser {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			return domain.ErrInvalidState
		}

		quota := l.ImpostorQuota(len(candidates))
		rand.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, p := range l.Players {
			p.IsImpostor = false
		}
		for _, p := range candidates[:quota] {
			p.IsImpostor = true
		}

		l.Word = word
		l.Hint = ""
		if l.Settings.UseHint {
			hint := strings.TrimSpace(input.Hint)
			if hint == "" {
				hint = domain.HintPlaceholder
			}
			l.Hint = hint
		}

		l.Status = domain.StatusPlaying
		l.Round = 1
		l.Votes = map[int]map[string]string{}
		l.Results = map[int]domain.RoundResult{}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("code", input.Code).Int("impostors", lobby.ImpostorQuota(len(lobby.Players)-1)).Msg("word submitted, roles assigned")
	return nil
}
