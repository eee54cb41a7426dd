package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
	"github.com/impostorlabs/lobby-system/internal/metrics"
)

type voteService struct {
	store ports.LobbyStore
	log   zerolog.Logger
}

// NewVoteService returns the VoteService implementing casting, tally and
// win-condition evaluation.
func NewVoteService(store ports.LobbyStore, log zerolog.Logger) ports.VoteService {
	return &voteService{store: store, log: log}
}

// CastVote records one vote for the current round. Re-voting overwrites
// (last write wins). The vote, the quorum check and any resulting
// elimination, win evaluation and round advance happen inside a single
// compare-and-set update, so two near-simultaneous final votes converge on
// one outcome instead of racing.
func (s *voteService) CastVote(ctx context.Context, input ports.CastVoteInput) error {
	lobby, err := s.store.Update(ctx, input.Code, func(l *domain.Lobby) error {
		if l.Status != domain.StatusPlaying {
			return domain.ErrInvalidState
		}
		voter, ok := l.Players[input.VoterID]
		if !ok {
			return domain.ErrNotMember
		}
		if voter.Eliminated {
			return domain.ErrInvalidState
		}
		target, ok := l.Players[input.TargetID]
		if !ok || target.Eliminated || input.TargetID == input.VoterID {
			return domain.ErrInvalidVote
		}

		if l.Votes == nil {
			l.Votes = map[int]map[string]string{}
		}
		if l.Votes[l.Round] == nil {
			l.Votes[l.Round] = map[string]string{}
		}
		l.Votes[l.Round][input.VoterID] = input.TargetID

		concludeRoundIfQuorum(l, time.Now().UTC())
		return nil
	})
	if err != nil {
		return err
	}

	if lobby.Status == domain.StatusReveal {
		metrics.GamesConcludedTotal.WithLabelValues(string(lobby.Winner)).Inc()
		s.log.Info().
			Str("code", input.Code).
			Str("winner", string(lobby.Winner)).
			Int("round", lobby.Round).
			Msg("game concluded")
	}

	s.log.Debug().
		Str("code", input.Code).
		Str("voter", input.VoterID).
		Int("round", lobby.Round).
		Str("status", string(lobby.Status)).
		Msg("vote cast")
	return nil
}

// concludeRoundIfQuorum evaluates the current round once every
// non-eliminated player has a recorded vote. A strict maximum eliminates its
// target and triggers win evaluation; a tie re-opens voting for the same
// round with the ballots cleared. Repeated application against the same
// state is a no-op, which is what lets concurrent writers converge.
//
// Returns true when the round concluded (someone was eliminated).
func concludeRoundIfQuorum(l *domain.Lobby, at time.Time) bool {
	if l.Status != domain.StatusPlaying {
		return false
	}

	votes := l.CurrentVotes()
	for _, p := range l.Players {
		if p.Eliminated {
			continue
		}
		if _, voted := votes[p.ID]; !voted {
			return false
		}
	}

	// Tally only ballots that are still meaningful: the voter must still be
	// a live player and the target must still be in the lobby.
	tally := map[string]int{}
	for voterID, targetID := range votes {
		voter, ok := l.Players[voterID]
		if !ok || voter.Eliminated {
			continue
		}
		if _, ok := l.Players[targetID]; !ok {
			continue
		}
		tally[targetID]++
	}

	maxCount := 0
	var leaders []string
	for targetID, count := range tally {
		switch {
		case count > maxCount:
			maxCount = count
			leaders = []string{targetID}
		case count == maxCount:
			leaders = append(leaders, targetID)
		}
	}
	sort.Strings(leaders)

	if len(leaders) != 1 {
		// Tie (or no valid ballots at all): nobody is eliminated and the
		// round does not advance — voting re-opens.
		delete(l.Votes, l.Round)
		return false
	}

	eliminatedID := leaders[0]
	eliminated := l.Players[eliminatedID]
	eliminated.Eliminated = true

	impostors, citizens := l.AliveCounts()
	winner := domain.WinnerNone
	switch {
	case impostors == 0:
		winner = domain.WinnerCitizens
	case impostors >= citizens:
		// Parity is enough: with one impostor the game ends the instant a
		// single citizen remains.
		winner = domain.WinnerImpostors
	}

	if l.Results == nil {
		l.Results = map[int]domain.RoundResult{}
	}
	l.Results[l.Round] = domain.RoundResult{
		Tally:         tally,
		EliminatedID:  eliminatedID,
		ImpostorFound: eliminated.IsImpostor,
		Winner:        winner,
		At:            at.UnixMilli(),
	}

	if winner != domain.WinnerNone {
		l.Status = domain.StatusReveal
		l.Winner = winner
	} else {
		l.Round++
	}
	return true
}
