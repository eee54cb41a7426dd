package service

import (
	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

// Project derives the display-ready view of a lobby for one viewer. It is a
// pure function of (snapshot, viewer identity): role and word visibility,
// the player list, and which actions the viewer may take right now.
//
// A viewer who is not in the player map gets a spectator view with
// everything secret hidden and no actions enabled.
func Project(l *domain.Lobby, viewerID string) *ports.LobbyView {
	viewer := l.Players[viewerID]
	inGame := l.Status == domain.StatusPlaying || l.Status == domain.StatusReveal
	votes := l.CurrentVotes()

	view := &ports.LobbyView{
		Code:     l.Code,
		Status:   l.Status,
		Round:    l.Round,
		Winner:   l.Winner,
		Settings: l.Settings,
		YourRole: ports.RoleHidden,
	}

	// Own role only, and only once the game is underway. Other players'
	// roles never appear in a projection.
	if viewer != nil && inGame {
		if viewer.IsImpostor {
			view.YourRole = ports.RoleImpostor
		} else {
			view.YourRole = ports.RoleCitizen
		}
	}

	// The word is for citizens only; impostors and spectators get nothing.
	if viewer != nil && inGame && !viewer.IsImpostor && l.Word != "" {
		view.Word = l.Word
		view.WordVisible = true
	}

	// The hint is deliberately not secret.
	if inGame && l.Hint != "" {
		view.Hint = l.Hint
	}

	for _, p := range l.SortedPlayers() {
		_, hasVoted := votes[p.ID]
		view.Players = append(view.Players, ports.PlayerView{
			ID:         p.ID,
			Name:       p.Name,
			You:        p.ID == viewerID,
			Host:       p.ID == l.HostID,
			Eliminated: p.Eliminated,
			Connected:  p.Connected,
			HasVoted:   hasVoted,
		})
	}

	// Current-round ballots are played face-up.
	for _, p := range l.SortedPlayers() {
		targetID, ok := votes[p.ID]
		if !ok {
			continue
		}
		view.Votes = append(view.Votes, ports.VoteView{
			VoterID:    p.ID,
			VoterName:  p.Name,
			TargetID:   targetID,
			TargetName: playerName(l, targetID),
		})
	}

	if viewer != nil {
		isHost := viewer.ID == l.HostID
		restable := l.Status == domain.StatusLobby || l.Status == domain.StatusReveal
		view.CanStart = isHost && restable
		view.CanClose = isHost
		view.CanEditSettings = isHost && restable
		view.CanSubmitWord = l.Status == domain.StatusChoosingWord && l.WordChooser == viewerID

		_, alreadyVoted := votes[viewerID]
		view.CanVote = l.Status == domain.StatusPlaying && !viewer.Eliminated && !alreadyVoted
		if l.Status == domain.StatusPlaying && !viewer.Eliminated {
			for _, p := range l.SortedPlayers() {
				if p.ID == viewerID || p.Eliminated {
					continue
				}
				view.VoteTargets = append(view.VoteTargets, p.ID)
			}
		}
	}

	view.SmallGame = l.Status != domain.StatusLobby && len(l.Players) < 3

	if len(l.Results) > 0 {
		view.Results = l.Results
	}

	return view
}

// playerName resolves an id for display, falling back to a short id prefix
// when the player has already left.
func playerName(l *domain.Lobby, id string) string {
	if p, ok := l.Players[id]; ok {
		return p.Name
	}
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
