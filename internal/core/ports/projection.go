package ports

import "github.com/impostorlabs/lobby-system/internal/core/domain"

// Role is what the viewer is allowed to know about a role.
const (
	RoleHidden   = "hidden"
	RoleCitizen  = "citizen"
	RoleImpostor = "impostor"
)

// PlayerView is one row of the projected player list. Other players' roles
// are never present here regardless of what the raw record contains.
type PlayerView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	You        bool   `json:"you"`
	Host       bool   `json:"host"`
	Eliminated bool   `json:"eliminated"`
	Connected  bool   `json:"connected"`
	HasVoted   bool   `json:"hasVoted"`
}

// VoteView is one cast vote of the current round. Votes are played face-up.
type VoteView struct {
	VoterID    string `json:"voterId"`
	VoterName  string `json:"voterName"`
	TargetID   string `json:"targetId"`
	TargetName string `json:"targetName"`
}

// LobbyView is the display-ready projection of a lobby for one viewer: what
// this player is allowed to see and which actions are available to them.
type LobbyView struct {
	Code     string             `json:"code"`
	Status   domain.LobbyStatus `json:"status"`
	Round    int                `json:"round"`
	Winner   domain.Winner      `json:"winner"`
	Settings domain.Settings    `json:"settings"`

	// YourRole is RoleHidden outside playing/reveal and for spectating
	// states; never anyone else's role.
	YourRole string `json:"yourRole"`
	// Word is the secret word when the viewer may see it, empty otherwise.
	Word        string `json:"word,omitempty"`
	WordVisible bool   `json:"wordVisible"`
	// Hint is deliberately not secret.
	Hint string `json:"hint,omitempty"`

	Players []PlayerView `json:"players"`
	Votes   []VoteView   `json:"votes"`

	// Actions available to this viewer in the current state.
	CanStart        bool     `json:"canStart"`
	CanClose        bool     `json:"canClose"`
	CanEditSettings bool     `json:"canEditSettings"`
	CanSubmitWord   bool     `json:"canSubmitWord"`
	CanVote         bool     `json:"canVote"`
	VoteTargets     []string `json:"voteTargets"`

	// SmallGame flags a started game with fewer than the recommended
	// three players.
	SmallGame bool `json:"smallGame"`

	Results map[int]domain.RoundResult `json:"results,omitempty"`
}
