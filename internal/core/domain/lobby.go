package domain

import (
	"sort"
	"time"
)

// LobbyStatus represents the lifecycle state of a lobby.
type LobbyStatus string

const (
	StatusLobby        LobbyStatus = "lobby"
	StatusChoosingWord LobbyStatus = "choosingWord"
	StatusPlaying      LobbyStatus = "playing"
	StatusReveal       LobbyStatus = "reveal"
)

// validTransitions defines the allowed state machine transitions.
// reveal loops back to choosingWord when the host starts a new game;
// lobby deletion is terminal and not modelled as a status.
var validTransitions = map[LobbyStatus][]LobbyStatus{
	StatusLobby:        {StatusChoosingWord},
	StatusChoosingWord: {StatusPlaying},
	StatusPlaying:      {StatusPlaying, StatusReveal},
	StatusReveal:       {StatusChoosingWord},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s LobbyStatus) CanTransitionTo(next LobbyStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Winner identifies which side won the current game, if any.
type Winner string

const (
	WinnerNone      Winner = "none"
	WinnerCitizens  Winner = "citizens"
	WinnerImpostors Winner = "impostors"
)

// HintPlaceholder is stored when hints are enabled but the chooser left the
// hint empty.
const HintPlaceholder = "(no hint)"

// Settings are the host-tunable game parameters.
type Settings struct {
	ImpostorCount int  `json:"impostorCount"`
	UseHint       bool `json:"useHint"`
}

// DefaultSettings returns the settings a freshly created lobby starts with.
func DefaultSettings() Settings {
	return Settings{ImpostorCount: 1, UseHint: false}
}

// Player is one participant in a lobby.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsImpostor bool   `json:"isImpostor"`
	JoinedAt   int64  `json:"joinedAt"`
	Eliminated bool   `json:"eliminated"`
	Connected  bool   `json:"connected"`
}

// RoundResult records the outcome of one concluded voting round.
type RoundResult struct {
	Tally         map[string]int `json:"tally"`
	EliminatedID  string         `json:"eliminatedId,omitempty"`
	ImpostorFound bool           `json:"impostorFound"`
	Winner        Winner         `json:"winner"`
	At            int64          `json:"at"`
}

// Lobby is the root aggregate shared by all clients of one game session.
// Its JSON encoding is the wire contract: this exact document is what lives
// in the store and what a compatible reimplementation must read and write.
type Lobby struct {
	Code        string                    `json:"code"`
	HostID      string                    `json:"hostId"`
	CreatedAt   int64                     `json:"createdAt"`
	Status      LobbyStatus               `json:"status"`
	Round       int                       `json:"round"`
	Word        string                    `json:"word"`
	Hint        string                    `json:"hint,omitempty"`
	WordChooser string                    `json:"wordChooser,omitempty"`
	Settings    Settings                  `json:"settings"`
	Winner      Winner                    `json:"winner"`
	Players     map[string]*Player        `json:"players"`
	Votes       map[int]map[string]string `json:"votes,omitempty"`
	Results     map[int]RoundResult       `json:"results,omitempty"`
}

// NewLobby returns a fresh lobby with the creator as sole player and host.
func NewLobby(code string, host *Player, now time.Time) *Lobby {
	return &Lobby{
		Code:      code,
		HostID:    host.ID,
		CreatedAt: now.UnixMilli(),
		Status:    StatusLobby,
		Round:     0,
		Settings:  DefaultSettings(),
		Winner:    WinnerNone,
		Players:   map[string]*Player{host.ID: host},
		Votes:     map[int]map[string]string{},
		Results:   map[int]RoundResult{},
	}
}

// SortedPlayers returns the players ordered by join time, id as tie-break.
// This is the canonical ordering for display and for deterministic choices
// such as host promotion.
func (l *Lobby) SortedPlayers() []*Player {
	players := make([]*Player, 0, len(l.Players))
	for _, p := range l.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].JoinedAt != players[j].JoinedAt {
			return players[i].JoinedAt < players[j].JoinedAt
		}
		return players[i].ID < players[j].ID
	})
	return players
}

// CurrentVotes returns the vote map for the current round, never nil.
func (l *Lobby) CurrentVotes() map[string]string {
	if l.Votes == nil {
		return map[string]string{}
	}
	votes, ok := l.Votes[l.Round]
	if !ok {
		return map[string]string{}
	}
	return votes
}

// AliveCounts tallies non-eliminated players by side.
func (l *Lobby) AliveCounts() (impostors, citizens int) {
	for _, p := range l.Players {
		if p.Eliminated {
			continue
		}
		if p.IsImpostor {
			impostors++
		} else {
			citizens++
		}
	}
	return impostors, citizens
}

// ImpostorQuota clamps the configured impostor count to the legal range for
// the given candidate pool size (at least 1, at most the pool itself).
func (l *Lobby) ImpostorQuota(candidates int) int {
	n := l.Settings.ImpostorCount
	if n < 1 {
		n = 1
	}
	if n > candidates {
		n = candidates
	}
	return n
}
