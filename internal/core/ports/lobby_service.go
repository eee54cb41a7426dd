package ports

import (
	"context"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
)

// CreateLobbyInput carries the caller's identity and display name.
type CreateLobbyInput struct {
	PlayerID   string
	PlayerName string
}

// JoinLobbyInput identifies the lobby to join and the joining player.
type JoinLobbyInput struct {
	Code       string
	PlayerID   string
	PlayerName string
}

// UpdateSettingsInput carries a partial settings change. Nil fields are left
// untouched.
type UpdateSettingsInput struct {
	Code          string
	PlayerID      string
	ImpostorCount *int
	UseHint       *bool
}

// SubmitWordInput carries the chooser's secret word and optional hint.
type SubmitWordInput struct {
	Code     string
	PlayerID string
	Word     string
	Hint     string
}

// CastVoteInput carries one vote for the current round.
type CastVoteInput struct {
	Code     string
	VoterID  string
	TargetID string
}

// LobbyResult is returned by Create and Join.
type LobbyResult struct {
	Code  string
	Lobby *domain.Lobby
}

// LobbyService owns the lobby record lifecycle: creation, membership,
// host migration, settings, teardown.
type LobbyService interface {
	Create(ctx context.Context, input CreateLobbyInput) (*LobbyResult, error)
	Join(ctx context.Context, input JoinLobbyInput) (*LobbyResult, error)
	Leave(ctx context.Context, code, playerID string) error
	Close(ctx context.Context, code, playerID string) error
	UpdateSettings(ctx context.Context, input UpdateSettingsInput) error

	// Heartbeat records liveness for a player whose stream is open.
	Heartbeat(ctx context.Context, code, playerID string) error
	// MarkDisconnected flips connected=false when a player's stream drops.
	MarkDisconnected(ctx context.Context, code, playerID string) error
	// ReapDisconnected removes players whose last heartbeat is older than
	// the eviction window, applying the same host-migration and
	// delete-on-empty rules as an explicit leave.
	ReapDisconnected(ctx context.Context, code string) error
}

// GameService drives the round lifecycle: starting a game cycle and the
// word submission / role assignment step.
type GameService interface {
	StartGame(ctx context.Context, code, playerID string) error
	SubmitWord(ctx context.Context, input SubmitWordInput) error
}

// VoteService implements vote casting, tally, elimination and win-condition
// evaluation.
type VoteService interface {
	CastVote(ctx context.Context, input CastVoteInput) error
}
