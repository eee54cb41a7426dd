package ports

import (
	"context"
	"time"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
)

// MutateFunc edits a lobby in place. Returning an error aborts the update
// and nothing is written.
type MutateFunc func(*domain.Lobby) error

// LobbyStore abstracts the shared state store holding lobby records.
//
// Implementations must provide:
//   - atomic create-if-absent (Create returns domain.ErrConflict when the
//     code is taken),
//   - optimistic read-modify-write (Update re-reads and re-applies mutate
//     when a concurrent writer got in first, so every mutation converges),
//   - deletion of a lobby the moment an update leaves it without players.
type LobbyStore interface {
	// Create writes a fresh lobby iff no record exists for its code.
	Create(ctx context.Context, lobby *domain.Lobby) error

	// Get returns the current record, or domain.ErrLobbyNotFound.
	Get(ctx context.Context, code string) (*domain.Lobby, error)

	// Update applies mutate to the current record under compare-and-set
	// semantics and returns the written state. If mutate empties the player
	// map the record is deleted instead of written and the returned lobby
	// is nil.
	Update(ctx context.Context, code string, mutate MutateFunc) (*domain.Lobby, error)

	// Delete removes the record outright. Deleting an absent lobby is a no-op.
	Delete(ctx context.Context, code string) error

	// Subscribe returns a stream of full-record snapshots, beginning with
	// the current state. The channel closes when the lobby is deleted or
	// ctx is cancelled.
	Subscribe(ctx context.Context, code string) (<-chan *domain.Lobby, error)
}

// Presence tracks best-effort liveness per player, substituting a heartbeat
// scheme for a store-side on-disconnect hook.
type Presence interface {
	// Touch records a heartbeat for the player.
	Touch(ctx context.Context, code, playerID string) error

	// Forget drops the player's heartbeat record (explicit leave/disconnect).
	Forget(ctx context.Context, code, playerID string) error

	// LastSeen returns the most recent heartbeat per player.
	LastSeen(ctx context.Context, code string) (map[string]time.Time, error)
}
