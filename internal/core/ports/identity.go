package ports

import (
	"context"
	"time"
)

// Identity is one anonymous player identity issued by the identity provider.
type Identity struct {
	PlayerID   string
	Name       string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// IdentityRepository persists issued identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *Identity) error
	Find(ctx context.Context, playerID string) (*Identity, error)
	TouchLastSeen(ctx context.Context, playerID string, at time.Time) error
}

// IdentitySession is returned to the client: the stable player id plus the
// bearer token that proves it on subsequent requests.
type IdentitySession struct {
	PlayerID string
	Name     string
	Token    string
}

// IdentityService issues anonymous session identities.
type IdentityService interface {
	Issue(ctx context.Context, name string) (*IdentitySession, error)
}
