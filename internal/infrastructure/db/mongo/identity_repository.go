package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

const identityCollection = "identities"

// IdentityRepository persists anonymous player identities in MongoDB.
type IdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *IdentityRepository {
	return &IdentityRepository{coll: db.Collection(identityCollection)}
}

var _ ports.IdentityRepository = (*IdentityRepository)(nil)

type mongoIdentity struct {
	PlayerID   string `bson:"_id"`
	Name       string `bson:"name"`
	CreatedAt  int64  `bson:"created_at"`
	LastSeenAt int64  `bson:"last_seen_at"`
}

func (r *IdentityRepository) Create(ctx context.Context, identity *ports.Identity) error {
	doc := mongoIdentity{
		PlayerID:   identity.PlayerID,
		Name:       identity.Name,
		CreatedAt:  identity.CreatedAt.Unix(),
		LastSeenAt: identity.LastSeenAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *IdentityRepository) Find(ctx context.Context, playerID string) (*ports.Identity, error) {
	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, bson.M{"_id": playerID}).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}

	return &ports.Identity{
		PlayerID:   mi.PlayerID,
		Name:       mi.Name,
		CreatedAt:  unixToTime(mi.CreatedAt),
		LastSeenAt: unixToTime(mi.LastSeenAt),
	}, nil
}

func (r *IdentityRepository) TouchLastSeen(ctx context.Context, playerID string, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": playerID},
		bson.M{"$set": bson.M{"last_seen_at": at.Unix()}},
	)
	if err != nil {
		return fmt.Errorf("touch identity: %w", err)
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
