package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

// IdentityService issues anonymous session identities: a stable random
// player id persisted server-side plus a signed token the client presents on
// every subsequent request. There are no credentials — the token is the
// identity.
type IdentityService struct {
	repo      ports.IdentityRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewIdentityService(repo ports.IdentityRepository, jwtSecret string, tokenTTL time.Duration) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &IdentityService{repo: repo, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *IdentityService) Issue(ctx context.Context, name string) (*ports.IdentitySession, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	identity := &ports.Identity{
		PlayerID:   uuid.NewString(),
		Name:       name,
		CreatedAt:  now,
		LastSeenAt: now,
	}

	if err := s.repo.Create(ctx, identity); err != nil {
		return nil, err
	}

	token, err := s.generateToken(identity)
	if err != nil {
		return nil, err
	}

	return &ports.IdentitySession{
		PlayerID: identity.PlayerID,
		Name:     identity.Name,
		Token:    token,
	}, nil
}

func (s *IdentityService) generateToken(identity *ports.Identity) (string, error) {
	claims := jwt.MapClaims{
		"player_id": identity.PlayerID,
		"name":      identity.Name,
		"exp":       time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
