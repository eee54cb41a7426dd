package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

type stubIdentityRepo struct {
	created   []*ports.Identity
	createErr error
}

func (r *stubIdentityRepo) Create(_ context.Context, identity *ports.Identity) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, identity)
	return nil
}

func (r *stubIdentityRepo) Find(_ context.Context, playerID string) (*ports.Identity, error) {
	for _, id := range r.created {
		if id.PlayerID == playerID {
			return id, nil
		}
	}
	return nil, domain.ErrIdentityNotFound
}

func (r *stubIdentityRepo) TouchLastSeen(_ context.Context, playerID string, at time.Time) error {
	return nil
}

func TestIssue_PersistsAndSignsToken(t *testing.T) {
	repo := &stubIdentityRepo{}
	svc := NewIdentityService(repo, "test-secret", time.Hour)

	session, err := svc.Issue(context.Background(), "  Alice  ")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if session.PlayerID == "" || session.Token == "" {
		t.Fatalf("incomplete session: %+v", session)
	}
	if session.Name != "Alice" {
		t.Fatalf("expected trimmed name, got %q", session.Name)
	}
	if len(repo.created) != 1 || repo.created[0].PlayerID != session.PlayerID {
		t.Fatal("identity not persisted")
	}

	parsed, err := jwt.Parse(session.Token, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["player_id"] != session.PlayerID || claims["name"] != "Alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatal("token must carry an expiry")
	}
}

func TestIssue_DistinctIdentities(t *testing.T) {
	svc := NewIdentityService(&stubIdentityRepo{}, "test-secret", time.Hour)

	a, err := svc.Issue(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("issue a: %v", err)
	}
	b, err := svc.Issue(context.Background(), "Alice")
	if err != nil {
		t.Fatalf("issue b: %v", err)
	}
	if a.PlayerID == b.PlayerID {
		t.Fatal("two sessions under the same name must not share a player id")
	}
}

func TestIssue_BadNameRejected(t *testing.T) {
	svc := NewIdentityService(&stubIdentityRepo{}, "test-secret", time.Hour)

	if _, err := svc.Issue(context.Background(), "   "); !errors.Is(err, domain.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestIssue_RepoFailurePropagates(t *testing.T) {
	repo := &stubIdentityRepo{createErr: errors.New("mongo down")}
	svc := NewIdentityService(repo, "test-secret", time.Hour)

	if _, err := svc.Issue(context.Background(), "Alice"); err == nil {
		t.Fatal("expected persistence error to surface")
	}
}
