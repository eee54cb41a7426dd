package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/impostorlabs/lobby-system/internal/core/domain"
	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

type stubGameService struct {
	startFn func(ctx context.Context, code, playerID string) error
	wordFn  func(ctx context.Context, input ports.SubmitWordInput) error
}

func (s *stubGameService) StartGame(ctx context.Context, code, playerID string) error {
	return s.startFn(ctx, code, playerID)
}

func (s *stubGameService) SubmitWord(ctx context.Context, input ports.SubmitWordInput) error {
	return s.wordFn(ctx, input)
}

type stubVoteService struct {
	castFn func(ctx context.Context, input ports.CastVoteInput) error
}

func (s *stubVoteService) CastVote(ctx context.Context, input ports.CastVoteInput) error {
	return s.castFn(ctx, input)
}

func TestGameHandler_Start(t *testing.T) {
	stub := &stubGameService{
		startFn: func(ctx context.Context, code, playerID string) error {
			if code != "AB12" || playerID != "p1" {
				t.Fatalf("unexpected args: %s %s", code, playerID)
			}
			return nil
		},
	}
	handler := NewGameHandler(stub, &stubVoteService{})

	c, rec := newTestContext(http.MethodPost, "/lobbies/AB12/start", "", "p1")
	c.SetParamNames("code")
	c.SetParamValues("AB12")

	if err := handler.Start(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestGameHandler_Start_NotHostPassesThrough(t *testing.T) {
	stub := &stubGameService{
		startFn: func(ctx context.Context, code, playerID string) error {
			return domain.ErrNotHost
		},
	}
	handler := NewGameHandler(stub, &stubVoteService{})

	c, _ := newTestContext(http.MethodPost, "/lobbies/AB12/start", "", "p2")
	c.SetParamNames("code")
	c.SetParamValues("AB12")

	if err := handler.Start(c); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("expected ErrNotHost, got %v", err)
	}
}

func TestGameHandler_SubmitWord(t *testing.T) {
	stub := &stubGameService{
		wordFn: func(ctx context.Context, input ports.SubmitWordInput) error {
			if input.Word != "guitar" || input.Hint != "instrument" || input.PlayerID != "p2" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return nil
		},
	}
	handler := NewGameHandler(stub, &stubVoteService{})

	c, rec := newTestContext(http.MethodPost, "/lobbies/AB12/word", `{"word":"guitar","hint":"instrument"}`, "p2")
	c.SetParamNames("code")
	c.SetParamValues("AB12")

	if err := handler.SubmitWord(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestGameHandler_SubmitWord_MissingWord(t *testing.T) {
	stub := &stubGameService{
		wordFn: func(ctx context.Context, input ports.SubmitWordInput) error {
			t.Fatal("should not be called")
			return nil
		},
	}
	handler := NewGameHandler(stub, &stubVoteService{})

	c, _ := newTestContext(http.MethodPost, "/lobbies/AB12/word", `{"hint":"instrument"}`, "p2")
	c.SetParamNames("code")
	c.SetParamValues("AB12")

	err := handler.SubmitWord(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGameHandler_Vote(t *testing.T) {
	stub := &stubVoteService{
		castFn: func(ctx context.Context, input ports.CastVoteInput) error {
			if input.VoterID != "p2" || input.TargetID != "p3" || input.Code != "AB12" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return nil
		},
	}
	handler := NewGameHandler(&stubGameService{}, stub)

	c, rec := newTestContext(http.MethodPost, "/lobbies/AB12/vote", `{"targetId":"p3"}`, "p2")
	c.SetParamNames("code")
	c.SetParamValues("AB12")

	if err := handler.Vote(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestGameHandler_Vote_InvalidTargetPassesThrough(t *testing.T) {
	stub := &stubVoteService{
		castFn: func(ctx context.Context, input ports.CastVoteInput) error {
			return domain.ErrInvalidVote
		},
	}
	handler := NewGameHandler(&stubGameService{}, stub)

	c, _ := newTestContext(http.MethodPost, "/lobbies/AB12/vote", `{"targetId":"p2"}`, "p2")
	c.SetParamNames("code")
	c.SetParamValues("AB12")

	if err := handler.Vote(c); !errors.Is(err, domain.ErrInvalidVote) {
		t.Fatalf("expected ErrInvalidVote, got %v", err)
	}
}
