package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
	"github.com/impostorlabs/lobby-system/internal/metrics"
)

// GameHandler handles HTTP requests for the round lifecycle and voting.
type GameHandler struct {
	games ports.GameService
	votes ports.VoteService
}

func NewGameHandler(games ports.GameService, votes ports.VoteService) *GameHandler {
	return &GameHandler{games: games, votes: votes}
}

type submitWordRequest struct {
	Word string `json:"word" validate:"required,min=1,max=64"`
	Hint string `json:"hint,omitempty" validate:"omitempty,max=64"`
}

type castVoteRequest struct {
	TargetID string `json:"targetId" validate:"required"`
}

// Start handles POST /lobbies/:code/start. Host only.
func (h *GameHandler) Start(c echo.Context) error {
	playerID, err := ctxPlayerID(c)
	if err != nil {
		return err
	}

	if err := h.games.StartGame(c.Request().Context(), pathCode(c), playerID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SubmitWord handles POST /lobbies/:code/word. Chooser only.
func (h *GameHandler) SubmitWord(c echo.Context) error {
	var req submitWordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	playerID, err := ctxPlayerID(c)
	if err != nil {
		return err
	}

	err = h.games.SubmitWord(c.Request().Context(), ports.SubmitWordInput{
		Code:     pathCode(c),
		PlayerID: playerID,
		Word:     req.Word,
		Hint:     req.Hint,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Vote handles POST /lobbies/:code/vote.
func (h *GameHandler) Vote(c echo.Context) error {
	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	playerID, err := ctxPlayerID(c)
	if err != nil {
		return err
	}

	err = h.votes.CastVote(c.Request().Context(), ports.CastVoteInput{
		Code:     pathCode(c),
		VoterID:  playerID,
		TargetID: req.TargetID,
	})
	if err != nil {
		return err
	}

	metrics.VotesCastTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}
