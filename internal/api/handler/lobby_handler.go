package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
	"github.com/impostorlabs/lobby-system/internal/metrics"
)

// LobbyHandler handles HTTP requests for lobby lifecycle operations.
type LobbyHandler struct {
	service ports.LobbyService
}

func NewLobbyHandler(service ports.LobbyService) *LobbyHandler {
	return &LobbyHandler{service: service}
}

// --- Request / Response types ---

type createLobbyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=24"`
}

type joinLobbyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=24"`
}

type updateSettingsRequest struct {
	ImpostorCount *int  `json:"impostorCount,omitempty" validate:"omitempty,gte=1"`
	UseHint       *bool `json:"useHint,omitempty"`
}

type lobbyResponse struct {
	Code string `json:"code"`
}

// Create handles POST /lobbies.
func (h *LobbyHandler) Create(c echo.Context) error {
	var req createLobbyRequest
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

	result, err := h.service.Create(c.Request().Context(), ports.CreateLobbyInput{
		PlayerID:   playerID,
		PlayerName: req.Name,
	})
	if err != nil {
		return err
	}

	metrics.LobbiesCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, lobbyResponse{Code: result.Code})
}

// Join handles POST /lobbies/:code/join.
func (h *LobbyHandler) Join(c echo.Context) error {
	var req joinLobbyRequest
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

	result, err := h.service.Join(c.Request().Context(), ports.JoinLobbyInput{
		Code:       pathCode(c),
		PlayerID:   playerID,
		PlayerName: req.Name,
	})
	if err != nil {
		return err
	}

	metrics.PlayersJoinedTotal.Inc()
	return c.JSON(http.StatusOK, lobbyResponse{Code: result.Code})
}

// Leave handles POST /lobbies/:code/leave.
func (h *LobbyHandler) Leave(c echo.Context) error {
	playerID, err := ctxPlayerID(c)
	if err != nil {
		return err
	}

	if err := h.service.Leave(c.Request().Context(), pathCode(c), playerID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Close handles DELETE /lobbies/:code. Host only.
func (h *LobbyHandler) Close(c echo.Context) error {
	playerID, err := ctxPlayerID(c)
	if err != nil {
		return err
	}

	if err := h.service.Close(c.Request().Context(), pathCode(c), playerID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateSettings handles PATCH /lobbies/:code/settings. Host only.
func (h *LobbyHandler) UpdateSettings(c echo.Context) error {
	var req updateSettingsRequest
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

	err = h.service.UpdateSettings(c.Request().Context(), ports.UpdateSettingsInput{
		Code:          pathCode(c),
		PlayerID:      playerID,
		ImpostorCount: req.ImpostorCount,
		UseHint:       req.UseHint,
	})
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pathCode normalizes the :code path parameter the way players type it.
func pathCode(c echo.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("code")))
}
