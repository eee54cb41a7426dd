package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

// IdentityHandler issues anonymous session identities.
type IdentityHandler struct {
	service ports.IdentityService
}

func NewIdentityHandler(service ports.IdentityService) *IdentityHandler {
	return &IdentityHandler{service: service}
}

type issueIdentityRequest struct {
	Name string `json:"name" validate:"required,min=1,max=24"`
}

type issueIdentityResponse struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

// Issue handles POST /identity.
func (h *IdentityHandler) Issue(c echo.Context) error {
	var req issueIdentityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.service.Issue(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, issueIdentityResponse{
		PlayerID: session.PlayerID,
		Name:     session.Name,
		Token:    session.Token,
	})
}
