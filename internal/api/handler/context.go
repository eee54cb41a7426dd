package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxPlayerID extracts the player identity injected by the Identity
// middleware. Presence proves the middleware ran; an empty id means the
// request slipped past it and must be rejected before any service call.
func ctxPlayerID(c echo.Context) (string, error) {
	playerID, _ := c.Get("player_id").(string)
	if playerID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing identity claims")
	}
	return playerID, nil
}
