package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/skip2/go-qrcode"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

// ShareHandler renders a lobby's join link as a QR code so co-located
// players can scan instead of typing the code.
type ShareHandler struct {
	store   ports.LobbyStore
	baseURL string
}

func NewShareHandler(store ports.LobbyStore, baseURL string) *ShareHandler {
	return &ShareHandler{store: store, baseURL: baseURL}
}

// QR handles GET /lobbies/:code/share.
func (h *ShareHandler) QR(c echo.Context) error {
	code := pathCode(c)

	// Only advertise lobbies that actually exist.
	if _, err := h.store.Get(c.Request().Context(), code); err != nil {
		return err
	}

	joinURL := fmt.Sprintf("%s/join/%s", h.baseURL, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
