package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
	"github.com/impostorlabs/lobby-system/internal/core/service"
	"github.com/impostorlabs/lobby-system/internal/infrastructure/sweep"
	"github.com/impostorlabs/lobby-system/internal/metrics"
)

const (
	heartbeatInterval = 5 * time.Second
	writeTimeout      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamHandler pushes per-viewer lobby projections over a websocket.
//
// The open socket doubles as the liveness signal: while it lives the server
// heartbeats the player's presence, and when it drops the player is marked
// disconnected, to be evicted by a later sweep unless they reconnect.
type StreamHandler struct {
	store   ports.LobbyStore
	lobbies ports.LobbyService
	sweeper *sweep.Sweeper
	log     zerolog.Logger
}

func NewStreamHandler(store ports.LobbyStore, lobbies ports.LobbyService, sweeper *sweep.Sweeper, log zerolog.Logger) *StreamHandler {
	return &StreamHandler{store: store, lobbies: lobbies, sweeper: sweeper, log: log}
}

// Serve handles GET /lobbies/:code/ws.
func (h *StreamHandler) Serve(c echo.Context) error {
	playerID, err := ctxPlayerID(c)
	if err != nil {
		return err
	}
	code := pathCode(c)

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Subscribe before upgrading so a missing lobby still surfaces as a
	// plain HTTP 404.
	snapshots, err := h.store.Subscribe(ctx, code)
	if err != nil {
		return err
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	metrics.StreamClients.Inc()
	h.log.Debug().Str("code", code).Str("player_id", playerID).Msg("stream opened")

	defer func() {
		metrics.StreamClients.Dec()
		_ = conn.Close()

		// The request context is gone by now; give the disconnect write its
		// own deadline.
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := h.lobbies.MarkDisconnected(dctx, code, playerID); err != nil {
			h.log.Warn().Err(err).Str("code", code).Str("player_id", playerID).Msg("failed to mark player disconnected")
		}
		h.log.Debug().Str("code", code).Str("player_id", playerID).Msg("stream closed")
	}()

	// Reader goroutine: we expect no client messages, but reading is how
	// websockets learn the peer went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if err := h.lobbies.Heartbeat(ctx, code, playerID); err != nil {
				h.log.Warn().Err(err).Str("code", code).Msg("heartbeat failed")
			}
			h.sweeper.Enqueue(code)

		case snapshot, ok := <-snapshots:
			if !ok {
				// Lobby deleted (or store stream ended): tell the client
				// and finish.
				deadline := time.Now().Add(writeTimeout)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "lobby closed"), deadline)
				return nil
			}

			view := service.Project(snapshot, playerID)
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(view); err != nil {
				return nil
			}
		}
	}
}
