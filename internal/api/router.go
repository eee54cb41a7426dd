package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/impostorlabs/lobby-system/internal/api/handler"
	"github.com/impostorlabs/lobby-system/internal/api/middleware"
	"github.com/impostorlabs/lobby-system/internal/core/service"
	"github.com/impostorlabs/lobby-system/internal/infrastructure/config"
	mongodb "github.com/impostorlabs/lobby-system/internal/infrastructure/db/mongo"
	redisstore "github.com/impostorlabs/lobby-system/internal/infrastructure/db/redis"
	"github.com/impostorlabs/lobby-system/internal/infrastructure/sweep"
)

// NewRouter builds the Echo instance with all routes registered. The
// returned Sweeper must be started by the caller; it runs the periodic
// liveness sweeps the stream handler schedules.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *sweep.Sweeper) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Dependencies ---
	store := redisstore.NewLobbyStore(rdb, log)
	presence := redisstore.NewPresenceTracker(rdb)

	lobbyService := service.NewLobbyService(store, presence, cfg.Lobby.ConnTimeout, cfg.Lobby.EvictAfter, log)
	gameService := service.NewGameService(store, log)
	voteService := service.NewVoteService(store, log)

	identityRepo := mongodb.NewIdentityRepository(db)
	identityService := service.NewIdentityService(identityRepo, cfg.JWTSecret, 24*time.Hour)

	sweeper := sweep.NewSweeper(cfg.Lobby.SweepWorkers, lobbyService, log)

	lobbyHandler := handler.NewLobbyHandler(lobbyService)
	gameHandler := handler.NewGameHandler(gameService, voteService)
	identityHandler := handler.NewIdentityHandler(identityService)
	streamHandler := handler.NewStreamHandler(store, lobbyService, sweeper, log)
	shareHandler := handler.NewShareHandler(store, cfg.PublicURL)

	// --- Identity ---
	e.POST("/identity", identityHandler.Issue)

	// --- Lobby + game (identity required) ---
	lobbies := e.Group("/lobbies", middleware.Identity(cfg.JWTSecret))
	lobbies.POST("", lobbyHandler.Create)
	lobbies.POST("/:code/join", lobbyHandler.Join)
	lobbies.POST("/:code/leave", lobbyHandler.Leave)
	lobbies.DELETE("/:code", lobbyHandler.Close)
	lobbies.PATCH("/:code/settings", lobbyHandler.UpdateSettings)
	lobbies.POST("/:code/start", gameHandler.Start)
	lobbies.POST("/:code/word", gameHandler.SubmitWord)
	lobbies.POST("/:code/vote", gameHandler.Vote)
	lobbies.GET("/:code/ws", streamHandler.Serve)
	lobbies.GET("/:code/share", shareHandler.QR)

	// --- Health probes + metrics (no identity required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e, sweeper
}
