package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET, default=dev-only-secret"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	PublicURL string `env:"PUBLIC_URL, default=http://localhost:8080"`

	Lobby LobbyConfig
	Mongo MongoConfig
	Redis RedisConfig
}

type LobbyConfig struct {
	// ConnTimeout marks a silent player disconnected; EvictAfter removes
	// them from the lobby entirely.
	ConnTimeout  time.Duration `env:"LOBBY_CONN_TIMEOUT,  default=15s"`
	EvictAfter   time.Duration `env:"LOBBY_EVICT_AFTER,   default=60s"`
	SweepWorkers int           `env:"LOBBY_SWEEP_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=impostor_lobby"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
