package sweep

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Sweeper runs liveness sweeps over lobbies on a fixed set of workers,
// sharded by lobby code so two sweeps of the same lobby never run
// concurrently (sweeps of one lobby stay ordered; distinct lobbies proceed
// in parallel).
type Sweeper struct {
	workers []chan string
	lobbies ports.LobbyService
	log     zerolog.Logger
}

// NewSweeper creates a Sweeper with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSweeper(numWorkers int, lobbies ports.LobbyService, log zerolog.Logger) *Sweeper {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	s := &Sweeper{
		workers: make([]chan string, numWorkers),
		lobbies: lobbies,
		log:     log,
	}
	for i := range s.workers {
		s.workers[i] = make(chan string, channelBuffer)
	}
	return s
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	for i, ch := range s.workers {
		go s.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules a liveness sweep for the given lobby. Best effort: when
// the shard's buffer is full the sweep is dropped, the next tick will
// schedule another.
func (s *Sweeper) Enqueue(code string) {
	select {
	case s.workers[s.shardIndex(code)] <- code:
	default:
	}
}

// shardIndex maps a lobby code deterministically to a worker index.
func (s *Sweeper) shardIndex(code string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(code))
	return int(h.Sum32()) % len(s.workers)
}

func (s *Sweeper) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case code, ok := <-ch:
			if !ok {
				return
			}
			if err := s.lobbies.ReapDisconnected(ctx, code); err != nil {
				s.log.Error().Err(err).
					Str("code", code).
					Int("worker_id", id).
					Msg("liveness sweep failed")
			}
		}
	}
}
