package sweep

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/impostorlabs/lobby-system/internal/core/ports"
)

type reapRecorder struct {
	mu     sync.Mutex
	reaped []string
	done   chan struct{}
	want   int
}

func newReapRecorder(want int) *reapRecorder {
	return &reapRecorder{done: make(chan struct{}), want: want}
}

func (r *reapRecorder) ReapDisconnected(_ context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reaped = append(r.reaped, code)
	if len(r.reaped) == r.want {
		close(r.done)
	}
	return nil
}

func (r *reapRecorder) Create(context.Context, ports.CreateLobbyInput) (*ports.LobbyResult, error) {
	return nil, nil
}
func (r *reapRecorder) Join(context.Context, ports.JoinLobbyInput) (*ports.LobbyResult, error) {
	return nil, nil
}
func (r *reapRecorder) Leave(context.Context, string, string) error          { return nil }
func (r *reapRecorder) Close(context.Context, string, string) error         { return nil }
func (r *reapRecorder) UpdateSettings(context.Context, ports.UpdateSettingsInput) error {
	return nil
}
func (r *reapRecorder) Heartbeat(context.Context, string, string) error        { return nil }
func (r *reapRecorder) MarkDisconnected(context.Context, string, string) error { return nil }

func TestSweeper_RunsEnqueuedSweeps(t *testing.T) {
	recorder := newReapRecorder(3)
	s := NewSweeper(2, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	s.Enqueue("AB12")
	s.Enqueue("CD34")
	s.Enqueue("EF56")

	select {
	case <-recorder.done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeps did not run")
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	seen := map[string]bool{}
	for _, code := range recorder.reaped {
		seen[code] = true
	}
	for _, code := range []string{"AB12", "CD34", "EF56"} {
		if !seen[code] {
			t.Fatalf("lobby %s never swept, got %v", code, recorder.reaped)
		}
	}
}

func TestSweeper_ShardIsDeterministic(t *testing.T) {
	s := NewSweeper(4, newReapRecorder(0), zerolog.Nop())
	for _, code := range []string{"AB12", "CD34", "ZZZZ"} {
		first := s.shardIndex(code)
		for i := 0; i < 10; i++ {
			if s.shardIndex(code) != first {
				t.Fatalf("shard for %s not stable", code)
			}
		}
	}
}
