package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/runtime"
)

func TestSweeperClosesIdleConnections(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	registry.Register("idle")

	var mu sync.Mutex
	var closed []string
	closer := func(connID string) {
		mu.Lock()
		closed = append(closed, connID)
		mu.Unlock()
		registry.Unregister(connID)
	}

	sweeper := NewSweeperWorker(
		logs.GetLoggerFromLevel(slog.LevelError),
		registry,
		closer,
		50*time.Millisecond,
		20*time.Millisecond,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = sweeper.Run(ctx)
		close(done)
	}()

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(closed) == 1 && closed[0] == "idle"
	}, 400*time.Millisecond, 10*time.Millisecond)

	cancel()
	<-done
}

func TestSweeperSparesActiveConnections(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry()
	registry.Register("active")

	var mu sync.Mutex
	var closed []string
	closer := func(connID string) {
		mu.Lock()
		closed = append(closed, connID)
		mu.Unlock()
	}

	sweeper := NewSweeperWorker(
		logs.GetLoggerFromLevel(slog.LevelError),
		registry,
		closer,
		200*time.Millisecond,
		20*time.Millisecond,
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sweeper.Run(ctx)
		close(done)
	}()

	// Keep the connection active past a few sweep cycles.
	for i := 0; i < 5; i++ {
		registry.Touch("active")
		time.Sleep(30 * time.Millisecond)
	}

	mu.Lock()
	req.Empty(closed)
	mu.Unlock()

	cancel()
	<-done
}
