package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/bus"
	"chat-relay/domain/chat"
	"chat-relay/domain/event"
	"chat-relay/runtime"
)

func TestHeartbeatPublishesNodeStatus(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelError)

	registry := runtime.NewRegistry()
	registry.Register("c1")
	req.NoError(registry.Bind("c1", chat.Identity{UserID: 1, Username: "alice"}))

	memory := bus.NewMemory(log, 16)
	defer memory.Close()

	var mu sync.Mutex
	var statuses []event.NodeStatus
	_, err := memory.Subscribe(func(env event.Envelope) {
		if env.Kind != event.KindNodeStatus {
			return
		}
		var status event.NodeStatus
		require.NoError(t, env.Decode(&status))
		mu.Lock()
		statuses = append(statuses, status)
		mu.Unlock()
	})
	req.NoError(err)

	worker := NewHeartbeatWorker(log, memory, registry, "node-test", 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	req.Eventually(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(statuses) >= 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	for _, status := range statuses {
		req.Equal("node-test", status.NodeID)
		req.Equal(1, status.Count)
	}
}
