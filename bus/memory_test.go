package bus

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
)

func TestMemoryFanoutReachesAllSubscribers(t *testing.T) {
	req := require.New(t)
	bus := NewMemory(logs.GetLoggerFromLevel(slog.LevelError), 16)
	defer bus.Close()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	var first, second []event.Kind

	_, err := bus.Subscribe(func(env event.Envelope) {
		mu.Lock()
		first = append(first, env.Kind)
		mu.Unlock()
		wg.Done()
	})
	req.NoError(err)

	_, err = bus.Subscribe(func(env event.Envelope) {
		mu.Lock()
		second = append(second, env.Kind)
		mu.Unlock()
		wg.Done()
	})
	req.NoError(err)

	env, err := event.NewEnvelope(event.KindUserTyping, "node-1", event.UserTyping{UserID: 42})
	req.NoError(err)
	req.NoError(bus.Publish(context.Background(), env))

	waitDone(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	req.Equal([]event.Kind{event.KindUserTyping}, first)
	req.Equal([]event.Kind{event.KindUserTyping}, second)
}

func TestMemoryPreservesPublicationOrder(t *testing.T) {
	req := require.New(t)
	bus := NewMemory(logs.GetLoggerFromLevel(slog.LevelError), 64)
	defer bus.Close()

	const total = 50
	var wg sync.WaitGroup
	wg.Add(total)

	var mu sync.Mutex
	var seen []string

	_, err := bus.Subscribe(func(env event.Envelope) {
		var status event.NodeStatus
		require.NoError(t, env.Decode(&status))
		mu.Lock()
		seen = append(seen, status.NodeID)
		mu.Unlock()
		wg.Done()
	})
	req.NoError(err)

	for i := 0; i < total; i++ {
		env, err := event.NewEnvelope(event.KindNodeStatus, "node-1", event.NodeStatus{
			NodeID: string(rune('a' + i%26)),
			Count:  i,
		})
		req.NoError(err)
		req.NoError(bus.Publish(context.Background(), env))
	}

	waitDone(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	req.Len(seen, total)
	for i := 0; i < total; i++ {
		req.Equal(string(rune('a'+i%26)), seen[i])
	}
}

func TestMemoryUnsubscribeStopsDelivery(t *testing.T) {
	req := require.New(t)
	bus := NewMemory(logs.GetLoggerFromLevel(slog.LevelError), 16)
	defer bus.Close()

	delivered := make(chan event.Envelope, 4)
	unsubscribe, err := bus.Subscribe(func(env event.Envelope) {
		delivered <- env
	})
	req.NoError(err)
	unsubscribe()

	env, err := event.NewEnvelope(event.KindUserLeft, "node-1", event.UserLeft{Username: "alice"})
	req.NoError(err)
	req.NoError(bus.Publish(context.Background(), env))

	select {
	case <-delivered:
		t.Fatal("envelope delivered after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMemoryPublishAfterCloseFails(t *testing.T) {
	req := require.New(t)
	bus := NewMemory(logs.GetLoggerFromLevel(slog.LevelError), 1)
	bus.Close()

	env, err := event.NewEnvelope(event.KindUserLeft, "node-1", event.UserLeft{Username: "alice"})
	req.NoError(err)
	req.Error(bus.Publish(context.Background(), env))
}

func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for deliveries")
	}
}
