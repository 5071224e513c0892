// Package bus implements the broadcast fan-out channel shared by relay
// processes. Memory serves a single-process deployment and tests; NATS
// serves a multi-process pool. Both keep per-publisher ordering.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"chat-relay/domain/event"
)

// Memory is the in-process bus. A single dispatch goroutine drains a
// buffered channel, so envelopes reach every subscriber in publication
// order and a slow handler never reorders delivery.
type Memory struct {
	log    *slog.Logger
	events chan event.Envelope
	done   chan struct{}
	closed sync.Once

	mu       sync.RWMutex
	handlers map[int]func(event.Envelope)
	nextID   int
}

func NewMemory(log *slog.Logger, buffer int) *Memory {
	m := &Memory{
		log:      log,
		events:   make(chan event.Envelope, buffer),
		done:     make(chan struct{}),
		handlers: make(map[int]func(event.Envelope)),
	}
	go m.dispatch()
	return m
}

func (m *Memory) Publish(ctx context.Context, env event.Envelope) error {
	select {
	case <-m.done:
		return fmt.Errorf("publish %s: bus closed", env.Kind)
	default:
	}

	select {
	case m.events <- env:
		return nil
	case <-m.done:
		return fmt.Errorf("publish %s: bus closed", env.Kind)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) Subscribe(handler func(event.Envelope)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.handlers[id] = handler

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers, id)
	}, nil
}

func (m *Memory) Close() {
	m.closed.Do(func() { close(m.done) })
}

func (m *Memory) dispatch() {
	for {
		select {
		case <-m.done:
			return
		case env := <-m.events:
			m.mu.RLock()
			handlers := make([]func(event.Envelope), 0, len(m.handlers))
			for _, h := range m.handlers {
				handlers = append(handlers, h)
			}
			m.mu.RUnlock()

			for _, handler := range handlers {
				handler(env)
			}
		}
	}
}
