package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"chat-relay/domain/event"
)

// DefaultSubject is the single NATS subject all relay nodes share. One
// room, one subject; per-publisher ordering is NATS's own guarantee.
const DefaultSubject = "chat.relay.events"

// NATS connects the relay to the external broker so a fixed pool of
// worker processes sees every event. Each process receives its own
// publications back, which keeps the local and remote delivery paths
// identical.
type NATS struct {
	log     *slog.Logger
	conn    *nats.Conn
	subject string

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewNATS(log *slog.Logger, url, subject string) (*NATS, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("chat-relay"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return &NATS{log: log, conn: conn, subject: subject}, nil
}

func (n *NATS) Publish(_ context.Context, env event.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", env.Kind, err)
	}
	return nil
}

func (n *NATS) Subscribe(handler func(event.Envelope)) (func(), error) {
	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		var env event.Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			n.log.Warn("Dropping undecodable bus envelope", "error", err)
			return
		}
		handler(env)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", n.subject, err)
	}

	n.mu.Lock()
	n.subs = append(n.subs, sub)
	n.mu.Unlock()

	return func() {
		if err := sub.Unsubscribe(); err != nil {
			n.log.Warn("Unsubscribe failed", "error", err)
		}
	}, nil
}

// Close drains the connection so envelopes already received are handled
// before the subscriptions go away.
func (n *NATS) Close() {
	if err := n.conn.Drain(); err != nil {
		n.log.Warn("NATS drain failed", "error", err)
		n.conn.Close()
	}
}
