//go:generate go run go.uber.org/mock/mockgen -source=relay_service.go -destination=../mocks/mock_relay_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-relay/auth"
	"chat-relay/bus"
	"chat-relay/contract"
	"chat-relay/domain/chat"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
	"chat-relay/repositories"
)

// IRelayService is the session lifecycle controller: it orchestrates
// connect, join, message submission, typing, and disconnect, tying the
// registry, the store, and the fan-out bus together.
type IRelayService interface {
	Connect(connID string)
	Join(ctx context.Context, connID, token string) (chat.Identity, int, error)
	Submit(ctx context.Context, connID string, payload chat.MessagePayload) (chat.Message, error)
	Typing(ctx context.Context, connID string, isTyping bool) error
	Disconnect(ctx context.Context, connID string)
	Authenticated(connID string) bool
	Touch(connID string)
	Online() int
}

type RelayService struct {
	log         *slog.Logger
	verifier    auth.Verifier
	registry    contract.IRegistry
	messages    repositories.IMessageRepository
	bus         contract.Bus
	tracker     *bus.Tracker
	moderator   *moderation.Moderator // nil disables censoring
	nodeID      string
	unsubscribe func()
}

func NewRelayService(
	log *slog.Logger,
	verifier auth.Verifier,
	registry contract.IRegistry,
	messages repositories.IMessageRepository,
	b contract.Bus,
	tracker *bus.Tracker,
	moderator *moderation.Moderator,
	nodeID string,
) (*RelayService, error) {
	s := &RelayService{
		log:       log,
		verifier:  verifier,
		registry:  registry,
		messages:  messages,
		bus:       b,
		tracker:   tracker,
		moderator: moderator,
		nodeID:    nodeID,
	}

	// Feed the presence tracker from every node's snapshots, this
	// node's own bus echo included.
	unsubscribe, err := b.Subscribe(func(env event.Envelope) {
		if env.Kind != event.KindNodeStatus {
			return
		}
		var status event.NodeStatus
		if err := env.Decode(&status); err != nil {
			log.Warn("Dropping undecodable node status", "error", err)
			return
		}
		tracker.Observe(status)
	})
	if err != nil {
		return nil, err
	}
	s.unsubscribe = unsubscribe
	return s, nil
}

// Close detaches the service from the bus. Connections are closed by the
// transport, not here.
func (s *RelayService) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Connect registers a fresh unauthenticated connection.
func (s *RelayService) Connect(connID string) {
	s.registry.Register(connID)
	s.log.Debug("Connection registered", "conn_id", connID)
}

// Join verifies the token, binds the identity, and announces the join.
// The joining connection is excluded from the user_joined broadcast; it
// gets the returned identity and count as its own joined frame instead.
func (s *RelayService) Join(ctx context.Context, connID, token string) (chat.Identity, int, error) {
	if token == "" {
		return chat.Identity{}, 0, errors.ErrTokenRequired
	}

	identity, err := s.verifier.Verify(token)
	if err != nil {
		return chat.Identity{}, 0, err
	}

	if err := s.registry.Bind(connID, identity); err != nil {
		return chat.Identity{}, 0, err
	}

	online := s.publishPresence(ctx)
	s.publish(ctx, event.KindUserJoined, connID, event.UserJoined{
		UserID:      identity.UserID,
		Username:    identity.Username,
		OnlineCount: online,
	})

	s.log.Info("User joined", "user_id", identity.UserID, "username", identity.Username, "online", online)
	return identity, online, nil
}

// Submit runs the persistence-and-echo pipeline: censor, idempotent
// insert, canonical re-read, then broadcast to every connection on every
// node (sender included; clients deduplicate via client_msg_id).
func (s *RelayService) Submit(ctx context.Context, connID string, payload chat.MessagePayload) (chat.Message, error) {
	identity, ok := s.registry.Identity(connID)
	if !ok {
		return chat.Message{}, errors.ErrNotAuthenticated
	}

	kind := chat.MessageKind(payload.MessageType)
	if !kind.Valid() || payload.Content == "" {
		return chat.Message{}, errors.ErrInvalidPayload
	}

	content := payload.Content
	if kind == chat.KindText && s.moderator != nil {
		content = s.moderator.Censor(content)
	}

	id, err := s.messages.Insert(ctx, chat.Message{
		UserID:      identity.UserID,
		Username:    identity.Username,
		Kind:        kind,
		Content:     content,
		ClientMsgID: payload.ClientMsgID,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		s.log.Error("Failed to persist message", "user_id", identity.UserID, "error", err)
		return chat.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	// Re-read the canonical record: the store owns id and created_at,
	// and on an idempotent retry this returns the original row.
	stored, err := s.messages.GetByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to read back message", "message_id", id, "error", err)
		return chat.Message{}, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	s.publish(ctx, event.KindNewMessage, "", event.NewMessage{Message: chat.ToWireMessage(stored)})

	s.log.Debug("Message relayed", "message_id", stored.ID, "username", identity.Username, "kind", kind)
	return stored, nil
}

// Typing broadcasts a transient indicator to every other connection.
func (s *RelayService) Typing(ctx context.Context, connID string, isTyping bool) error {
	identity, ok := s.registry.Identity(connID)
	if !ok {
		return errors.ErrNotAuthenticated
	}

	s.publish(ctx, event.KindUserTyping, connID, event.UserTyping{
		UserID:   identity.UserID,
		Username: identity.Username,
		IsTyping: isTyping,
	})
	return nil
}

// Disconnect unregisters the connection; if an identity was bound it
// announces the departure with the updated global count, exactly once.
func (s *RelayService) Disconnect(ctx context.Context, connID string) {
	identity, had := s.registry.Unregister(connID)
	if !had {
		s.log.Debug("Connection closed", "conn_id", connID)
		return
	}

	online := s.publishPresence(ctx)
	s.publish(ctx, event.KindUserLeft, "", event.UserLeft{
		Username:    identity.Username,
		OnlineCount: online,
	})

	s.log.Info("User left", "username", identity.Username, "online", online)
}

// Authenticated reports whether the connection currently has a bound
// identity. The registry is the single source of truth, so a session is
// eligible for broadcasts the instant its join binds, with no window
// between bind and any flag set elsewhere.
func (s *RelayService) Authenticated(connID string) bool {
	_, ok := s.registry.Identity(connID)
	return ok
}

func (s *RelayService) Touch(connID string) {
	s.registry.Touch(connID)
}

func (s *RelayService) Online() int {
	return s.tracker.Online()
}

// publishPresence pushes this node's updated count to the tracker and
// the bus, and returns the resulting global online count.
func (s *RelayService) publishPresence(ctx context.Context) int {
	status := event.NodeStatus{
		NodeID: s.nodeID,
		Count:  s.registry.Count(),
		At:     time.Now().UTC(),
	}
	s.tracker.Observe(status)

	env, err := event.NewEnvelope(event.KindNodeStatus, s.nodeID, status)
	if err != nil {
		s.log.Error("Failed to encode node status", "error", err)
	} else if err := s.bus.Publish(ctx, env); err != nil {
		s.log.Warn("Failed to publish node status", "error", err)
	}

	return s.tracker.Online()
}

// publish wraps and sends one event; fan-out failures are logged, never
// surfaced to the originating connection.
func (s *RelayService) publish(ctx context.Context, kind event.Kind, excludeConn string, payload any) {
	env, err := event.NewEnvelope(kind, s.nodeID, payload)
	if err != nil {
		s.log.Error("Failed to encode event", "kind", kind, "error", err)
		return
	}
	env.ExcludeConn = excludeConn
	if err := s.bus.Publish(ctx, env); err != nil {
		s.log.Warn("Failed to publish event", "kind", kind, "error", err)
	}
}
