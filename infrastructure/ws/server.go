// Package ws hosts the WebSocket transport: it upgrades connections,
// runs one Session per connection, and redelivers bus envelopes to the
// local connections. Everything stateful about a connection beyond the
// socket itself lives in the registry, owned by the relay service.
package ws

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain/chat"
	"chat-relay/domain/event"
	"chat-relay/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	log        *slog.Logger
	service    services.IRelayService
	bus        contract.Bus
	addr       string
	sendBuffer int

	upgrader websocket.Upgrader
	validate *validator.Validate

	mu       sync.RWMutex
	sessions map[string]*Session

	unsubscribe func()
	httpServer  *http.Server
}

// NewServer wires the transport to the service and subscribes to the
// fan-out bus. The subscription lives for the server's lifetime so no
// broadcast is missed between construction and Run.
func NewServer(
	log *slog.Logger,
	service services.IRelayService,
	b contract.Bus,
	addr string,
	sendBuffer int,
) (*Server, error) {
	s := &Server{
		log:        log,
		service:    service,
		bus:        b,
		addr:       addr,
		sendBuffer: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The token on join is the authentication gate; browser
			// origin is not part of the trust model, as with the
			// mobile clients this relay serves.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		validate: validator.New(),
		sessions: make(map[string]*Session),
	}

	unsubscribe, err := b.Subscribe(s.fanout)
	if err != nil {
		return nil, fmt.Errorf("subscribe transport to bus: %w", err)
	}
	s.unsubscribe = unsubscribe
	return s, nil
}

// Handler exposes the HTTP routes, mainly so tests can mount the server
// on an httptest listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Run serves until the context ends, then shuts the listener down and
// closes every live connection. Run satisfies contract.Worker so the
// supervisor owns the transport like any other worker.
func (s *Server) Run(ctx context.Context) error {
	defer s.unsubscribe()

	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("WebSocket relay listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		s.closeAll()
		return ctx.Err()
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	connID := uuid.NewString()
	session := newSession(connID, conn, s.log, s.service, s.validate, s.sendBuffer)

	s.mu.Lock()
	s.sessions[connID] = session
	s.mu.Unlock()
	s.service.Connect(connID)

	s.log.Info("New connection", "conn_id", connID, "remote", r.RemoteAddr)

	go session.writePump()
	session.readPump(func() { s.drop(connID) })
}

// drop runs when a connection's read pump ends, whatever the cause:
// client close, network error, or a sweeper eviction.
func (s *Server) drop(connID string) {
	s.mu.Lock()
	session, ok := s.sessions[connID]
	delete(s.sessions, connID)
	s.mu.Unlock()

	if !ok {
		return
	}
	session.close()
	s.service.Disconnect(context.Background(), connID)
	s.log.Info("Connection closed", "conn_id", connID)
}

// CloseConnection forcibly closes one connection's transport. The read
// pump then unwinds through the normal disconnect path.
func (s *Server) CloseConnection(connID string) {
	s.mu.RLock()
	session, ok := s.sessions[connID]
	s.mu.RUnlock()
	if ok {
		session.close()
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.close()
	}
}

// fanout redelivers one bus envelope to the local authenticated
// connections. ExcludeConn only ever matches on the node that owns that
// connection; everywhere else it is an unknown id and excludes nobody.
func (s *Server) fanout(env event.Envelope) {
	frame, err := frameFromEnvelope(env)
	if err != nil {
		s.log.Warn("Dropping undeliverable envelope", "kind", env.Kind, "error", err)
		return
	}
	if frame == nil {
		// Not a connection-facing event (e.g. node_status).
		return
	}
	s.broadcast(frame, env.ExcludeConn)
}

func (s *Server) broadcast(frame any, excludeConn string) {
	data, err := json.Marshal(frame)
	if err != nil {
		s.log.Error("Failed to encode broadcast frame", "error", err)
		return
	}

	s.mu.RLock()
	targets := make([]*Session, 0, len(s.sessions))
	for id, session := range s.sessions {
		// The registry, via the service, is the authentication truth:
		// a session is eligible the instant its join binds, even if
		// its joined frame is still in flight.
		if id == excludeConn || !s.service.Authenticated(id) {
			continue
		}
		targets = append(targets, session)
	}
	s.mu.RUnlock()

	for _, session := range targets {
		session.enqueue(data)
	}
}

// frameFromEnvelope maps bus events onto outbound wire frames.
func frameFromEnvelope(env event.Envelope) (any, error) {
	switch env.Kind {
	case event.KindNewMessage:
		var payload event.NewMessage
		if err := env.Decode(&payload); err != nil {
			return nil, err
		}
		return chat.NewMessageFrame{Type: chat.FrameNewMessage, Message: payload.Message}, nil

	case event.KindUserJoined:
		var payload event.UserJoined
		if err := env.Decode(&payload); err != nil {
			return nil, err
		}
		return chat.UserJoinedFrame{
			Type:        chat.FrameUserJoined,
			Username:    payload.Username,
			OnlineCount: payload.OnlineCount,
		}, nil

	case event.KindUserLeft:
		var payload event.UserLeft
		if err := env.Decode(&payload); err != nil {
			return nil, err
		}
		return chat.UserLeftFrame{
			Type:        chat.FrameUserLeft,
			Username:    payload.Username,
			OnlineCount: payload.OnlineCount,
		}, nil

	case event.KindUserTyping:
		var payload event.UserTyping
		if err := env.Decode(&payload); err != nil {
			return nil, err
		}
		return chat.UserTypingFrame{
			Type:     chat.FrameUserTyping,
			UserID:   payload.UserID,
			Username: payload.Username,
			IsTyping: payload.IsTyping,
		}, nil
	}
	return nil, nil
}
