package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"chat-relay/domain/chat"
	"chat-relay/errors"
	"chat-relay/services"
)

// maxFrameBytes bounds one inbound frame. Chat payloads are small; image
// and video content is a URL, not bytes.
const maxFrameBytes = 16 * 1024

// Session is the per-connection protocol state machine. Frames arrive
// serialized through the read pump; outbound frames leave through a
// buffered send channel drained by the write pump, so a slow reader
// never blocks broadcasts to its peers.
type Session struct {
	id        string
	conn      *websocket.Conn
	log       *slog.Logger
	service   services.IRelayService
	validate  *validator.Validate
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(
	id string,
	conn *websocket.Conn,
	log *slog.Logger,
	service services.IRelayService,
	validate *validator.Validate,
	sendBuffer int,
) *Session {
	return &Session{
		id:       id,
		conn:     conn,
		log:      log,
		service:  service,
		validate: validate,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
}

// readPump consumes frames until the transport closes, then runs onClose
// exactly once. Any panic while handling a single frame is recovered so
// one bad frame cannot drop the connection, let alone the process.
func (s *Session) readPump(onClose func()) {
	defer onClose()
	s.conn.SetReadLimit(maxFrameBytes)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("Unexpected close", "conn_id", s.id, "error", err)
			} else {
				s.log.Debug("Connection closed", "conn_id", s.id, "error", err)
			}
			return
		}
		s.handleFrame(data)
	}
}

func (s *Session) writePump() {
	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.log.Debug("Write failed", "conn_id", s.id, "error", err)
				return
			}
		}
	}
}

func (s *Session) handleFrame(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Recovered from frame handler panic", "conn_id", s.id, "panic", r)
			// ErrInternal is not wireable, so the client sees the
			// generic text, not a misleading malformed-frame message.
			s.sendError(errors.ErrInternal)
		}
	}()

	// Every inbound frame counts as activity, keepalive pings included.
	s.service.Touch(s.id)

	var frame chat.InboundFrame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
		s.sendError(errors.ErrFrameMalformed)
		return
	}

	// In-flight work is never cancelled by a closing transport; its
	// result is simply discarded if the connection is gone.
	ctx := context.Background()

	switch frame.Type {
	case chat.FrameJoin:
		s.handleJoin(ctx, frame)
	case chat.FrameMessage:
		s.handleMessage(ctx, frame)
	case chat.FrameTyping:
		// Unauthenticated typing is silently ignored.
		_ = s.service.Typing(ctx, s.id, frame.IsTyping)
	case chat.FramePing:
		s.sendFrame(chat.PongFrame{Type: chat.FramePong})
	default:
		s.sendError(errors.ErrUnknownFrame)
	}
}

func (s *Session) handleJoin(ctx context.Context, frame chat.InboundFrame) {
	identity, online, err := s.service.Join(ctx, s.id, frame.Token)
	if err != nil {
		s.sendError(err)
		return
	}
	s.sendFrame(chat.JoinedFrame{
		Type:        chat.FrameJoined,
		UserID:      identity.UserID,
		Username:    identity.Username,
		OnlineCount: online,
	})
}

func (s *Session) handleMessage(ctx context.Context, frame chat.InboundFrame) {
	payload := chat.MessagePayload{
		MessageType: frame.MessageType,
		Content:     frame.Content,
		ClientMsgID: frame.ClientMsgID,
	}
	if err := s.validate.Struct(payload); err != nil {
		s.sendError(errors.ErrInvalidPayload)
		return
	}

	stored, err := s.service.Submit(ctx, s.id, payload)
	if err != nil {
		s.sendError(err)
		return
	}

	s.sendFrame(chat.MessageAckFrame{
		Type:        chat.FrameMessageAck,
		ClientMsgID: frame.ClientMsgID,
		MessageID:   stored.ID,
		CreatedAt:   stored.CreatedAt.UTC().Format(chat.WireTime),
	})
}

func (s *Session) sendFrame(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		s.log.Error("Failed to encode frame", "conn_id", s.id, "error", err)
		return
	}
	s.enqueue(data)
}

func (s *Session) sendError(err error) {
	s.sendFrame(chat.ErrorFrame{Type: chat.FrameError, Message: errors.Wire(err)})
}

// enqueue hands pre-encoded bytes to the write pump. A full buffer means
// the peer stopped reading; the frame is dropped rather than stalling
// everyone else.
func (s *Session) enqueue(data []byte) {
	select {
	case <-s.done:
	case s.send <- data:
	default:
		s.log.Warn("Send buffer full, dropping frame", "conn_id", s.id)
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
