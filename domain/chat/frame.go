package chat

import (
	"time"
)

// Inbound frame types.
const (
	FrameJoin    = "join"
	FrameMessage = "message"
	FrameTyping  = "typing"
	FramePing    = "ping"
)

// Outbound frame types.
const (
	FrameJoined     = "joined"
	FrameUserJoined = "user_joined"
	FrameUserLeft   = "user_left"
	FrameUserTyping = "user_typing"
	FrameNewMessage = "new_message"
	FrameMessageAck = "message_ack"
	FramePong       = "pong"
	FrameError      = "error"
)

// InboundFrame is the flat wire shape every client frame decodes into.
// The Type field selects which of the remaining fields are meaningful.
type InboundFrame struct {
	Type        string `json:"type"`
	Token       string `json:"token,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	Content     string `json:"content,omitempty"`
	ClientMsgID string `json:"clientMsgId,omitempty"`
	IsTyping    bool   `json:"isTyping,omitempty"`
}

// MessagePayload carries the validated fields of a `message` frame.
type MessagePayload struct {
	MessageType string `validate:"required,oneof=text image video"`
	Content     string `validate:"required"`
	ClientMsgID string `validate:"omitempty,max=128"`
}

type JoinedFrame struct {
	Type        string `json:"type"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	OnlineCount int    `json:"online_count"`
}

type UserJoinedFrame struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	OnlineCount int    `json:"online_count"`
}

type UserLeftFrame struct {
	Type        string `json:"type"`
	Username    string `json:"username"`
	OnlineCount int    `json:"online_count"`
}

type UserTypingFrame struct {
	Type     string `json:"type"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

type NewMessageFrame struct {
	Type    string      `json:"type"`
	Message WireMessage `json:"message"`
}

type MessageAckFrame struct {
	Type        string `json:"type"`
	ClientMsgID string `json:"client_msg_id,omitempty"`
	MessageID   int64  `json:"message_id"`
	CreatedAt   string `json:"created_at"`
}

type PongFrame struct {
	Type string `json:"type"`
}

type ErrorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WireMessage is the broadcast representation of a persisted message.
// Timestamp duplicates CreatedAt as unix seconds for clients that do not
// parse the formatted date.
type WireMessage struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	Kind        string `json:"type"`
	Content     string `json:"content"`
	ClientMsgID string `json:"client_msg_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	Timestamp   int64  `json:"timestamp"`
}

// WireTime is the formatted timestamp layout used on the wire.
const WireTime = time.DateTime

func ToWireMessage(m Message) WireMessage {
	return WireMessage{
		ID:          m.ID,
		UserID:      m.UserID,
		Username:    m.Username,
		Kind:        string(m.Kind),
		Content:     m.Content,
		ClientMsgID: m.ClientMsgID,
		CreatedAt:   m.CreatedAt.UTC().Format(WireTime),
		Timestamp:   m.CreatedAt.Unix(),
	}
}
