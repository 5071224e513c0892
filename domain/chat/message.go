// Package chat contains the core concepts of the relay.
// Messages are immutable once persisted; the store-assigned id and
// timestamp are the authoritative ones.
package chat

import (
	"time"
)

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindVideo MessageKind = "video"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindVideo:
		return true
	}
	return false
}

// Identity is the verified subject bound to a connection after a
// successful join. Immutable for the connection's lifetime.
type Identity struct {
	UserID   int64
	Username string
}

// Message represents one persisted chat event.
type Message struct {
	ID          int64
	UserID      int64
	Username    string
	Kind        MessageKind
	Content     string
	ClientMsgID string // client-supplied idempotency token, may be empty
	CreatedAt   time.Time
}

// PresenceKind enumerates the ephemeral presence changes the relay
// announces. Presence events are never persisted.
type PresenceKind string

const (
	PresenceJoined PresenceKind = "joined"
	PresenceLeft   PresenceKind = "left"
	PresenceTyping PresenceKind = "typing"
)

type PresenceEvent struct {
	Kind        PresenceKind
	UserID      int64
	Username    string
	IsTyping    bool
	OnlineCount int
}
