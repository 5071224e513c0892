// Package event defines the envelope and payloads carried on the
// broadcast bus. Every relay process republishes what it receives to its
// local connections, so these shapes are the cross-process contract.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"chat-relay/domain/chat"
)

type Kind string

const (
	KindNewMessage Kind = "new_message"
	KindUserJoined Kind = "user_joined"
	KindUserLeft   Kind = "user_left"
	KindUserTyping Kind = "user_typing"
	KindNodeStatus Kind = "node_status"
)

// Envelope is the single shape published on the fan-out bus.
// ExcludeConn names one connection id that must not receive the local
// redelivery (the joining or typing connection); it only ever matches on
// the node that owns that connection.
type Envelope struct {
	Kind        Kind            `json:"kind"`
	NodeID      string          `json:"node_id"`
	ExcludeConn string          `json:"exclude_conn,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt time.Time       `json:"published_at"`
}

// NewEnvelope wraps a typed payload for publication.
func NewEnvelope(kind Kind, nodeID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Envelope{
		Kind:        kind,
		NodeID:      nodeID,
		Payload:     raw,
		PublishedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into the typed event for the envelope's
// kind. Callers pass a pointer matching the Kind.
func (e Envelope) Decode(into any) error {
	if err := json.Unmarshal(e.Payload, into); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return nil
}

// NewMessage announces a freshly persisted chat message to every
// connection on every node, sender included.
type NewMessage struct {
	Message chat.WireMessage `json:"message"`
}

// UserJoined and UserLeft carry the global online count computed by the
// originating node at publish time, so every node relays the same number.
type UserJoined struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	OnlineCount int    `json:"online_count"`
}

type UserLeft struct {
	Username    string `json:"username"`
	OnlineCount int    `json:"online_count"`
}

type UserTyping struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// NodeStatus is the per-process presence snapshot. Count is that node's
// authenticated connection count; the process stats ride along for
// operational visibility.
type NodeStatus struct {
	NodeID     string    `json:"node_id"`
	Count      int       `json:"count"`
	RSSBytes   uint64    `json:"rss_bytes,omitempty"`
	CPUPercent float64   `json:"cpu_percent,omitempty"`
	At         time.Time `json:"at"`
}
