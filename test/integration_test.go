package test

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"chat-relay/auth"
	"chat-relay/bus"
	"chat-relay/domain/chat"
	"chat-relay/infrastructure/ws"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/services"
)

const secret = "integration-secret"

// Boots the whole relay in-process: real SQLite store, real registry,
// in-process bus, real service, real transport. Only the listener is an
// httptest one.
func startRelay(t *testing.T) string {
	t.Helper()
	req := require.New(t)

	log := logs.GetLoggerFromLevel(slog.LevelError)

	db, err := repositories.Open(filepath.Join(t.TempDir(), "chat.db"))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })
	messageRepository := repositories.NewMessageRepository(db, log)

	fanoutBus := bus.NewMemory(log, 64)
	t.Cleanup(fanoutBus.Close)
	tracker := bus.NewTracker(30 * time.Second)

	moderator, err := moderation.NewModerator([]string{"badword"}, '*', log)
	req.NoError(err)

	verifier := auth.NewVerifier([]byte(secret), auth.KindGuest)
	registry := runtime.NewRegistry()
	service, err := services.NewRelayService(
		log, verifier, registry, messageRepository, fanoutBus, tracker, moderator, "node-test",
	)
	req.NoError(err)
	t.Cleanup(service.Close)

	server, err := ws.NewServer(log, service, fanoutBus, "unused:0", 64)
	req.NoError(err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, url string) *client {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &client{t: t, conn: conn}
}

func (c *client) send(frame any) {
	require.NoError(c.t, c.conn.WriteJSON(frame))
}

func (c *client) recv() map[string]any {
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	var frame map[string]any
	require.NoError(c.t, json.Unmarshal(data, &frame))
	return frame
}

// recvType reads frames until one of the wanted type arrives. Broadcast
// order between distinct event kinds is not guaranteed across clients.
func (c *client) recvType(frameType string) map[string]any {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		frame := c.recv()
		if frame["type"] == frameType {
			return frame
		}
	}
	c.t.Fatalf("never received a %q frame", frameType)
	return nil
}

func (c *client) join(userID int64, username string) map[string]any {
	token, err := auth.GenerateToken(
		[]byte(secret),
		chat.Identity{UserID: userID, Username: username},
		auth.KindGuest,
		time.Hour,
	)
	require.NoError(c.t, err)
	c.send(chat.InboundFrame{Type: chat.FrameJoin, Token: token})
	return c.recvType(chat.FrameJoined)
}

func Test_Scenario(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	// 1. Alice joins an empty room.
	alice := dial(t, url)
	joined := alice.join(1, "alice")
	req.EqualValues(1, joined["user_id"])
	req.Equal("alice", joined["username"])
	req.EqualValues(1, joined["online_count"])

	// 2. Bob joins; Alice sees him arrive, Bob does not see himself.
	bob := dial(t, url)
	joined = bob.join(2, "bob")
	req.EqualValues(2, joined["online_count"])

	frame := alice.recvType(chat.FrameUserJoined)
	req.Equal("bob", frame["username"])
	req.EqualValues(2, frame["online_count"])

	// 3. Bob types; only Alice is told.
	bob.send(chat.InboundFrame{Type: chat.FrameTyping, IsTyping: true})
	frame = alice.recvType(chat.FrameUserTyping)
	req.Equal("bob", frame["username"])
	req.Equal(true, frame["is_typing"])

	// 4. Bob sends a message with a censored word. Both clients get the
	// broadcast, Bob also gets his ack, and the content arrives starred.
	bob.send(chat.InboundFrame{
		Type:        chat.FrameMessage,
		MessageType: string(chat.KindText),
		Content:     "this badword stays polite",
		ClientMsgID: "bob-1",
	})

	ack := bob.recvType(chat.FrameMessageAck)
	req.Equal("bob-1", ack["client_msg_id"])
	messageID := ack["message_id"]
	req.NotNil(messageID)

	for _, c := range []*client{alice, bob} {
		frame = c.recvType(chat.FrameNewMessage)
		message := frame["message"].(map[string]any)
		req.Equal("bob", message["username"])
		req.Equal("this ******* stays polite", message["content"])
		req.Equal(messageID, message["id"])
	}

	// 5. Resending the same client msg id must not duplicate the row.
	bob.send(chat.InboundFrame{
		Type:        chat.FrameMessage,
		MessageType: string(chat.KindText),
		Content:     "this badword stays polite",
		ClientMsgID: "bob-1",
	})
	ack = bob.recvType(chat.FrameMessageAck)
	req.Equal(messageID, ack["message_id"])

	// 6. Bob leaves; Alice is told and the count drops.
	req.NoError(bob.conn.Close())
	frame = alice.recvType(chat.FrameUserLeft)
	req.Equal("bob", frame["username"])
	req.EqualValues(1, frame["online_count"])
}

func Test_Scenario_RejectedJoin(t *testing.T) {
	req := require.New(t)
	url := startRelay(t)

	intruder := dial(t, url)

	// Messages before authentication never reach the room.
	intruder.send(chat.InboundFrame{
		Type:        chat.FrameMessage,
		MessageType: string(chat.KindText),
		Content:     "let me in",
	})
	frame := intruder.recv()
	req.Equal(chat.FrameError, frame["type"])
	req.Equal("not authenticated", frame["message"])

	// A token signed with another secret is rejected.
	forged, err := auth.GenerateToken(
		[]byte("wrong-secret"),
		chat.Identity{UserID: 9, Username: "mallory"},
		auth.KindGuest,
		time.Hour,
	)
	req.NoError(err)
	intruder.send(chat.InboundFrame{Type: chat.FrameJoin, Token: forged})
	frame = intruder.recv()
	req.Equal(chat.FrameError, frame["type"])
	req.Equal("invalid token signature", frame["message"])
}
