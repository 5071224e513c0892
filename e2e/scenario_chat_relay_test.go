package e2e

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"chat-relay/domain/chat"
)

type testChatRelaySuite struct {
	BaseWsSuite
}

func TestChatRelaySuite(t *testing.T) {
	suite.Run(t, &testChatRelaySuite{})
}

// Runs against a deployed relay (or a pair of relays behind a load
// balancer sharing NATS). Two clients join, talk, and leave; every
// observable frame of the protocol is exercised once.
func (s *testChatRelaySuite) TestFullChatFlow() {
	t := s.T()

	alice := s.WsConn(t, "Alice")
	bob := s.WsConn(t, "Bob")

	var messageID any

	s.Run("Step 1: Alice joins the room", func() {
		alice.Send(chat.InboundFrame{Type: chat.FrameJoin, Token: s.Token(101, "e2e-alice")})
		joined := alice.Expect(chat.FrameJoined)
		s.Require().Equal("e2e-alice", joined["username"])
		s.Require().NotZero(joined["online_count"])
	})

	s.Run("Step 2: Bob joins and Alice is notified", func() {
		bob.Send(chat.InboundFrame{Type: chat.FrameJoin, Token: s.Token(102, "e2e-bob")})
		bob.Expect(chat.FrameJoined)

		frame := alice.Expect(chat.FrameUserJoined)
		s.Require().Equal("e2e-bob", frame["username"])
	})

	s.Run("Step 3: typing reaches the peer only", func() {
		bob.Send(chat.InboundFrame{Type: chat.FrameTyping, IsTyping: true})
		frame := alice.Expect(chat.FrameUserTyping)
		s.Require().Equal("e2e-bob", frame["username"])
		s.Require().Equal(true, frame["is_typing"])
	})

	s.Run("Step 4: a message is acked and broadcast", func() {
		clientMsgID := s.ClientMsgID()
		bob.Send(chat.InboundFrame{
			Type:        chat.FrameMessage,
			MessageType: string(chat.KindText),
			Content:     "hello from the e2e suite",
			ClientMsgID: clientMsgID,
		})

		ack := bob.Expect(chat.FrameMessageAck)
		s.Require().Equal(clientMsgID, ack["client_msg_id"])
		messageID = ack["message_id"]

		for _, c := range []*WsClient{alice, bob} {
			frame := c.Expect(chat.FrameNewMessage)
			message := frame["message"].(map[string]any)
			s.Require().Equal("e2e-bob", message["username"])
			s.Require().Equal("hello from the e2e suite", message["content"])
			s.Require().Equal(messageID, message["id"])
		}
	})

	s.Run("Step 5: keepalive ping is answered", func() {
		alice.Send(chat.InboundFrame{Type: chat.FramePing})
		alice.Expect(chat.FramePong)
	})

	s.Run("Step 6: Bob leaves and Alice is notified", func() {
		bob.Close()
		frame := alice.Expect(chat.FrameUserLeft)
		s.Require().Equal("e2e-bob", frame["username"])
	})
}

func (s *testChatRelaySuite) TestRejectedTokens() {
	t := s.T()

	intruder := s.WsConn(t, "Intruder")

	s.Run("Empty token is rejected", func() {
		intruder.Send(chat.InboundFrame{Type: chat.FrameJoin})
		frame := intruder.Expect(chat.FrameError)
		s.Require().Equal("token required", frame["message"])
	})

	s.Run("Garbage token is rejected", func() {
		intruder.Send(chat.InboundFrame{Type: chat.FrameJoin, Token: "not-a-jwt"})
		frame := intruder.Expect(chat.FrameError)
		s.Require().Equal("malformed token", frame["message"])
	})
}
