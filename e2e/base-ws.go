package e2e

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"chat-relay/auth"
	"chat-relay/domain/chat"
)

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.RelayAddr == "" {
		s.T().Skip("RELAY_ADDR not set, skipping end-to-end suite")
	}
}

// WsConn dials the relay under test with logging and optional colors
func (s *BaseWsSuite) WsConn(t *testing.T, name string) *WsClient {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	conn, resp, err := websocket.DefaultDialer.Dial(s.Config.RelayAddr, nil)
	s.Require().NoError(err, "Failed to reach relay at %s", s.Config.RelayAddr)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return &WsClient{suite: s, t: t, name: name, conn: conn}
}

// Token mints a guest token accepted by the relay under test
func (s *BaseWsSuite) Token(userID int64, username string) string {
	token, err := auth.GenerateToken(
		[]byte(s.Config.JWTSecret),
		chat.Identity{UserID: userID, Username: username},
		auth.KindGuest,
		time.Hour,
	)
	s.Require().NoError(err)
	return token
}

func (s *BaseWsSuite) ClientMsgID() string {
	return uuid.NewString()
}

type WsClient struct {
	suite *BaseWsSuite
	t     *testing.T
	name  string
	conn  *websocket.Conn
}

func (c *WsClient) Send(frame any) {
	if c.suite.Config.DebugFrames {
		data, _ := json.Marshal(frame)
		c.t.Logf("%s -> %s", c.name, data)
	}
	c.suite.Require().NoError(c.conn.WriteJSON(frame))
}

// Expect reads frames until one of the wanted type arrives, failing on
// timeout. Interleaved frames of other types are logged and dropped.
func (c *WsClient) Expect(frameType string) map[string]any {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.suite.Require().NoError(c.conn.SetReadDeadline(deadline))
		_, data, err := c.conn.ReadMessage()
		c.suite.Require().NoError(err, "%s: connection dropped while waiting for %q", c.name, frameType)

		if c.suite.Config.DebugFrames {
			c.t.Logf("%s <- %s", c.name, data)
		}

		var frame map[string]any
		c.suite.Require().NoError(json.Unmarshal(data, &frame))
		if frame["type"] == frameType {
			return frame
		}
	}
	c.suite.Require().FailNowf("timeout", "%s: never received a %q frame", c.name, frameType)
	return nil
}

func (c *WsClient) Close() {
	_ = c.conn.Close()
}
