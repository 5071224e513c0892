package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"chat-relay/auth"
	"chat-relay/domain/chat"
)

// Manual smoke client: mints a guest token, joins the room, sends one
// message and tails whatever the relay pushes back. Handy when checking
// a deployment without a browser client.

type Config struct {
	JWTSecret string `env:"JWT_SECRET,required=true"`
}

func main() {
	addr := flag.String("addr", "ws://localhost:8080/ws", "Relay WebSocket URL")
	userID := flag.Int64("user", 1, "User id to impersonate")
	username := flag.String("username", "tester", "Username to impersonate")
	content := flag.String("content", "Hello from the smoke client", "Message to send")
	tail := flag.Duration("tail", 10*time.Second, "How long to keep listening")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	token, err := auth.GenerateToken(
		[]byte(config.JWTSecret),
		chat.Identity{UserID: *userID, Username: *username},
		auth.KindGuest,
		time.Hour,
	)
	if err != nil {
		log.Fatalf("Token generation failed: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	send := func(frame any) {
		if err := conn.WriteJSON(frame); err != nil {
			log.Fatalf("Write failed: %v", err)
		}
	}

	send(chat.InboundFrame{Type: chat.FrameJoin, Token: token})
	send(chat.InboundFrame{
		Type:        chat.FrameMessage,
		MessageType: string(chat.KindText),
		Content:     *content,
		ClientMsgID: uuid.NewString(),
	})

	deadline := time.Now().Add(*tail)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			log.Fatalf("Deadline failed: %v", err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			color.Gray.Println("-- tail finished --")
			return
		}
		printFrame(data)
	}
}

func printFrame(data []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		color.Red.Printf("?? %s\n", data)
		return
	}

	switch head.Type {
	case chat.FrameError:
		color.Red.Printf("<- %s\n", data)
	case chat.FrameJoined, chat.FrameMessageAck:
		color.Green.Printf("<- %s\n", data)
	case chat.FrameNewMessage:
		color.Cyan.Printf("<- %s\n", data)
	default:
		fmt.Printf("<- %s\n", data)
	}
}
