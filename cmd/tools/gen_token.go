package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"

	"chat-relay/auth"
	"chat-relay/domain/chat"
)

// Mints a signed join token for a given identity. The relay never issues
// tokens itself, so this is the way to get one for local testing.

type Config struct {
	JWTSecret string `env:"JWT_SECRET,required=true"`
}

func main() {
	userID := flag.Int64("user", 1, "User id claim")
	username := flag.String("username", "local", "Username claim")
	kind := flag.String("kind", string(auth.KindGuest), "Token kind (guest or admin)")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	token, err := auth.GenerateToken(
		[]byte(config.JWTSecret),
		chat.Identity{UserID: *userID, Username: *username},
		auth.TokenKind(*kind),
		*ttl,
	)
	if err != nil {
		log.Fatalf("Token generation failed: %v", err)
	}
	fmt.Println(token)
}
