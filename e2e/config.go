package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_ADDR points at a running relay, e.g. ws://localhost:8080/ws.
	// Empty skips the suite.
	RelayAddr string `envconfig:"RELAY_ADDR"`
	// E2E_JWT_SECRET must match the relay's JWT_SECRET.
	JWTSecret string `envconfig:"E2E_JWT_SECRET"`
	// E2E_DEBUG_FRAMES dumps every frame on the wire
	DebugFrames bool `envconfig:"E2E_DEBUG_FRAMES" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
