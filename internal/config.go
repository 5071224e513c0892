package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	// NodeID distinguishes this process on the shared bus. Each relay
	// process behind the load balancer needs its own value.
	NodeID string `env:"NODE_ID,required=true"`

	JWTSecret string `env:"JWT_SECRET,required=true"`

	SQLitePath string `env:"SQLITE_PATH,required=true"`

	// NatsURL selects the shared bus. Empty means the in-process bus,
	// which only fans out within a single relay process.
	NatsURL     string `env:"NATS_URL"`
	NatsSubject string `env:"NATS_SUBJECT"`

	BusBufferSize  int `env:"BUS_BUFFER_SIZE,required=true"`
	SendBufferSize int `env:"SEND_BUFFER_SIZE,required=true"`

	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
	PresenceStaleness time.Duration `env:"PRESENCE_STALENESS,required=true"`
	SweepInterval     time.Duration `env:"SWEEP_INTERVAL,required=true"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT,required=true"`

	// CensoredWords is comma separated; empty disables moderation.
	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,required=true"`

	InspectPort int `env:"INSPECT_PORT"`

	LogLevel string `env:"LOG_LEVEL,required=true"`
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
