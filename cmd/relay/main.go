package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"

	"chat-relay/auth"
	"chat-relay/bus"
	"chat-relay/contract"
	"chat-relay/infrastructure/ws"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the relay lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx := context.Background()

	// 2. Message store (SQLite)
	db, err := repositories.Open(config.SQLitePath)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		// Defer ensures WAL buffers are flushed before the function returns.
		logger.Info("Closing SQLite...")
		_ = db.Close()
	}()
	messageRepository := repositories.NewMessageRepository(db, logger)

	// 3. Fan-out bus
	// A NATS URL means this node shares the room with other relay
	// processes. Without one the in-process bus still serves a single
	// node correctly.
	var fanoutBus contract.Bus
	if config.NatsURL != "" {
		natsBus, err := bus.NewNATS(logger, config.NatsURL, config.NatsSubject)
		if err != nil {
			return exitRuntime, fmt.Errorf("bus connection failed: %w", err)
		}
		fanoutBus = natsBus
	} else {
		logger.Warn("No NATS_URL configured, broadcasts stay within this process")
		fanoutBus = bus.NewMemory(logger, config.BusBufferSize)
	}
	defer fanoutBus.Close()

	tracker := bus.NewTracker(config.PresenceStaleness)

	// 4. Moderation
	var moderator *moderation.Moderator
	words := lo.Filter(
		lo.Map(strings.Split(config.CensoredWords, ","), func(w string, _ int) string {
			return strings.TrimSpace(w)
		}),
		func(w string, _ int) bool { return w != "" },
	)
	if len(words) > 0 {
		moderator, err = moderation.NewModerator(words, charReplacement, logger)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
		}
	}

	// 5. Relay service
	verifier := auth.NewVerifier([]byte(config.JWTSecret), auth.KindGuest)
	registry := runtime.NewRegistry()
	relayService, err := services.NewRelayService(
		logger, verifier, registry, messageRepository, fanoutBus, tracker, moderator, config.NodeID,
	)
	if err != nil {
		return exitRuntime, fmt.Errorf("relay service setup failed: %w", err)
	}
	defer relayService.Close()

	// 6. Transport
	server, err := ws.NewServer(logger, relayService, fanoutBus, config.Addr(), config.SendBufferSize)
	if err != nil {
		return exitRuntime, fmt.Errorf("transport setup failed: %w", err)
	}

	if config.InspectPort > 0 && logger.Enabled(ctx, slog.LevelDebug) {
		url := fmt.Sprintf("http://localhost:%d/inspect", config.InspectPort)
		logger.Info("Debug message inspector available", "url", url)
		internal.StartDebugServer(messageRepository, config.InspectPort, func() map[string]any {
			return map[string]any{
				"NodeID": config.NodeID,
				"Online": relayService.Online(),
				"Local":  registry.Count(),
			}
		})
	}

	// 7. Context & Signals
	// NotifyContext captures OS signals and cancels the context to trigger a shutdown.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. Supervision
	// The transport runs as a worker like the background jobs, so one
	// supervisor owns every long-lived goroutine.
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		server,
		workers.NewHeartbeatWorker(logger, fanoutBus, registry, config.NodeID, config.HeartbeatInterval),
		workers.NewSweeperWorker(logger, registry, server.CloseConnection, config.IdleTimeout, config.SweepInterval),
	)

	logger.Info("Starting relay", "node_id", config.NodeID, "addr", config.Addr())
	sup.Run(ctx)

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}
