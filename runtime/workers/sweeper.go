package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
)

// SweeperWorker evicts connections that have gone silent. Dead peers
// holding open sockets would otherwise sit in the registry forever,
// since the relay itself enforces no read deadline. Closing the
// transport runs the normal disconnect path, so the departure is
// announced exactly once.
type SweeperWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	closer   func(connID string)
	timeout  time.Duration
	interval time.Duration
}

func NewSweeperWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	closer func(connID string),
	timeout time.Duration,
	interval time.Duration,
) *SweeperWorker {
	return &SweeperWorker{log: log, registry: registry, closer: closer, timeout: timeout, interval: interval}
}

func (w *SweeperWorker) Run(ctx context.Context) error {
	w.log.Info("Starting idle connection sweeper", "timeout", w.timeout, "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stale := w.registry.Stale(time.Now().Add(-w.timeout))
			for _, connID := range stale {
				w.log.Info("Closing idle connection", "conn_id", connID)
				w.closer(connID)
			}
		}
	}
}
