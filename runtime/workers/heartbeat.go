package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

// HeartbeatWorker republishes this node's presence snapshot on the bus
// at a fixed interval. Peers use the snapshots to keep the global online
// count correct even when a node crashes without announcing departures;
// the process stats ride along for operational visibility.
type HeartbeatWorker struct {
	log      *slog.Logger
	bus      contract.Bus
	registry contract.IRegistry
	nodeID   string
	interval time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	bus contract.Bus,
	registry contract.IRegistry,
	nodeID string,
	interval time.Duration,
) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, bus: bus, registry: registry, nodeID: nodeID, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting presence heartbeat worker", "node_id", w.nodeID, "interval", w.interval)

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	// First beat immediately so peers learn about this node before the
	// first tick.
	w.beat(ctx, proc)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.beat(ctx, proc)
		}
	}
}

func (w *HeartbeatWorker) beat(ctx context.Context, proc *process.Process) {
	status := event.NodeStatus{
		NodeID: w.nodeID,
		Count:  w.registry.Count(),
		At:     time.Now().UTC(),
	}

	if mem, err := proc.MemoryInfo(); err == nil {
		status.RSSBytes = mem.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		status.CPUPercent = cpu
	}

	env, err := event.NewEnvelope(event.KindNodeStatus, w.nodeID, status)
	if err != nil {
		w.log.Error("Failed to encode node status", "error", err)
		return
	}
	if err := w.bus.Publish(ctx, env); err != nil {
		w.log.Warn("Failed to publish heartbeat", "error", err)
	}
}
