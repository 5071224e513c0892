package bus

import (
	"sync"
	"time"

	"chat-relay/domain/event"
)

type nodeState struct {
	count    int
	lastSeen time.Time
}

// Tracker derives the global online count from per-node presence
// snapshots seen on the bus. A node that stops heartbeating falls out of
// the sum once its last snapshot is older than the staleness window, so
// a crashed worker cannot inflate the count forever.
type Tracker struct {
	mu         sync.RWMutex
	nodes      map[string]nodeState
	staleAfter time.Duration
	now        func() time.Time
}

func NewTracker(staleAfter time.Duration) *Tracker {
	return &Tracker{
		nodes:      make(map[string]nodeState),
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// Observe records one node's snapshot. It is idempotent: a node observes
// its own snapshots both directly and via the bus echo.
func (t *Tracker) Observe(status event.NodeStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nodes[status.NodeID] = nodeState{count: status.Count, lastSeen: t.now()}
}

// Forget drops a node immediately, for controlled shutdowns that should
// not wait out the staleness window.
func (t *Tracker) Forget(nodeID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.nodes, nodeID)
}

// Online returns the sum of authenticated connection counts across all
// fresh nodes.
func (t *Tracker) Online() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cutoff := t.now().Add(-t.staleAfter)
	total := 0
	for _, node := range t.nodes {
		if node.lastSeen.After(cutoff) {
			total += node.count
		}
	}
	return total
}
