package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
)

func TestTrackerSumsNodeCounts(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker(30 * time.Second)

	tracker.Observe(event.NodeStatus{NodeID: "node-a", Count: 3})
	tracker.Observe(event.NodeStatus{NodeID: "node-b", Count: 2})
	req.Equal(5, tracker.Online())

	// A newer snapshot replaces the node's previous count.
	tracker.Observe(event.NodeStatus{NodeID: "node-a", Count: 1})
	req.Equal(3, tracker.Online())
}

func TestTrackerDropsStaleNodes(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker(30 * time.Second)

	current := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return current }

	tracker.Observe(event.NodeStatus{NodeID: "node-a", Count: 3})
	tracker.Observe(event.NodeStatus{NodeID: "node-b", Count: 2})

	current = current.Add(10 * time.Second)
	tracker.Observe(event.NodeStatus{NodeID: "node-b", Count: 2})

	// node-a heartbeats stop; after the window only node-b counts.
	current = current.Add(25 * time.Second)
	req.Equal(2, tracker.Online())
}

func TestTrackerForget(t *testing.T) {
	req := require.New(t)
	tracker := NewTracker(time.Minute)

	tracker.Observe(event.NodeStatus{NodeID: "node-a", Count: 4})
	tracker.Forget("node-a")
	req.Equal(0, tracker.Online())
}
