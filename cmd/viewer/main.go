package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"chat-relay/bus"
	"chat-relay/domain/event"
)

// The viewer tails the shared bus without serving any connection. Run it
// next to the relay nodes to watch room traffic and node health live.

type Config struct {
	NatsURL     string `env:"NATS_URL,required=true"`
	NatsSubject string `env:"NATS_SUBJECT"`
	LogLevel    string `env:"LOG_LEVEL,default=WARN"`
}

type nodeRow struct {
	count    int
	rssBytes uint64
	cpu      float64
	lastSeen time.Time
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Attach to the bus in listen-only mode
	b, err := bus.NewNATS(logger, config.NatsURL, config.NatsSubject)
	if err != nil {
		log.Fatalf("Failed to reach bus: %v", err)
	}
	defer b.Close()

	var mu sync.Mutex
	nodes := make(map[string]nodeRow)

	unsubscribe, err := b.Subscribe(func(env event.Envelope) {
		printEnvelope(env)
		if env.Kind != event.KindNodeStatus {
			return
		}
		var status event.NodeStatus
		if err := env.Decode(&status); err != nil {
			return
		}
		mu.Lock()
		nodes[status.NodeID] = nodeRow{
			count:    status.Count,
			rssBytes: status.RSSBytes,
			cpu:      status.CPUPercent,
			lastSeen: status.At,
		}
		mu.Unlock()
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	defer unsubscribe()

	color.Green.Printf("👀 Viewer attached to %s, Ctrl+C for the node summary\n", config.NatsURL)

	// 3. Tail until interrupted, then dump the per-node summary
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	mu.Lock()
	defer mu.Unlock()
	renderNodes(nodes)
}

func printEnvelope(env event.Envelope) {
	switch env.Kind {
	case event.KindNewMessage:
		var payload event.NewMessage
		if err := env.Decode(&payload); err != nil {
			return
		}
		color.Cyan.Printf("[%s] %s: %s\n",
			payload.Message.CreatedAt, payload.Message.Username, payload.Message.Content)

	case event.KindUserJoined:
		var payload event.UserJoined
		if err := env.Decode(&payload); err != nil {
			return
		}
		color.Green.Printf("→ %s joined (%d online)\n", payload.Username, payload.OnlineCount)

	case event.KindUserLeft:
		var payload event.UserLeft
		if err := env.Decode(&payload); err != nil {
			return
		}
		color.Yellow.Printf("← %s left (%d online)\n", payload.Username, payload.OnlineCount)

	case event.KindUserTyping:
		var payload event.UserTyping
		if err := env.Decode(&payload); err != nil {
			return
		}
		if payload.IsTyping {
			color.Gray.Printf("… %s is typing\n", payload.Username)
		}

	case event.KindNodeStatus:
		// Summarized in the final table, not worth a line each.
	}
}

func renderNodes(nodes map[string]nodeRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Node", "Connections", "RSS (MB)", "CPU %", "Last seen"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	total := 0
	for nodeID, row := range nodes {
		total += row.count
		table.Append([]string{
			nodeID,
			fmt.Sprintf("%d", row.count),
			fmt.Sprintf("%.1f", float64(row.rssBytes)/(1024*1024)),
			fmt.Sprintf("%.1f", row.cpu),
			row.lastSeen.UTC().Format("15:04:05"),
		})
	}
	table.Render()
	fmt.Printf("\nTotal online: %d across %d nodes\n", total, len(nodes))
}
