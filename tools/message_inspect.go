package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"chat-relay/domain/chat"
	"chat-relay/repositories"
)

func main() {
	dbPath := flag.String("db", "chat.db", "Path to the SQLite message store")
	beforeID := flag.Int64("before", 0, "Only messages older than this id (0 = latest)")
	limit := flag.Int("limit", 50, "Max messages to list")
	flag.Parse()

	db, err := repositories.Open(*dbPath)
	if err != nil {
		log.Fatal("Error while opening SQLite: ", err)
	}
	defer db.Close()

	logger := logs.GetLoggerFromString("WARN")
	messages := repositories.NewMessageRepository(db, logger)

	list, err := messages.ListBefore(context.Background(), *beforeID, *limit)
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "User", "Username", "Type", "Content", "Client Msg ID", "Created At"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, msg := range list {
		content := msg.Content
		if len(content) > 60 {
			content = content[:60] + "…"
		}
		table.Append([]string{
			fmt.Sprintf("%d", msg.ID),
			fmt.Sprintf("%d", msg.UserID),
			msg.Username,
			string(msg.Kind),
			content,
			msg.ClientMsgID,
			msg.CreatedAt.UTC().Format(chat.WireTime),
		})
	}

	table.Render()
}
