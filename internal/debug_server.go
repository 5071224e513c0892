package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"chat-relay/domain/chat"
	"chat-relay/repositories"
)

//go:embed inspect.html
var templatesFS embed.FS

const defaultInspectLimit = 50

type InspectRow struct {
	ID          int64
	UserID      int64
	Username    string
	Kind        string
	Content     string
	ClientMsgID string
	CreatedAt   string
}

type StatsProvider func() map[string]any

type PageData struct {
	BeforeID int64
	Limit    int
	Items    []InspectRow
	Stats    map[string]any
}

// StartDebugServer serves a read-only view of the message store on a
// side port. Operators use it to eyeball recent traffic without a
// sqlite shell; it is never exposed to clients.
func StartDebugServer(messages repositories.IMessageRepository, port int, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		beforeID, _ := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = defaultInspectLimit
		}

		data := PageData{
			BeforeID: beforeID,
			Limit:    limit,
			Stats:    make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		list, err := messages.ListBefore(r.Context(), beforeID, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, msg := range list {
			data.Items = append(data.Items, toInspectRow(msg))
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

func toInspectRow(msg chat.Message) InspectRow {
	return InspectRow{
		ID:          msg.ID,
		UserID:      msg.UserID,
		Username:    msg.Username,
		Kind:        string(msg.Kind),
		Content:     msg.Content,
		ClientMsgID: msg.ClientMsgID,
		CreatedAt:   msg.CreatedAt.UTC().Format(chat.WireTime),
	}
}
