//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"chat-relay/domain/chat"
)

type IMessageRepository interface {
	// Insert persists a message and returns the store-assigned id. When
	// the same (user_id, client_msg_id) pair was already inserted, the
	// existing id is returned and no second row is created.
	Insert(ctx context.Context, msg chat.Message) (int64, error)
	GetByID(ctx context.Context, id int64) (chat.Message, error)
	// ListBefore returns up to limit messages with id < beforeID in
	// ascending id order. beforeID 0 means "the latest page".
	ListBefore(ctx context.Context, beforeID int64, limit int) ([]chat.Message, error)
}

type MessageRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewMessageRepository(db *sql.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// Open opens the shared SQLite message log. WAL mode lets several relay
// worker processes append to one database file.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	// The _pragma form is the one this driver honors; a concurrent
	// writer from another relay process then waits on the busy timeout
	// instead of failing with SQLITE_BUSY.
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}

// The UNIQUE index on (user_id, client_msg_id) makes retried submissions
// idempotent; rows without a client id never conflict because SQLite
// treats NULLs as distinct.
const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id       INTEGER NOT NULL,
	username      TEXT    NOT NULL,
	kind          TEXT    NOT NULL,
	content       TEXT    NOT NULL,
	client_msg_id TEXT,
	created_at    INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_messages_idempotency
	ON messages(user_id, client_msg_id);
`

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func (m MessageRepository) Insert(ctx context.Context, msg chat.Message) (int64, error) {
	clientMsgID := sql.NullString{String: msg.ClientMsgID, Valid: msg.ClientMsgID != ""}
	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := m.db.ExecContext(ctx, `
		INSERT INTO messages (user_id, username, kind, content, client_msg_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, client_msg_id) DO NOTHING`,
		msg.UserID, msg.Username, string(msg.Kind), msg.Content, clientMsgID, toMillis(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}
	if affected > 0 {
		return res.LastInsertId()
	}

	// Conflict path: a retry of an already stored submission.
	var id int64
	err = m.db.QueryRowContext(ctx,
		`SELECT id FROM messages WHERE user_id = ? AND client_msg_id = ?`,
		msg.UserID, clientMsgID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolve duplicate message: %w", err)
	}
	m.log.Debug("Duplicate submission resolved to existing message",
		"user_id", msg.UserID, "client_msg_id", msg.ClientMsgID, "message_id", id)
	return id, nil
}

func (m MessageRepository) GetByID(ctx context.Context, id int64) (chat.Message, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, kind, content, client_msg_id, created_at
		FROM messages WHERE id = ?`, id)
	msg, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Message{}, fmt.Errorf("message %d: %w", id, err)
	}
	return msg, err
}

func (m MessageRepository) ListBefore(ctx context.Context, beforeID int64, limit int) ([]chat.Message, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, user_id, username, kind, content, client_msg_id, created_at
		FROM messages
		WHERE ? = 0 OR id < ?
		ORDER BY id DESC
		LIMIT ?`, beforeID, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []chat.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// Oldest first, so callers can append pages in display order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMessage(row scannable) (chat.Message, error) {
	var (
		msg         chat.Message
		kind        string
		clientMsgID sql.NullString
		createdAt   int64
	)
	err := row.Scan(&msg.ID, &msg.UserID, &msg.Username, &kind, &msg.Content, &clientMsgID, &createdAt)
	if err != nil {
		return chat.Message{}, err
	}
	msg.Kind = chat.MessageKind(kind)
	msg.ClientMsgID = clientMsgID.String
	msg.CreatedAt = fromMillis(createdAt)
	return msg, nil
}
