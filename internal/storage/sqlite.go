package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"classdigest/internal/model"
	"classdigest/migrations"
)

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Subscribe adds a chat to the subscription list. Re-subscribing an already
// subscribed chat updates its title.
func (s *SQLite) Subscribe(ctx context.Context, chatID, title string) error {
	now := model.FormatTimestamp(time.Now())
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chats (chat_id, title, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET title = excluded.title`,
		chatID, title, now,
	)
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

// Unsubscribe removes a chat from the subscription list.
func (s *SQLite) Unsubscribe(ctx context.Context, chatID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

// ListSubscribed returns all subscribed chat IDs.
func (s *SQLite) ListSubscribed(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id FROM chats ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("query chats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var chats []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, id)
	}
	return chats, rows.Err()
}

// IsSubscribed checks whether a chat is on the subscription list.
func (s *SQLite) IsSubscribed(ctx context.Context, chatID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chats WHERE chat_id = ?`, chatID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check chat: %w", err)
	}
	return count > 0, nil
}

// AddMessage stores a collected message for later processing. Storing the
// exact same chat, sender, timestamp, and text again is a no-op, so feed
// polling can re-submit items it has already seen.
func (s *SQLite) AddMessage(ctx context.Context, m model.Message) error {
	var extra []byte
	if len(m.Extra) > 0 {
		var err error
		extra, err = json.Marshal(m.Extra)
		if err != nil {
			return fmt.Errorf("encode extra fields: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO messages (chat_id, sender_id, timestamp, text, extra, processed)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		m.ChatID, m.SenderID, m.Timestamp, m.Text, nullableString(extra),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListUnprocessed returns all messages not yet run through the pipeline,
// oldest first.
func (s *SQLite) ListUnprocessed(ctx context.Context) ([]StoredMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, sender_id, timestamp, text, extra
		 FROM messages WHERE processed = 0 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var msgs []StoredMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkProcessed flags the given messages as consumed by the pipeline.
func (s *SQLite) MarkProcessed(ctx context.Context, ids []int64) error {
	return s.markByID(ctx, "messages", "processed", ids)
}

// SaveItem stores a classified item for inclusion in the next digest.
func (s *SQLite) SaveItem(ctx context.Context, chatID string, r model.ClassificationResult) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	now := model.FormatTimestamp(time.Now())
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO items (chat_id, payload, delivered, created_at) VALUES (?, ?, 0, ?)`,
		chatID, string(payload), now,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// ListUndelivered returns all items not yet sent in a digest, oldest first.
func (s *SQLite) ListUndelivered(ctx context.Context) ([]StoredItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, payload FROM items WHERE delivered = 0 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []StoredItem
	for rows.Next() {
		var it StoredItem
		var payload string
		if err := rows.Scan(&it.ID, &it.ChatID, &payload); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &it.Result); err != nil {
			return nil, fmt.Errorf("decode item %d: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkDelivered flags the given items as sent.
func (s *SQLite) MarkDelivered(ctx context.Context, ids []int64) error {
	return s.markByID(ctx, "items", "delivered", ids)
}

func (s *SQLite) markByID(ctx context.Context, table, column string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf(`UPDATE %s SET %s = 1 WHERE id IN (%s)`, table, column, placeholders)
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark %s: %w", table, err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMessage(row scannable) (StoredMessage, error) {
	var m StoredMessage
	var extra sql.NullString
	err := row.Scan(&m.ID, &m.Message.ChatID, &m.Message.SenderID,
		&m.Message.Timestamp, &m.Message.Text, &extra)
	if err != nil {
		return m, fmt.Errorf("scan message: %w", err)
	}
	if extra.Valid && extra.String != "" {
		if err := json.Unmarshal([]byte(extra.String), &m.Message.Extra); err != nil {
			return m, fmt.Errorf("decode extra fields of message %d: %w", m.ID, err)
		}
	}
	return m, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
