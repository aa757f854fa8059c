package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// OpenDB opens (creating if needed) the conversation database at path
func OpenDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open conversation database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT NOT NULL,
		conversation_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		type TEXT,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (conversation_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create conversation schema: %w", err)
	}

	return db, nil
}

// load reads persisted conversations into memory, oldest first
func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT id, title, created_at, updated_at FROM conversations ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		conv := &Conversation{Messages: []Message{}}
		if err := rows.Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return err
		}
		s.order = append(s.order, conv.ID)
		s.convs[conv.ID] = conv
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range s.order {
		if err := s.loadMessages(s.convs[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadMessages(conv *Conversation) error {
	rows, err := s.db.Query(`SELECT id, role, content, COALESCE(type, ''), created_at FROM messages WHERE conversation_id = ? ORDER BY seq`, conv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Type, &msg.CreatedAt); err != nil {
			return err
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return rows.Err()
}

// persistConversation writes conversation metadata through to the database.
// Persistence failures are logged, not fatal: the in-memory state stays
// authoritative for the session.
func (s *Store) persistConversation(conv *Conversation) {
	if s.db == nil {
		return
	}
	_, err := s.db.Exec(
		`INSERT INTO conversations (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		conv.ID, conv.Title, conv.CreatedAt, time.Now().UTC(),
	)
	if err != nil {
		log.Printf("[STORE] Failed to persist conversation %s: %v", conv.ID, err)
	}
}

// persistMessage writes a message through at its slot. Replacing the pending
// placeholder reuses the same seq.
func (s *Store) persistMessage(convID string, msg Message, seq int) {
	if s.db == nil {
		return
	}
	if msg.Streaming {
		// Placeholders never hit the database
		return
	}
	_, err := s.db.Exec(
		`INSERT INTO messages (id, conversation_id, seq, role, content, type, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id, seq) DO UPDATE SET id = excluded.id, content = excluded.content, type = excluded.type`,
		msg.ID, convID, seq, msg.Role, msg.Content, msg.Type, msg.CreatedAt,
	)
	if err != nil {
		log.Printf("[STORE] Failed to persist message %s: %v", msg.ID, err)
	}
}

// dropPersisted removes a conversation and its messages from the database
func (s *Store) dropPersisted(convID string) {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec(`DELETE FROM messages WHERE conversation_id = ?`, convID); err != nil {
		log.Printf("[STORE] Failed to delete messages for %s: %v", convID, err)
	}
	if _, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, convID); err != nil {
		log.Printf("[STORE] Failed to delete conversation %s: %v", convID, err)
	}
}
