package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var (
	auditDB      *sql.DB
	auditDBOnce  sync.Once
	auditEnabled bool = true // Can be set to false to disable all logging
)

// DisableAudit turns off all audit logging
func DisableAudit() {
	auditEnabled = false
	log.Println("[AUDIT] Audit logging DISABLED")
}

// ChatAuditEntry represents a complete chat interaction
type ChatAuditEntry struct {
	ID             int64
	ConversationID string
	Timestamp      time.Time
	Model          string
	Source         string
	FullInput      string // JSON encoded
	FullOutput     string
	InputTokens    int
	OutputTokens   int
	Error          string
}

// InitAuditDB initializes the SQLite database for chat audit logging
func InitAuditDB() error {
	// Check if audit is enabled via environment variable (default: enabled)
	if os.Getenv("ENABLE_CHAT_AUDIT") == "false" {
		DisableAudit()
		return nil
	}

	var err error
	auditDBOnce.Do(func() {
		auditDB, err = openAuditDB("chat_audit.db")
		if err != nil {
			log.Printf("Failed to initialize audit database: %v", err)
			return
		}
		log.Println("[AUDIT] Chat audit database initialized")
	})

	return err
}

// openAuditDB opens (creating if needed) an audit database at path
func openAuditDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS chat_audit (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		model TEXT NOT NULL,
		source TEXT,
		full_input TEXT NOT NULL,
		full_output TEXT NOT NULL,
		input_tokens INTEGER,
		output_tokens INTEGER,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_conversation_id ON chat_audit(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON chat_audit(timestamp);
	CREATE INDEX IF NOT EXISTS idx_audit_model ON chat_audit(model);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	return db, nil
}

// LogChatInteraction logs a complete chat interaction to the audit database
func LogChatInteraction(conversationID string, model string, source string, input interface{}, output string, err error) {
	if !auditEnabled {
		return
	}

	if auditDB == nil {
		// Silently skip if DB not initialized
		return
	}

	inputJSON, jsonErr := json.Marshal(input)
	if jsonErr != nil {
		log.Printf("[AUDIT] Failed to marshal input: %v", jsonErr)
		inputJSON = []byte(fmt.Sprintf("Error marshaling input: %v", jsonErr))
	}

	errorStr := ""
	if err != nil {
		errorStr = err.Error()
	}

	query := `
		INSERT INTO chat_audit (
			conversation_id, model, source,
			full_input, full_output, input_tokens, output_tokens, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, dbErr := auditDB.Exec(query,
		conversationID, model, source,
		string(inputJSON), output, countTokens(string(inputJSON)), countTokens(output), errorStr)

	if dbErr != nil {
		log.Printf("[AUDIT] Failed to log chat interaction: %v", dbErr)
		return
	}

	id, _ := result.LastInsertId()
	log.Printf("[AUDIT] Logged chat interaction ID=%d, ConvID=%s, Model=%s, InputLen=%d, OutputLen=%d",
		id, conversationID, model, len(inputJSON), len(output))
}

// GetConversationAudit retrieves all audited interactions for a conversation
func GetConversationAudit(conversationID string) ([]ChatAuditEntry, error) {
	if auditDB == nil {
		return nil, fmt.Errorf("audit database not initialized")
	}

	query := `
		SELECT id, conversation_id, timestamp, model, source,
		       full_input, full_output, input_tokens, output_tokens, error
		FROM chat_audit
		WHERE conversation_id = ?
		ORDER BY timestamp ASC
	`

	rows, err := auditDB.Query(query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ChatAuditEntry
	for rows.Next() {
		var entry ChatAuditEntry
		err := rows.Scan(
			&entry.ID, &entry.ConversationID, &entry.Timestamp,
			&entry.Model, &entry.Source,
			&entry.FullInput, &entry.FullOutput,
			&entry.InputTokens, &entry.OutputTokens, &entry.Error,
		)
		if err != nil {
			log.Printf("[AUDIT] Error scanning row: %v", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
