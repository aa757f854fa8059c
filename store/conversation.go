package store

import (
	"time"

	"github.com/google/uuid"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Assistant message kinds. Plain chat responses carry an empty Type.
const (
	TypeResearch = "research"
	TypeYouTube  = "youtube"
)

// DefaultTitle is the title a conversation carries until its first user
// message derives the real one.
const DefaultTitle = "New Chat"

// titleLimit is the derived-title truncation point.
const titleLimit = 30

// Message is one entry in a conversation. Messages are immutable once
// appended; the sole exception is the pending placeholder, which is replaced
// wholesale when its turn resolves.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`

	// Type marks research/video-annotated assistant messages
	Type string `json:"type,omitempty"`

	// Streaming flags the placeholder occupying a pending chat turn's
	// slot. It is binary: empty placeholder, then final content.
	Streaming bool `json:"isStreaming,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is an ordered, titled thread of messages. The message
// sequence is append-only.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewConversation creates an empty conversation with the default title
func NewConversation() *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewMessage creates a message with a fresh ID
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// DeriveTitle builds a conversation title from its first user message:
// truncated to 30 characters with an ellipsis marker when truncated.
// Truncation counts runes so a multibyte character is never split.
func DeriveTitle(firstMsg string) string {
	runes := []rune(firstMsg)
	if len(runes) > titleLimit {
		return string(runes[:titleLimit]) + "..."
	}
	return firstMsg
}
